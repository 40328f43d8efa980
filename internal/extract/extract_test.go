package extract

import (
	"reflect"
	"testing"

	"github.com/ppiankov/factline/internal/model"
)

func turn(text string) model.Turn {
	return model.Turn{DocumentID: "doc", Index: 0, Speaker: "ALICE", Text: text}
}

func kindsOf(candidates []model.Candidate) []model.Kind {
	out := make([]model.Kind, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Kind)
	}
	return out
}

func findKind(candidates []model.Candidate, kind model.Kind) []model.Candidate {
	var out []model.Candidate
	for _, c := range candidates {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func TestExtract_MoneyAndPercent(t *testing.T) {
	e := NewExtractor()
	candidates := e.Extract(turn("We raised $2.5M and grew 150% year over year."))

	money := findKind(candidates, model.KindMoney)
	if len(money) != 1 {
		t.Fatalf("Expected 1 MONEY candidate, got %d: %+v", len(money), money)
	}
	if money[0].Text != "$2.5M" {
		t.Errorf("Expected MONEY text $2.5M, got %q", money[0].Text)
	}

	percent := findKind(candidates, model.KindPercent)
	if len(percent) != 1 {
		t.Fatalf("Expected 1 PERCENT candidate, got %d", len(percent))
	}
	if percent[0].Text != "150%" {
		t.Errorf("Expected PERCENT text 150%%, got %q", percent[0].Text)
	}
}

func TestExtract_MoneyVariants(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"The round was €1.2 billion in total.", "€1.2 billion"},
		{"We committed EUR 500,000 to the fund.", "EUR 500,000"},
		{"It cost 250 EUR per seat.", "250 EUR"},
		{"Revenue hit 3 million last quarter.", "3 million"},
		{"They invested $40bn overall.", "$40bn"},
	}
	for _, tt := range tests {
		candidates := e.Extract(turn(tt.text))
		money := findKind(candidates, model.KindMoney)
		if len(money) != 1 {
			t.Errorf("%q: expected 1 MONEY candidate, got %d (%+v)", tt.text, len(money), money)
			continue
		}
		if money[0].Text != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.text, tt.want, money[0].Text)
		}
	}
}

func TestExtract_LongestMatchWins(t *testing.T) {
	e := NewExtractor()
	// "$2.5M" must win over any shorter money match inside it.
	candidates := e.Extract(turn("We raised $2.5M."))

	money := findKind(candidates, model.KindMoney)
	if len(money) != 1 {
		t.Fatalf("Expected exactly 1 MONEY candidate, got %d: %+v", len(money), money)
	}
	if money[0].Text != "$2.5M" {
		t.Errorf("Expected longest match $2.5M, got %q", money[0].Text)
	}
}

func TestExtract_NumericKindsExclusive(t *testing.T) {
	e := NewExtractor()
	candidates := e.Extract(turn("Returns were 3.2x on 40 million invested over 5 years."))

	// No two numeric candidates may claim overlapping offsets.
	numeric := map[model.Kind]bool{
		model.KindMoney: true, model.KindPercent: true, model.KindMultiple: true,
		model.KindHeadcount: true, model.KindDuration: true,
	}
	var spans []model.Candidate
	for _, c := range candidates {
		if numeric[c.Kind] {
			spans = append(spans, c)
		}
	}
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].Start < spans[j].End && spans[j].Start < spans[i].End {
				t.Errorf("Numeric candidates overlap: %+v and %+v", spans[i], spans[j])
			}
		}
	}

	if got := findKind(candidates, model.KindMultiple); len(got) != 1 || got[0].Text != "3.2x" {
		t.Errorf("Expected MULTIPLE 3.2x, got %+v", got)
	}
	if got := findKind(candidates, model.KindDuration); len(got) != 1 || got[0].Text != "5 years" {
		t.Errorf("Expected DURATION '5 years', got %+v", got)
	}
}

func TestExtract_DateKinds(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"We closed on March 10, 2025 in Berlin.", "March 10, 2025"},
		{"The deadline is 15 June 2024.", "15 June 2024"},
		{"Next close is Q3 2025 at the latest.", "Q3 2025"},
		{"Filed on 2024-01-31 with the registry.", "2024-01-31"},
		{"Revenue doubled last year across the board.", "last year"},
	}
	for _, tt := range tests {
		candidates := e.Extract(turn(tt.text))
		dates := findKind(candidates, model.KindDate)
		found := false
		for _, d := range dates {
			if d.Text == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: expected DATE %q, got %+v", tt.text, tt.want, dates)
		}
	}
}

func TestExtract_HeadcountAndEntities(t *testing.T) {
	e := NewExtractor()
	candidates := e.Extract(turn("Jan Vriesendorp said the team has 12 engineers and 3 partners."))

	heads := findKind(candidates, model.KindHeadcount)
	if len(heads) != 2 {
		t.Fatalf("Expected 2 HEADCOUNT candidates, got %d: %+v", len(heads), heads)
	}

	entities := findKind(candidates, model.KindEntityMention)
	found := false
	for _, c := range entities {
		if c.Text == "Jan Vriesendorp" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected entity mention 'Jan Vriesendorp', got %+v", entities)
	}
}

func TestExtract_StoplistFiltersInitialisms(t *testing.T) {
	e := NewExtractor()
	candidates := e.Extract(turn("Our ARR is EUR 4 million and the IRR beats the CAGR."))

	for _, c := range findKind(candidates, model.KindEntityMention) {
		switch c.Text {
		case "ARR", "EUR", "IRR", "CAGR":
			t.Errorf("Stoplisted initialism extracted as entity: %q", c.Text)
		}
	}
}

func TestExtract_LeadingStopwordNotAnEntity(t *testing.T) {
	e := NewExtractor()
	candidates := e.Extract(turn("The Fund closed above target. Our Series A was oversubscribed."))

	for _, c := range findKind(candidates, model.KindEntityMention) {
		if c.Text == "The Fund" || c.Text == "Our Series" {
			t.Errorf("Grammatical span extracted as entity: %q", c.Text)
		}
	}
}

func TestExtract_SentenceContext(t *testing.T) {
	e := NewExtractor()
	candidates := e.Extract(turn("Revenue grew 40% last year. The fund target is $50 million."))

	percent := findKind(candidates, model.KindPercent)
	if len(percent) != 1 {
		t.Fatalf("Expected 1 PERCENT candidate, got %d", len(percent))
	}
	if percent[0].Sentence != "Revenue grew 40% last year." {
		t.Errorf("Expected percent sentence context, got %q", percent[0].Sentence)
	}

	money := findKind(candidates, model.KindMoney)
	if len(money) != 1 {
		t.Fatalf("Expected 1 MONEY candidate, got %d", len(money))
	}
	if money[0].Sentence != "The fund target is $50 million." {
		t.Errorf("Expected money sentence context, got %q", money[0].Sentence)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewExtractor()
	text := "ACME raised $2.5M at 3.2x. Growth was 150% since Q1 2024 with 12 engineers."

	first := e.Extract(turn(text))
	for i := 0; i < 10; i++ {
		again := e.Extract(turn(text))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Extraction not deterministic on run %d:\n%+v\nvs\n%+v", i, first, again)
		}
	}

	// Candidates must be ordered by start offset.
	for i := 1; i < len(first); i++ {
		if first[i].Start < first[i-1].Start {
			t.Errorf("Candidates out of order: %+v before %+v", first[i-1], first[i])
		}
	}
	t.Logf("kinds: %v", kindsOf(first))
}
