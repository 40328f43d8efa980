package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/factline/internal/model"
)

func sampleRecord() *model.Record {
	return &model.Record{
		DocumentID: "pitch-2025",
		Turns:      2,
		Facts: []model.Fact{
			{
				ID:         "f-0001",
				Kind:       model.KindMoney,
				Value:      model.FactValue{Money: &model.MoneyValue{Amount: 2_500_000, Currency: "USD"}},
				SourceText: "$2.5M | raised",
				SpeakerID:  "e-jaap",
				Confidence: 0.7,
			},
			{
				ID:         "f-0002",
				Kind:       model.KindPercent,
				Value:      model.FactValue{Percent: &model.PercentValue{Fraction: 1.5}},
				SourceText: "150%",
				Confidence: 1.0,
			},
		},
		Entities: []model.Entity{
			{ID: "e-jaap", Name: "Jaap Vriesendorp", Role: model.RoleFounder, Aliases: []string{"JV"}},
		},
		Contradictions: []model.Contradiction{
			{
				Rule:        model.RuleGrowthConsistency,
				FactIDs:     []string{"f-0002", "f-0001"},
				Description: "stated growth 150.0% disagrees with derived 110.0%",
				Retried:     true,
			},
		},
		Notes: []string{`ambiguous_currency: "3 million"`},
		Decision: model.Decision{
			Status:         model.DecisionReview,
			LargestMoney:   &model.MoneyValue{Amount: 2_500_000, Currency: "USD"},
			MaxGrowth:      &model.PercentValue{Fraction: 1.5},
			Contradictions: 1,
		},
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	rec := sampleRecord()
	out, err := RenderJSON(rec)
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Expected trailing newline")
	}

	var back model.Record
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("Rendered JSON does not parse: %v", err)
	}
	if back.DocumentID != rec.DocumentID || len(back.Facts) != len(rec.Facts) {
		t.Errorf("Round trip lost data: %+v", back)
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	md := RenderMarkdown(sampleRecord(), true)

	for _, want := range []string{
		"# Fact Record: pitch-2025",
		"**Status**: review",
		"**Largest amount**: $2.5 million",
		"**Max growth**: 150.0%",
		"## Facts",
		"Jaap Vriesendorp",
		"## Entities",
		"aliases: JV",
		"## Contradictions",
		"growth_consistency",
		"_(persisted after re-normalization)_",
		"## Notes",
		"ambiguous_currency",
		"_Generated by factline.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}

	// Pipes in source text must not break the facts table.
	if !strings.Contains(md, `$2.5M \| raised`) {
		t.Error("Expected pipe in source text to be escaped")
	}
}

func TestRenderMarkdown_NoFooter(t *testing.T) {
	md := RenderMarkdown(sampleRecord(), false)
	if strings.Contains(md, "_Generated by factline.") {
		t.Error("Expected footer omitted")
	}
}

func TestRenderMarkdown_UnattributedSpeaker(t *testing.T) {
	rec := sampleRecord()
	md := RenderMarkdown(rec, false)
	// f-0002 has no speaker; its row renders "-" in the speaker column.
	if !strings.Contains(md, "| 150%") {
		t.Errorf("Expected percent row in table:\n%s", md)
	}
	if !strings.Contains(md, "| - |") {
		t.Error("Expected placeholder for unattributed speaker")
	}
}

func TestRenderSummary_Line(t *testing.T) {
	line := RenderSummary(sampleRecord())
	for _, want := range []string{"pitch-2025", "review", "facts=2", "entities=1", "flags=1", "largest=$2.5 million"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected summary line to contain %q, got %q", want, line)
		}
	}
	if strings.Contains(line, "\n") {
		t.Error("Expected single-line summary")
	}
}
