package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/factline/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func factRecord() model.Record {
	return model.Record{
		DocumentID: "call-1",
		Facts: []model.Fact{
			{ID: "f-0001", Kind: model.KindMoney, SourceText: "$2.5M"},
			{ID: "f-0002", Kind: model.KindPercent, SourceText: "150%"},
			{ID: "f-0003", Kind: model.KindEntityMention, SourceText: "ACME"},
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	summary, err := summarizer.GenerateSummary(context.Background(), factRecord())
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	_, err := NewSummarizer(Config{Provider: "mystery"})
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestSummarizer_ProviderUnavailable(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: false},
		config:   Config{StrictFacts: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), factRecord())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary marked disabled")
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "not available") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected unavailability warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_AllowlistExcludesEntities(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response:  &SummarizeResponse{Summary: "The transcript states $2.5M was raised.", Model: "test-model"},
	}
	summarizer := &Summarizer{provider: mock, config: Config{StrictFacts: true}}

	summary, err := summarizer.GenerateSummary(context.Background(), factRecord())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary")
	}

	// The figure allowlist carries quantitative facts only.
	if len(mock.lastReq.AllowedFigures) != 2 {
		t.Fatalf("Expected 2 allowed figures, got %v", mock.lastReq.AllowedFigures)
	}
	for _, f := range mock.lastReq.AllowedFigures {
		if f == "ACME" {
			t.Error("Entity mentions must not enter the figure allowlist")
		}
	}
}

func TestSummarizer_ErrorDegradesToWarning(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: true, err: fmt.Errorf("api timeout")},
		config:   Config{StrictFacts: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), factRecord())
	if err != nil {
		t.Errorf("Expected generation failure to degrade, got error %v", err)
	}
	if summary == nil || summary.Enabled {
		t.Fatal("Expected disabled summary with warnings")
	}
	if len(summary.Warnings) == 0 {
		t.Error("Expected a warning about the failure")
	}
}

func TestBuildPrompt_StrictFigures(t *testing.T) {
	rec := factRecord()
	rec.Contradictions = []model.Contradiction{{
		Rule:        model.RuleGrowthConsistency,
		Description: "stated growth 300% does not match any before/after pair",
	}}

	prompt := BuildPrompt(rec, []string{"$2.5M", "150%"})

	for _, want := range []string{"$2.5M", "150%", "MUST ONLY cite", "growth_consistency"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildPrompt_NoFigures(t *testing.T) {
	prompt := BuildPrompt(model.Record{DocumentID: "call-1"}, nil)
	if !strings.Contains(prompt, "No figures were extracted") {
		t.Error("Expected empty-allowlist marker in prompt")
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if got := RenderSeparateMarkdown(nil); got != "" {
		t.Errorf("Expected empty render for nil summary, got %q", got)
	}
	if got := RenderSeparateMarkdown(&model.Summary{Enabled: false}); got != "" {
		t.Errorf("Expected empty render for disabled summary, got %q", got)
	}

	md := RenderSeparateMarkdown(&model.Summary{
		Enabled:   true,
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		SummaryMD: "The transcript states $2.5M was raised.",
		Warnings:  []string{"figure 99% cited but never extracted"},
	})
	for _, want := range []string{"advisory", "openai/gpt-4o-mini", "$2.5M", "warning: figure 99%"} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q, got:\n%s", want, md)
		}
	}
}

func TestFindFigureLeak(t *testing.T) {
	allowed := []string{"$2.5M", "150%"}

	cited := extractFigures("The transcript states $2.5M was raised, a 150% increase.")
	if leak := findFigureLeak(cited, allowed); leak != "" {
		t.Errorf("Expected no leak for allowed figures, got %q", leak)
	}

	cited = extractFigures("Revenue will hit $10M next year.")
	if leak := findFigureLeak(cited, allowed); leak == "" {
		t.Error("Expected leak detection for a figure outside the allowlist")
	}
}
