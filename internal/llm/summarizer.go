package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/factline/internal/model"
)

// Summarizer wraps an optional provider behind a nil-safe interface.
// A summary annotates the record; it never affects facts, confidence
// scores, or contradiction flags.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; an empty provider name yields a
// disabled (but usable) summarizer.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the active provider's name, or "".
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces the optional narrative for a record. All
// failure modes degrade to a Summary with warnings (or nil when
// disabled); the record's facts are already final by the time this runs.
func (s *Summarizer) GenerateSummary(ctx context.Context, rec model.Record) (*model.Summary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.Summary{
			Enabled:  false,
			Provider: s.provider.Name(),
			Warnings: []string{fmt.Sprintf("provider %s not available", s.provider.Name())},
		}, nil
	}

	allowed := make([]string, 0, len(rec.Facts))
	for _, f := range rec.Facts {
		if f.Kind == model.KindEntityMention {
			continue
		}
		allowed = append(allowed, f.SourceText)
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Record:         rec,
		AllowedFigures: allowed,
		Model:          s.config.Model,
		MaxTokens:      s.config.MaxTokens,
	})
	if err != nil {
		return &model.Summary{
			Enabled:  false,
			Provider: s.provider.Name(),
			Warnings: []string{fmt.Sprintf("summary generation failed: %v", err)},
		}, nil
	}

	return &model.Summary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}, nil
}

// RenderSeparateMarkdown renders the summary for its own .llm.md file,
// clearly separated from the deterministic report.
func RenderSeparateMarkdown(summary *model.Summary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}
	md := "# LLM Summary (advisory)\n\n"
	md += fmt.Sprintf("Generated by %s/%s. This narrative never affects extracted facts, confidence scores, or contradiction flags.\n\n", summary.Provider, summary.Model)
	md += summary.SummaryMD + "\n"
	for _, w := range summary.Warnings {
		md += fmt.Sprintf("\n> warning: %s\n", w)
	}
	return md
}
