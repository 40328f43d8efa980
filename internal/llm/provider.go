package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/factline/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative over the record with strict fact mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Record is the extraction record to summarize
	Record model.Record

	// AllowedFigures is the STRICT allowlist of figures the LLM may cite:
	// the source spans of extracted facts. The summary must not introduce
	// numbers the extractor never saw.
	AllowedFigures []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// CitedFigures are the numeric figures the LLM actually used
	CitedFigures []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// StrictFacts enforces the figure allowlist (should always be true)
	StrictFacts bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Model:       "",
		Timeout:     30,
		StrictFacts: true, // CRITICAL: Always enforce
		MaxTokens:   1000,
	}
}

// BuildPrompt constructs the default summarization prompt with strict
// fact mode: the model may only reference figures the extractor found.
func BuildPrompt(rec model.Record, allowedFigures []string) string {
	prompt := fmt.Sprintf(`You are summarizing a transcript extraction record. The record holds typed facts (amounts, percentages, dates, headcounts) pulled from a meeting transcript, each with a confidence score.

CRITICAL RULES:
1. You MUST ONLY cite figures from this allowed list:
%s

2. DO NOT infer, compute, or introduce numbers beyond this list.
3. If the record flags contradictions, state them explicitly.
4. Describe confidence, never certainty: "the transcript states...", "a low-confidence amount of...".
5. Never assert that a figure is correct - only that it was said.

Record:
- Document: %s
- Facts extracted: %d
- Entities: %d
- Contradiction flags: %d
`, joinFigures(allowedFigures), rec.DocumentID, len(rec.Facts), len(rec.Entities), len(rec.Contradictions))

	for i, c := range rec.Contradictions {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- contradiction (%s): %s\n", c.Rule, c.Description)
	}

	prompt += "\nProvide a 3-5 sentence summary of what was claimed, flagging anything contradictory or low-confidence."

	return prompt
}

func joinFigures(figures []string) string {
	if len(figures) == 0 {
		return "(No figures were extracted)"
	}
	result := ""
	for i, f := range figures {
		if i >= 40 { // Cap the allowlist to avoid token bloat
			result += fmt.Sprintf("\n... and %d more figures", len(figures)-40)
			break
		}
		result += fmt.Sprintf("\n- %s", f)
	}
	return result
}
