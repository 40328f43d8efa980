// Package normalize converts candidate spans into typed facts.
// Confidence starts at 1.0 and is reduced by fixed additive penalties
// (floored at 0.0) so every score is reconstructable from the notes.
// A span that matched a pattern is always emitted as a fact, however low
// its confidence: detected quantities are never silently discarded.
package normalize

import (
	"strings"
	"time"

	"github.com/ppiankov/factline/internal/model"
)

// Context carries the document-level anchors a single candidate cannot
// supply on its own. It is built once per document and passed explicitly
// so pipelines stay independent.
type Context struct {
	Anchor      time.Time // Document capture date; zero when unknown
	DocCurrency string    // Majority explicit currency in the document, "" when none

	// SentenceCurrency is the currency named in the candidate's enclosing
	// sentence. Set during the validator's re-normalization pass, where
	// the sentence is closer evidence than any document-level inference.
	SentenceCurrency string
}

// Normalizer converts candidates into typed fact values
type Normalizer struct {
	defaultCurrency string
}

// NewNormalizer creates a normalizer. defaultCurrency, when set, is used
// for amounts with no currency marker before falling back to the
// document majority.
func NewNormalizer(defaultCurrency string) *Normalizer {
	return &Normalizer{defaultCurrency: strings.ToUpper(defaultCurrency)}
}

// Result is one normalized value plus its confidence accounting.
type Result struct {
	Value      model.FactValue
	Confidence float64
	Notes      []string
}

// Normalize converts a single candidate. ENTITY_MENTION candidates are
// the resolver's job and pass through with the surface form only.
func (n *Normalizer) Normalize(c model.Candidate, ctx Context) Result {
	switch c.Kind {
	case model.KindMoney:
		return n.normalizeMoney(c, ctx)
	case model.KindPercent:
		return normalizePercent(c)
	case model.KindDate:
		return normalizeDate(c, ctx)
	case model.KindMultiple:
		return normalizeMultiple(c)
	case model.KindDuration:
		return normalizeDuration(c)
	case model.KindHeadcount:
		return normalizeHeadcount(c)
	default:
		return Result{
			Value:      model.FactValue{Entity: &model.EntityRef{Mention: c.Text}},
			Confidence: 1.0,
		}
	}
}

// penalize applies an additive penalty with the 0.0 floor.
func penalize(confidence, penalty float64) float64 {
	confidence -= penalty
	if confidence < 0 {
		return 0
	}
	return confidence
}
