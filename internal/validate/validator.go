// Package validate cross-checks a record's facts against each other.
// Checks are independent rules, each producing a flag when violated:
// a violation never suppresses a fact and never fails the pipeline.
package validate

import (
	"github.com/ppiankov/factline/internal/model"
)

// growthTolerance is the relative tolerance for rule (a): a stated
// growth rate within ±5% of a derived before/after ratio is consistent.
const growthTolerance = 0.05

// fundTotalSlack is the allowance for rule (b): itemized commitments may
// exceed the stated fund target by at most 1%.
const fundTotalSlack = 0.01

// Renormalizer is the pipeline's hook for the single bounded
// re-normalization pass: given a fact id it re-runs normalization on the
// originating candidate and reports whether a corrected fact resulted.
// The retry is bounded to one pass to avoid oscillation.
type Renormalizer interface {
	Renormalize(factID string) (model.Fact, bool)
}

// Context carries what the rules need beyond the facts themselves: the
// enclosing sentence per fact (for keyword anchoring) and the optional
// re-normalization hook.
type Context struct {
	Sentences map[string]string // fact id -> enclosing sentence
	Renorm    Renormalizer      // nil disables the retry pass
}

// Validator runs the pairwise consistency rules
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// rule is one independent consistency check over a fact list.
type rule func(facts []model.Fact, sentences map[string]string) []model.Contradiction

// Validate runs every rule against the record's facts. On a violation it
// requests exactly one re-normalization pass restricted to the
// implicated facts, then re-runs the rule; flags that survive are
// retained as CONTRADICTION entries rather than suppressing any fact.
// Superseding facts are written back into the record's fact list.
func (v *Validator) Validate(rec *model.Record, ctx Context) []model.Contradiction {
	rules := []rule{checkGrowthConsistency, checkFundTotal, checkHeadcountMonotonic}

	var flags []model.Contradiction
	for _, run := range rules {
		violations := run(rec.Facts, ctx.Sentences)
		if len(violations) == 0 {
			continue
		}

		if ctx.Renorm == nil {
			flags = append(flags, violations...)
			continue
		}

		changed := false
		for _, violation := range violations {
			if v.renormalize(rec, violation.FactIDs, ctx) {
				changed = true
			}
		}

		if changed {
			violations = run(rec.Facts, ctx.Sentences)
		}
		for _, violation := range violations {
			violation.Retried = true
			flags = append(flags, violation)
		}
	}

	return flags
}

// renormalize replaces implicated facts with their re-normalized
// versions, reporting whether anything actually changed.
func (v *Validator) renormalize(rec *model.Record, factIDs []string, ctx Context) bool {
	changed := false
	for _, id := range factIDs {
		nf, ok := ctx.Renorm.Renormalize(id)
		if !ok {
			continue
		}
		for i := range rec.Facts {
			if rec.Facts[i].ID == id {
				nf.Supersedes = id
				ctx.Sentences[nf.ID] = ctx.Sentences[id]
				rec.Facts[i] = nf
				changed = true
				break
			}
		}
	}
	return changed
}
