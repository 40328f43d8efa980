package model

// RuleID identifies a consistency rule
type RuleID string

const (
	RuleGrowthConsistency   RuleID = "growth_consistency"   // Stated growth vs before/after money ratio
	RuleFundTotal           RuleID = "fund_total"           // Sum of commitments vs stated fund target
	RuleHeadcountMonotonic  RuleID = "headcount_monotonic"  // Partner count must not exceed team size
)

// Contradiction records that two or more Facts are mutually inconsistent
// under a defined rule. Contradictions flag, they never suppress Facts.
type Contradiction struct {
	Rule        RuleID   `json:"rule"`
	FactIDs     []string `json:"fact_ids"`    // Implicated facts
	Description string   `json:"description"` // Human-readable, with the numbers that collided
	Retried     bool     `json:"retried"`     // Whether the bounded re-normalization pass ran
}

// DecisionStatus is the coarse triage hint derived from a Record.
type DecisionStatus string

const (
	DecisionOK     DecisionStatus = "ok"     // No contradictions; figures usable as-is
	DecisionReview DecisionStatus = "review" // Contradictions present; human review needed
)

// Decision summarizes the headline figures downstream triage consumes.
// Purely derived from the Record; carries no judgment about the deal.
type Decision struct {
	Status        DecisionStatus `json:"status"`
	LargestMoney  *MoneyValue    `json:"largest_money,omitempty"`  // Biggest amount stated
	MaxGrowth     *PercentValue  `json:"max_growth,omitempty"`     // Highest percentage stated
	Contradictions int           `json:"contradictions"`
}

// Record is the final per-document output: ordered Facts, the entity
// table, and contradiction flags. Every Fact traces to exactly one
// Candidate in this Record's Document; no Fact references a Turn outside
// it. Records are deterministic: reprocessing the same Document yields a
// byte-identical Record.
type Record struct {
	DocumentID     string          `json:"document_id"`
	Turns          int             `json:"turns"`                    // Turn count, for quick sanity checks
	Facts          []Fact          `json:"facts"`                    // Ordered by (turn index, offset)
	Entities       []Entity        `json:"entities"`                 // Canonical id -> name, role, aliases
	Contradictions []Contradiction `json:"contradictions,omitempty"`
	Notes          []string        `json:"notes,omitempty"`          // Document-level degradations
	Decision       Decision        `json:"decision"`

	LLM *Summary `json:"llm,omitempty"` // Optional annotation; never affects facts or flags
}

// Summary is an optional LLM-generated narrative over the Record.
// CRITICAL: it never affects facts, confidence, or contradiction flags
// and is clearly separated in the output.
type Summary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"` // e.g. figures cited that were not extracted
}

// Entity returns the entity with the given id, or nil.
func (r *Record) Entity(id string) *Entity {
	for i := range r.Entities {
		if r.Entities[i].ID == id {
			return &r.Entities[i]
		}
	}
	return nil
}

// FactsOfKind returns the Record's facts of one kind, in record order.
func (r *Record) FactsOfKind(kind Kind) []Fact {
	var out []Fact
	for _, f := range r.Facts {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
