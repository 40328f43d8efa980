package model

// Kind categorizes what a candidate span is suspected to encode
type Kind string

const (
	KindMoney         Kind = "MONEY"
	KindPercent       Kind = "PERCENT"
	KindDate          Kind = "DATE"
	KindMultiple      Kind = "MULTIPLE"
	KindDuration      Kind = "DURATION"
	KindHeadcount     Kind = "HEADCOUNT"
	KindEntityMention Kind = "ENTITY_MENTION"
)

// Candidate is an unvalidated extracted span. Candidates are transient:
// the normalizer consumes them and they are never persisted standalone.
type Candidate struct {
	TurnIndex int    `json:"turn_index"` // Index of the owning Turn
	Start     int    `json:"start"`      // Byte offset into the Turn text
	End       int    `json:"end"`        // Exclusive end offset
	Text      string `json:"text"`       // Raw matched span
	Kind      Kind   `json:"kind"`       // Pattern family that matched
	Sentence  string `json:"-"`          // Enclosing sentence, kept as validation context
}
