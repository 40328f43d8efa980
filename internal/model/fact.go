package model

// Confidence starts at 1.0 and is reduced by fixed additive penalties,
// floored at 0.0. All penalties are transparent constants so callers can
// reconstruct any score.
const (
	PenaltyInferredCurrency  = 0.6 // Currency taken from document default, not the span
	PenaltyRelativeDate      = 0.2 // Date resolved against the capture-date anchor
	PenaltyAmbiguousMagnitude = 0.3 // Single-letter magnitude suffix (M/B/K)
	PenaltyUnparseable       = 0.8 // Span matched a pattern but would not normalize
)

// MoneyValue is a decimal amount plus ISO 4217 currency code.
// Currency "XXX" means no marker was present and none could be inferred.
type MoneyValue struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PercentValue holds a percentage as a fraction: 150% -> 1.50.
// Values over 1.0 are valid (growth rates).
type PercentValue struct {
	Fraction float64 `json:"fraction"`
}

// DateValue is a resolved date or date range, ISO formatted (2006-01-02).
// A single date has Start == End. Relative expressions resolve to ranges.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MultipleValue holds an "N.Nx" ratio.
type MultipleValue struct {
	Ratio float64 `json:"ratio"`
}

// DurationValue is a count plus unit, retained unconverted to avoid
// lossy rounding across units.
type DurationValue struct {
	Count int    `json:"count"`
	Unit  string `json:"unit"` // days, weeks, months, years
}

// HeadcountValue is an integer count plus the role noun that anchored it.
type HeadcountValue struct {
	Count int    `json:"count"`
	Noun  string `json:"noun"` // people, partners, engineers...
}

// EntityRef points into the Record's entity table.
type EntityRef struct {
	EntityID string `json:"entity_id"`
	Mention  string `json:"mention"` // Surface form as spoken
}

// FactValue is the tagged union over typed fact values. Exactly one
// field is non-nil, matching the Fact's Kind.
type FactValue struct {
	Money     *MoneyValue     `json:"money,omitempty"`
	Percent   *PercentValue   `json:"percent,omitempty"`
	Date      *DateValue      `json:"date,omitempty"`
	Multiple  *MultipleValue  `json:"multiple,omitempty"`
	Duration  *DurationValue  `json:"duration,omitempty"`
	Headcount *HeadcountValue `json:"headcount,omitempty"`
	Entity    *EntityRef      `json:"entity,omitempty"`
}

// Fact is a normalized, typed value with provenance back to the span it
// came from. Facts are immutable once created; the validator's bounded
// retry supersedes a Fact with a corrected one, it never mutates.
type Fact struct {
	ID         string    `json:"id"`                   // Ordinal, assigned at assembly
	Kind       Kind      `json:"kind"`
	Value      FactValue `json:"value"`
	TurnIndex  int       `json:"turn_index"`           // Provenance: owning Turn
	Start      int       `json:"start"`                // Provenance: span offsets within the Turn
	End        int       `json:"end"`
	SourceText string    `json:"source_text"`          // Raw span the value was parsed from
	SpeakerID  string    `json:"speaker_entity_id"`    // Resolved speaker entity
	Confidence float64   `json:"confidence"`           // In [0,1]
	Notes      []string  `json:"notes,omitempty"`      // Non-fatal normalization issues
	Supersedes string    `json:"supersedes,omitempty"` // ID of the Fact this replaced on retry
}
