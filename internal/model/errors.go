package model

import "fmt"

// SegmentationError is the only fatal per-document error: the document
// was empty or unparseable after whitespace trimming. Everything else in
// the pipeline degrades to low-confidence facts or flags.
type SegmentationError struct {
	DocumentID string
	Reason     string
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segmentation failed for document %q: %s", e.DocumentID, e.Reason)
}

// NormalizationCode identifies the non-fatal normalization failure modes.
type NormalizationCode string

const (
	AmbiguousCurrency  NormalizationCode = "ambiguous_currency"
	UnparseableDate    NormalizationCode = "unparseable_date"
	UnparseableMultiple NormalizationCode = "unparseable_multiple"
)

// NormalizationError describes a span that matched a pattern but did not
// normalize cleanly. It is recorded as a note on a low-confidence Fact,
// never surfaced to the caller as a failure: a detected quantity is never
// silently discarded.
type NormalizationError struct {
	Code NormalizationCode
	Span string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization %s: %q", e.Code, e.Span)
}

// Note renders the error the way Fact.Notes carries it.
func (e *NormalizationError) Note() string {
	return string(e.Code) + ": " + e.Span
}
