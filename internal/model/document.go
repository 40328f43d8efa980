package model

import "time"

// Participant is one declared attendee on a transcript roster
type Participant struct {
	Name        string `json:"name" yaml:"name"`                             // Full name as declared
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`         // investor, founder, analyst, partner...
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"` // Fund or company
}

// Document is one immutable transcript input. Created at ingestion,
// never mutated by any pipeline stage.
type Document struct {
	ID           string        `json:"id"`                      // Caller-supplied or derived from filename
	Text         string        `json:"-"`                       // Raw transcript text
	Participants []Participant `json:"participants,omitempty"`  // Declared roster
	CapturedAt   time.Time     `json:"captured_at,omitempty"`   // Anchor for relative date resolution
}

// Turn is one speaker's contiguous utterance within a Document.
// Index is strictly increasing within a Document.
type Turn struct {
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`             // 0-based sequence position
	Speaker    string `json:"speaker"`           // Label as it appeared ("JV", "Jaap Vriesendorp", UnattributedSpeaker)
	Text       string `json:"text"`              // Verbatim utterance text
}

// UnattributedSpeaker is the sentinel label for text that precedes the
// first speaker label. Nothing is silently dropped.
const UnattributedSpeaker = "UNATTRIBUTED"
