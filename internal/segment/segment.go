package segment

import (
	"regexp"
	"strings"

	"github.com/ppiankov/factline/internal/model"
)

// speakerLabel matches a "NAME:" or "INITIALS:" prefix at the start of a
// line. Labels are short and start with an uppercase letter, which keeps
// clock times and URLs from being mistaken for speakers.
var speakerLabel = regexp.MustCompile(`^([A-Z][A-Za-z .'\-]{0,39}?):\s*(.*)$`)

// Segmenter splits raw transcript text into ordered speaker Turns
type Segmenter struct{}

// NewSegmenter creates a new segmenter
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Segment splits a document's text into Turns. Every non-blank line is
// assigned to exactly one Turn; leading text before the first speaker
// label goes to the UNATTRIBUTED sentinel speaker. The only failure mode
// is an empty document.
func (s *Segmenter) Segment(doc *model.Document) ([]model.Turn, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, &model.SegmentationError{DocumentID: doc.ID, Reason: "document is empty"}
	}

	var turns []model.Turn
	var speaker string
	var lines []string

	flush := func() {
		// A bare label line still claims a turn (with empty text); only a
		// flush with neither speaker nor content is a no-op.
		if speaker == "" && len(lines) == 0 {
			return
		}
		label := speaker
		if label == "" {
			label = model.UnattributedSpeaker
		}
		turns = append(turns, model.Turn{
			DocumentID: doc.ID,
			Index:      len(turns),
			Speaker:    label,
			Text:       strings.Join(lines, "\n"),
		})
		lines = nil
	}

	for _, line := range strings.Split(doc.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := speakerLabel.FindStringSubmatch(trimmed); m != nil {
			flush()
			speaker = strings.TrimSpace(m[1])
			if rest := strings.TrimSpace(m[2]); rest != "" {
				lines = append(lines, rest)
			}
			continue
		}

		// Continuation line for the current speaker (or preamble).
		lines = append(lines, trimmed)
	}
	flush()

	// Non-empty input always yields at least one turn: every non-blank
	// line either names a speaker or lands in a turn's text.
	return turns, nil
}

// Sentence is one sentence within a turn, with byte offsets into the
// turn text so candidates can be tied back to their enclosing sentence.
type Sentence struct {
	Start int
	End   int
	Text  string
}

// Sentences splits turn text into sentences. Unlike a summarizing
// splitter it never discards content: trailing text without a terminator
// is still a sentence, so every candidate span has enclosing context.
func Sentences(text string) []Sentence {
	var out []Sentence
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' && c != '\n' {
			continue
		}
		// Only split terminators followed by whitespace or end of text,
		// which keeps decimals ("1.2 billion") and abbreviations intact.
		if c != '\n' && i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\t' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			out = append(out, Sentence{Start: start, End: i + 1, Text: s})
		}
		start = i + 1
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, Sentence{Start: start, End: len(text), Text: s})
	}

	return out
}

// SentenceAt returns the sentence containing the given offset, or the
// whole text when no split produced one.
func SentenceAt(sentences []Sentence, offset int) string {
	for _, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return s.Text
		}
	}
	if len(sentences) > 0 {
		return sentences[len(sentences)-1].Text
	}
	return ""
}
