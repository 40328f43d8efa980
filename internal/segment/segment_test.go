package segment

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/factline/internal/model"
)

func TestSegmenter_SpeakerTurns(t *testing.T) {
	seg := NewSegmenter()
	doc := &model.Document{
		ID: "doc-1",
		Text: `ALICE: We raised EUR 2 million last year.
BOB: Congratulations.
ALICE: Thanks. Revenue grew 40% since then.`,
	}

	turns, err := seg.Segment(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(turns) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(turns))
	}

	expected := []struct {
		speaker string
		text    string
	}{
		{"ALICE", "We raised EUR 2 million last year."},
		{"BOB", "Congratulations."},
		{"ALICE", "Thanks. Revenue grew 40% since then."},
	}
	for i, want := range expected {
		if turns[i].Speaker != want.speaker {
			t.Errorf("Turn %d: expected speaker %q, got %q", i, want.speaker, turns[i].Speaker)
		}
		if turns[i].Text != want.text {
			t.Errorf("Turn %d: expected text %q, got %q", i, want.text, turns[i].Text)
		}
		if turns[i].Index != i {
			t.Errorf("Turn %d: expected index %d, got %d", i, i, turns[i].Index)
		}
		if turns[i].DocumentID != "doc-1" {
			t.Errorf("Turn %d: expected document id doc-1, got %q", i, turns[i].DocumentID)
		}
	}
}

func TestSegmenter_UnattributedPreamble(t *testing.T) {
	seg := NewSegmenter()
	doc := &model.Document{
		ID: "doc-2",
		Text: `Recording of the Q3 diligence call.
JAN: Let's get started.`,
	}

	turns, err := seg.Segment(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != model.UnattributedSpeaker {
		t.Errorf("Expected preamble speaker %q, got %q", model.UnattributedSpeaker, turns[0].Speaker)
	}
	if turns[1].Speaker != "JAN" {
		t.Errorf("Expected second speaker JAN, got %q", turns[1].Speaker)
	}
}

func TestSegmenter_NoLabelsYieldsSingleTurn(t *testing.T) {
	seg := NewSegmenter()
	doc := &model.Document{
		ID:   "doc-3",
		Text: "The fund target is $50 million.\nCommitments so far total $30 million.",
	}

	turns, err := seg.Segment(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(turns))
	}
	if turns[0].Speaker != model.UnattributedSpeaker {
		t.Errorf("Expected UNATTRIBUTED, got %q", turns[0].Speaker)
	}
}

func TestSegmenter_BareLabelsStillYieldTurns(t *testing.T) {
	seg := NewSegmenter()

	// A label with no utterance is still a turn; only an empty document
	// may fail segmentation.
	turns, err := seg.Segment(&model.Document{ID: "doc-6", Text: "JV:\n"})
	if err != nil {
		t.Fatalf("Expected no error for a label-only document, got %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(turns))
	}
	if turns[0].Speaker != "JV" || turns[0].Text != "" {
		t.Errorf("Expected empty JV turn, got %+v", turns[0])
	}

	turns, err = seg.Segment(&model.Document{ID: "doc-7", Text: "JV:\nMK: Hello.\nJV:"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(turns))
	}
	if turns[0].Text != "" || turns[1].Text != "Hello." || turns[2].Text != "" {
		t.Errorf("Unexpected turn texts: %+v", turns)
	}
}

func TestSegmenter_EmptyDocument(t *testing.T) {
	seg := NewSegmenter()
	for _, text := range []string{"", "   \n\t\n  "} {
		_, err := seg.Segment(&model.Document{ID: "empty", Text: text})
		if err == nil {
			t.Fatalf("Expected error for text %q", text)
		}
		var segErr *model.SegmentationError
		if !errors.As(err, &segErr) {
			t.Fatalf("Expected SegmentationError, got %T: %v", err, err)
		}
		if segErr.DocumentID != "empty" {
			t.Errorf("Expected document id in error, got %q", segErr.DocumentID)
		}
	}
}

func TestSegmenter_ContentPreserved(t *testing.T) {
	seg := NewSegmenter()
	text := `ALICE: First point.
Second point on a new line.

BOB: Reply.`
	doc := &model.Document{ID: "doc-4", Text: text}

	turns, err := seg.Segment(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Every non-blank content line must appear in exactly one turn.
	joined := ""
	for _, turn := range turns {
		joined += turn.Text + "\n"
	}
	for _, want := range []string{"First point.", "Second point on a new line.", "Reply."} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected turns to contain %q", want)
		}
	}
	if strings.Count(joined, "point") != 2 {
		t.Errorf("Expected content to appear exactly once, got %q", joined)
	}
}

func TestSegmenter_ClockTimeNotASpeaker(t *testing.T) {
	seg := NewSegmenter()
	doc := &model.Document{
		ID:   "doc-5",
		Text: "ALICE: The call starts at\n10:30 sharp tomorrow.",
	}

	turns, err := seg.Segment(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("Expected 1 turn (10:30 is not a speaker label), got %d", len(turns))
	}
}

func TestSentences_NeverDropsContent(t *testing.T) {
	text := "We raised EUR 1.2 billion. Growth was 40%! Next round in Q3 2025"
	sentences := Sentences(text)

	if len(sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %+v", len(sentences), sentences)
	}
	if sentences[0].Text != "We raised EUR 1.2 billion." {
		t.Errorf("Decimal split the first sentence: %q", sentences[0].Text)
	}
	if sentences[2].Text != "Next round in Q3 2025" {
		t.Errorf("Trailing text without terminator was dropped: %q", sentences[2].Text)
	}
}

func TestSentenceAt(t *testing.T) {
	text := "First sentence. Second sentence."
	sentences := Sentences(text)

	if got := SentenceAt(sentences, 0); got != "First sentence." {
		t.Errorf("Expected first sentence, got %q", got)
	}
	if got := SentenceAt(sentences, len(text)-1); got != "Second sentence." {
		t.Errorf("Expected second sentence, got %q", got)
	}
}

func TestStripHTML(t *testing.T) {
	html := `<html><head><script>var x = 1;</script></head><body>
<p>ALICE: We raised $5 million.</p>
<p>BOB: In 3.2x terms?</p>
</body></html>`

	text := StripHTML(html)

	if strings.Contains(text, "var x") {
		t.Error("Expected script content to be stripped")
	}
	for _, want := range []string{"ALICE: We raised $5 million.", "BOB: In 3.2x terms?"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected stripped text to contain %q, got %q", want, text)
		}
	}

	// Block elements must produce line breaks so speaker labels stay at
	// the start of a line.
	if !strings.Contains(text, "\n") {
		t.Error("Expected block elements to emit newlines")
	}
	seg := NewSegmenter()
	turns, err := seg.Segment(&model.Document{ID: "html-doc", Text: text})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns from stripped HTML, got %d", len(turns))
	}
}
