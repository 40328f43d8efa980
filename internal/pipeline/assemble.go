package pipeline

import (
	"fmt"
	"sort"

	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/normalize"
	"github.com/ppiankov/factline/internal/resolve"
)

// pendingFact is a normalized candidate awaiting its final ordinal id.
type pendingFact struct {
	candidate model.Candidate
	fact      model.Fact
}

// assembler collects normalized facts and builds the final Record.
// Fact ids are ordinals assigned after sorting by document position, so
// the same transcript always yields the same ids.
type assembler struct {
	pending   []pendingFact
	byID      map[string]pendingFact // provenance for the validator's retry
	sentByID  map[string]string
	noteSet   map[string]bool
	noteOrder []string
}

func newAssembler() *assembler {
	return &assembler{
		byID:     make(map[string]pendingFact),
		sentByID: make(map[string]string),
		noteSet:  make(map[string]bool),
	}
}

// add records one normalized candidate. Normalization notes are also
// promoted to document-level notes so a reader sees degraded spans
// without walking every fact.
func (a *assembler) add(c model.Candidate, r normalize.Result, speakerID string) {
	f := model.Fact{
		Kind:       c.Kind,
		Value:      r.Value,
		TurnIndex:  c.TurnIndex,
		Start:      c.Start,
		End:        c.End,
		SourceText: c.Text,
		SpeakerID:  speakerID,
		Confidence: r.Confidence,
		Notes:      r.Notes,
	}
	a.pending = append(a.pending, pendingFact{candidate: c, fact: f})
	for _, n := range r.Notes {
		a.note(fmt.Sprintf("%s: %q", n, c.Text))
	}
}

func (a *assembler) note(s string) {
	if a.noteSet[s] {
		return
	}
	a.noteSet[s] = true
	a.noteOrder = append(a.noteOrder, s)
}

// assemble produces the Record: facts sorted by (turn, start), ordinal
// ids, entities in creation order.
func (a *assembler) assemble(doc *model.Document, turnCount int, session *resolve.Session) *model.Record {
	sort.SliceStable(a.pending, func(i, j int) bool {
		fi, fj := a.pending[i].fact, a.pending[j].fact
		if fi.TurnIndex != fj.TurnIndex {
			return fi.TurnIndex < fj.TurnIndex
		}
		if fi.Start != fj.Start {
			return fi.Start < fj.Start
		}
		return fi.Kind < fj.Kind
	})

	facts := make([]model.Fact, 0, len(a.pending))
	for i := range a.pending {
		p := &a.pending[i]
		p.fact.ID = fmt.Sprintf("f-%04d", i+1)
		a.byID[p.fact.ID] = *p
		a.sentByID[p.fact.ID] = p.candidate.Sentence
		facts = append(facts, p.fact)
	}

	return &model.Record{
		DocumentID: doc.ID,
		Turns:      turnCount,
		Facts:      facts,
		Entities:   session.Entities(),
		Notes:      a.noteOrder,
	}
}

// sentences returns the fact id -> enclosing sentence map used by the
// validator for keyword anchoring. The validator extends it in place
// when a retry mints a superseding fact id.
func (a *assembler) sentences() map[string]string {
	return a.sentByID
}

// provenance returns the candidate and assembled fact behind a fact id.
func (a *assembler) provenance(factID string) (model.Candidate, model.Fact, bool) {
	p, ok := a.byID[factID]
	return p.candidate, p.fact, ok
}

// track registers the provenance of a superseding fact minted during the
// validator's retry pass.
func (a *assembler) track(id string, c model.Candidate, f model.Fact) {
	a.byID[id] = pendingFact{candidate: c, fact: f}
}
