// Package extract scans speaker turns for spans that look like typed
// facts: currency amounts, percentages, dates, multiples, durations,
// headcounts, and entity mentions. Extraction is pure and deterministic:
// the same turn text and pattern set always yield the same candidates.
package extract

import (
	"sort"
	"strings"

	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/segment"
)

// Extractor produces candidate spans from turns
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// span is a raw regex match before overlap resolution.
type span struct {
	start int
	end   int
	kind  model.Kind
}

// Extract returns the turn's candidates, ordered by start offset.
// Overlap policy: within a kind the longest non-overlapping match wins,
// ties broken by earliest start; across kinds the numeric families are
// mutually exclusive while DATE and ENTITY_MENTION may overlap anything.
func (e *Extractor) Extract(turn model.Turn) []model.Candidate {
	perKind := make(map[model.Kind][]span)

	for kind, patterns := range kindPatterns {
		var matches []span
		for _, re := range patterns {
			for _, loc := range re.FindAllStringIndex(turn.Text, -1) {
				matches = append(matches, span{start: loc[0], end: loc[1], kind: kind})
			}
		}
		if kind == model.KindEntityMention {
			matches = filterEntitySpans(turn.Text, matches)
		}
		perKind[kind] = selectLongest(matches)
	}

	resolveNumericOverlaps(perKind)

	var all []span
	for _, spans := range perKind {
		all = append(all, spans...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].kind < all[j].kind
	})

	sentences := segment.Sentences(turn.Text)
	candidates := make([]model.Candidate, 0, len(all))
	for _, sp := range all {
		candidates = append(candidates, model.Candidate{
			TurnIndex: turn.Index,
			Start:     sp.start,
			End:       sp.end,
			Text:      turn.Text[sp.start:sp.end],
			Kind:      sp.kind,
			Sentence:  segment.SentenceAt(sentences, sp.start),
		})
	}

	return candidates
}

// selectLongest keeps the longest non-overlapping matches, ties broken
// by earliest start offset.
func selectLongest(matches []span) []span {
	sort.Slice(matches, func(i, j int) bool {
		li, lj := matches[i].end-matches[i].start, matches[j].end-matches[j].start
		if li != lj {
			return li > lj
		}
		return matches[i].start < matches[j].start
	})

	var kept []span
	for _, m := range matches {
		if !overlapsAny(m, kept) {
			kept = append(kept, m)
		}
	}
	return kept
}

// resolveNumericOverlaps enforces cross-kind exclusivity for the numeric
// families: longer spans win, exact ties fall back to kind precedence.
func resolveNumericOverlaps(perKind map[model.Kind][]span) {
	var numeric []span
	for _, kind := range numericKinds {
		numeric = append(numeric, perKind[kind]...)
	}

	sort.Slice(numeric, func(i, j int) bool {
		li, lj := numeric[i].end-numeric[i].start, numeric[j].end-numeric[j].start
		if li != lj {
			return li > lj
		}
		if numeric[i].start != numeric[j].start {
			return numeric[i].start < numeric[j].start
		}
		return numericPrecedence[numeric[i].kind] < numericPrecedence[numeric[j].kind]
	})

	kept := make(map[model.Kind][]span)
	var accepted []span
	for _, m := range numeric {
		if !overlapsAny(m, accepted) {
			accepted = append(accepted, m)
			kept[m.kind] = append(kept[m.kind], m)
		}
	}

	for _, kind := range numericKinds {
		perKind[kind] = kept[kind]
	}
}

func overlapsAny(m span, kept []span) bool {
	for _, k := range kept {
		if m.start < k.end && k.start < m.end {
			return true
		}
	}
	return false
}

// leadingStopwords are sentence-start tokens that make a capitalized
// bigram grammatical rather than a name ("The Fund", "Our Series").
var leadingStopwords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"Our": true, "Their": true, "Your": true, "His": true, "Her": true,
	"We": true, "They": true, "And": true, "But": true, "So": true,
	"Last": true, "Next": true, "Over": true, "After": true, "Before": true,
	"Yes": true, "No": true, "Series": true, "Fund": true, "Due": true,
}

// filterEntitySpans drops initialisms on the stoplist and capitalized
// spans that start with a grammatical stopword.
func filterEntitySpans(text string, matches []span) []span {
	var out []span
	for _, m := range matches {
		s := text[m.start:m.end]
		if initialismStoplist[strings.ToUpper(s)] {
			continue
		}
		first, _, found := strings.Cut(s, " ")
		if found && leadingStopwords[first] {
			continue
		}
		out = append(out, m)
	}
	return out
}
