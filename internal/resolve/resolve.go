// Package resolve links mentions of people and organizations to
// canonical entities. Resolution state lives in a Session constructed
// per document and passed explicitly: the same initials may denote
// different people in different documents, so nothing is ever shared
// across pipelines.
package resolve

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/factline/internal/model"
)

// entityNamespace seeds deterministic entity ids: the same document and
// canonical name always produce the same id, which keeps records
// byte-identical across reruns.
var entityNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("factline.entities"))

// Session is the per-document resolution cache. Roster entries become
// entities up front; unresolved mentions become new OTHER entities.
// Aliases accumulate for the life of the session and entities are never
// deleted within one.
type Session struct {
	docID    string
	entities []*model.Entity
	byAlias  map[string]*model.Entity // lowercased surface form -> entity
}

// NewSession seeds a session with the document's declared roster.
func NewSession(doc *model.Document) *Session {
	s := &Session{
		docID:   doc.ID,
		byAlias: make(map[string]*model.Entity),
	}
	for _, p := range doc.Participants {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		e := &model.Entity{
			ID:   entityID(doc.ID, name),
			Name: name,
			Role: model.RoleFromString(p.Role),
		}
		s.entities = append(s.entities, e)
		s.byAlias[strings.ToLower(name)] = e
	}
	return s
}

// Resolve links a mention to a canonical entity: exact name first, then
// initials against the roster, then a case-insensitive token-subset
// match. An unresolvable mention becomes a new entity with role OTHER
// rather than a forced match.
func (s *Session) Resolve(mention string) *model.Entity {
	mention = strings.TrimSpace(mention)
	if mention == "" {
		return nil
	}

	if e, ok := s.byAlias[strings.ToLower(mention)]; ok {
		return e
	}

	if e := s.matchInitials(mention); e != nil {
		s.addAlias(e, mention)
		return e
	}

	if e := s.matchTokenSubset(mention); e != nil {
		s.addAlias(e, mention)
		return e
	}

	e := &model.Entity{
		ID:   entityID(s.docID, mention),
		Name: mention,
		Role: model.RoleOther,
	}
	s.entities = append(s.entities, e)
	s.byAlias[strings.ToLower(mention)] = e
	return e
}

// Entities returns the session's entities in creation order.
func (s *Session) Entities() []model.Entity {
	out := make([]model.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, *e)
	}
	return out
}

func (s *Session) addAlias(e *model.Entity, alias string) {
	if e.HasAlias(alias) || strings.EqualFold(e.Name, alias) {
		return
	}
	e.Aliases = append(e.Aliases, alias)
	s.byAlias[strings.ToLower(alias)] = e
}

// matchInitials matches an all-caps mention against roster-name
// initials. A mention whose leading letters cover an entry's initials
// still matches ("JVE" resolves against "Jan Vriesendorp"); the entry
// sharing the longest prefix wins, earlier roster entries break ties.
func (s *Session) matchInitials(mention string) *model.Entity {
	if len(mention) < 2 || len(mention) > 4 || mention != strings.ToUpper(mention) {
		return nil
	}
	if strings.ContainsAny(mention, " .,-") {
		return nil
	}

	var best *model.Entity
	bestLen := 0
	for _, e := range s.entities {
		initials := nameInitials(e.Name)
		if len(initials) < 2 {
			continue
		}
		n := commonPrefix(mention, initials)
		if n < len(initials) && n < len(mention) {
			continue // neither side fully covered
		}
		if n > bestLen {
			best, bestLen = e, n
		}
	}
	return best
}

// matchTokenSubset matches a mention containing every token of a
// canonical name in any order, ignoring punctuation and case
// ("Vriesendorp, Jaap" resolves to "Jaap Vriesendorp").
func (s *Session) matchTokenSubset(mention string) *model.Entity {
	mentionTokens := nameTokens(mention)
	if len(mentionTokens) == 0 {
		return nil
	}

	for _, e := range s.entities {
		canonical := nameTokens(e.Name)
		if len(canonical) == 0 {
			continue
		}
		if containsAll(mentionTokens, canonical) {
			return e
		}
	}
	return nil
}

func entityID(docID, canonicalName string) string {
	return uuid.NewSHA1(entityNamespace, []byte(docID+"\x00"+strings.ToLower(canonicalName))).String()
}

// nameInitials derives initials by taking the first letter of each name
// token: "Jaap Vriesendorp" -> "JV".
func nameInitials(name string) string {
	var b strings.Builder
	for _, tok := range nameTokens(name) {
		b.WriteString(strings.ToUpper(tok[:1]))
	}
	return b.String()
}

// nameTokens lowercases and strips punctuation from name tokens.
func nameTokens(name string) []string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.Trim(f, "'\"()-"))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]bool, len(haystack))
	for _, h := range haystack {
		set[h] = true
	}
	for _, n := range needles {
		if !set[n] {
			return false
		}
	}
	return true
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
