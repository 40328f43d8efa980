package model

import "strings"

// Role classifies a canonical entity
type Role string

const (
	RoleInvestor     Role = "INVESTOR"
	RoleFounder      Role = "FOUNDER"
	RoleAnalyst      Role = "ANALYST"
	RolePartner      Role = "PARTNER"
	RoleOrganization Role = "ORGANIZATION"
	RoleOther        Role = "OTHER"
)

// Entity is a canonical person or organization. Created on the first
// unresolvable mention, enriched with aliases on subsequent matches,
// never deleted within a session.
type Entity struct {
	ID      string   `json:"id"`                // Deterministic per (document, canonical name)
	Name    string   `json:"name"`              // Canonical name
	Role    Role     `json:"role"`
	Aliases []string `json:"aliases,omitempty"` // Surface forms seen for this entity, in first-seen order
}

// HasAlias reports whether the entity already carries the given alias.
func (e *Entity) HasAlias(alias string) bool {
	for _, a := range e.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// RoleFromString maps free-text roster roles onto the Role enum.
func RoleFromString(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "investor", "vc", "lp":
		return RoleInvestor
	case "founder", "ceo", "cofounder", "co-founder":
		return RoleFounder
	case "analyst", "associate":
		return RoleAnalyst
	case "partner", "gp", "general partner", "managing partner":
		return RolePartner
	case "organization", "company", "fund", "firm":
		return RoleOrganization
	default:
		return RoleOther
	}
}
