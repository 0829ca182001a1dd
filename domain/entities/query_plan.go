package entities

import "strings"

// QueryPlan pairs a base spec with its ordered modifier chain. Plans are
// built fresh per keyword invocation and discarded afterwards; nothing caches
// them across calls because the page underneath is free to change.
type QueryPlan struct {
	Spec      LocatorSpec     `json:"spec"`
	Modifiers []ModifierToken `json:"modifiers,omitempty"`
}

// String - serializes the plan back into compound locator syntax.
func (p QueryPlan) String() string {
	if len(p.Modifiers) == 0 {
		return p.Spec.String()
	}
	parts := make([]string, 0, len(p.Modifiers)+1)
	parts = append(parts, p.Spec.String())
	for _, m := range p.Modifiers {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, "&")
}
