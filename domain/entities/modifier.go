package entities

import (
	"fmt"
	"strconv"
)

// ModifierKind names one post-processing operation in a compound locator.
// The string values double as the compound-syntax keys.
type ModifierKind string

const (
	ModSubLocator  ModifierKind = "locator"
	ModHasText     ModifierKind = "has_text"
	ModHasNotText  ModifierKind = "has_not_text"
	ModFirst       ModifierKind = "first"
	ModLast        ModifierKind = "last"
	ModNth         ModifierKind = "nth"
	ModVisibleOnly ModifierKind = "visible"
)

// ModifierToken is one step of a modifier chain. Tokens apply in the order
// given: each operates on the output of the previous one, so swapping two
// tokens is an observable behavior change, not a refactor.
type ModifierToken struct {
	Kind  ModifierKind `json:"kind"`
	Value string       `json:"value,omitempty"` // sub-locator string or text filter
	Index int          `json:"index,omitempty"` // position for ModNth
}

// String - serializes the token back into its compound-segment form.
func (m ModifierToken) String() string {
	switch m.Kind {
	case ModSubLocator, ModHasText, ModHasNotText:
		return string(m.Kind) + "=" + escapeAmp(m.Value)
	case ModNth:
		return "nth=" + strconv.Itoa(m.Index)
	case ModFirst, ModLast, ModVisibleOnly:
		return string(m.Kind) + "=true"
	}
	return fmt.Sprintf("%s=%s", m.Kind, escapeAmp(m.Value))
}
