package entities

import (
	"fmt"
	"sort"
	"strings"
)

// LocatorKind identifies which query form a LocatorSpec carries.
// Exactly one kind is active per spec; the kind is fixed at parse time.
type LocatorKind string

const (
	KindCSS         LocatorKind = "css"
	KindXPath       LocatorKind = "xpath"
	KindText        LocatorKind = "text"
	KindRole        LocatorKind = "role"
	KindLabel       LocatorKind = "label"
	KindPlaceholder LocatorKind = "placeholder"
	KindTitle       LocatorKind = "title"
	KindAltText     LocatorKind = "alt"
	KindTestID      LocatorKind = "testid"
	KindElementType LocatorKind = "element_type"
	KindClassText   LocatorKind = "class_text"
	KindClickable   LocatorKind = "clickable"
)

// LocatorSpec is the parsed, typed representation of a locator string's base
// query. Which fields are meaningful depends on Kind:
//
//	KindCSS, KindXPath            Selector
//	KindText                      Value, Exact
//	KindRole                      Role, Name, Extra
//	KindLabel..KindTestID         Value
//	KindElementType               Tag, Value (contained text)
//	KindClassText                 Class, Value (contained text)
//	KindClickable                 Value (text handed to the smart resolver)
type LocatorSpec struct {
	Kind     LocatorKind    `json:"kind"`
	Selector string         `json:"selector,omitempty"`
	Value    string         `json:"value,omitempty"`
	Exact    bool           `json:"exact,omitempty"`
	Role     string         `json:"role,omitempty"`
	Name     string         `json:"name,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
	Tag      string         `json:"tag,omitempty"`
	Class    string         `json:"class,omitempty"`
}

// escapeAmp re-escapes '&' so serialized values survive the compound split
// on re-parse.
func escapeAmp(s string) string {
	return strings.ReplaceAll(s, "&", `\&`)
}

// String - serializes the spec back into its locator-string form. Re-parsing
// the result yields an equal spec; KindCSS is its own fixed point.
func (s LocatorSpec) String() string {
	switch s.Kind {
	case KindCSS, KindXPath:
		return escapeAmp(s.Selector)
	case KindText:
		if s.Exact {
			return "text=" + escapeAmp(s.Value) + ",exact=true"
		}
		return "text=" + escapeAmp(s.Value)
	case KindRole:
		if len(s.Extra) == 0 {
			if s.Name != "" {
				return "role=" + s.Role + ":" + escapeAmp(s.Name)
			}
			return "role=" + s.Role
		}
		parts := []string{"role=" + s.Role}
		if s.Name != "" {
			parts = append(parts, "name="+escapeAmp(s.Name))
		}
		keys := make([]string, 0, len(s.Extra))
		for k := range s.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, escapeAmp(fmt.Sprintf("%s=%v", k, s.Extra[k])))
		}
		return strings.Join(parts, ",")
	case KindLabel, KindPlaceholder, KindTitle, KindAltText, KindTestID, KindClickable:
		return string(s.Kind) + "=" + escapeAmp(s.Value)
	case KindElementType:
		return s.Tag + "=" + escapeAmp(s.Value)
	case KindClassText:
		return "class=" + s.Class + ":" + escapeAmp(s.Value)
	}
	return escapeAmp(s.Selector)
}
