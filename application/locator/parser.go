package locator

import (
	"strings"

	"github.com/sirupsen/logrus"

	"web_locator/domain/entities"
)

// Parser turns locator strings into typed query plans. No input fails to
// parse: anything no grammar rule claims falls through to a literal CSS
// selector, so malformed selectors surface at query time, not parse time.
type Parser struct {
	log logrus.FieldLogger
}

// NewParser - creates a parser with the given logger for fail-open warnings.
func NewParser(log logrus.FieldLogger) *Parser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{log: log}
}

// elementTypeTags is the allow-list for the generic TAG=TEXT rule.
var elementTypeTags = map[string]bool{
	"span": true, "div": true, "button": true, "a": true, "input": true,
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true,
}

// grammarRule is one entry of the detection table. Rules run top to bottom
// and the first match wins, so priority lives in the slice order and nowhere
// else.
type grammarRule struct {
	name  string
	match func(raw string) bool
	build func(p *Parser, raw string) entities.LocatorSpec
}

var grammarRules = []grammarRule{
	{
		name: "xpath",
		match: func(raw string) bool {
			return strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "(//")
		},
		build: func(p *Parser, raw string) entities.LocatorSpec {
			return entities.LocatorSpec{Kind: entities.KindXPath, Selector: raw}
		},
	},
	{
		name:  "text",
		match: hasPrefix("text="),
		build: func(p *Parser, raw string) entities.LocatorSpec {
			return p.buildText(strings.TrimPrefix(raw, "text="))
		},
	},
	{
		name:  "role",
		match: hasPrefix("role="),
		build: func(p *Parser, raw string) entities.LocatorSpec {
			return p.buildRole(strings.TrimPrefix(raw, "role="))
		},
	},
	{
		name:  "clickable",
		match: hasPrefix("clickable="),
		build: func(p *Parser, raw string) entities.LocatorSpec {
			return entities.LocatorSpec{Kind: entities.KindClickable, Value: strings.TrimPrefix(raw, "clickable=")}
		},
	},
	{
		name:  "class",
		match: hasPrefix("class="),
		build: func(p *Parser, raw string) entities.LocatorSpec {
			rest := strings.TrimPrefix(raw, "class=")
			if class, text, ok := strings.Cut(rest, ":"); ok {
				return entities.LocatorSpec{Kind: entities.KindClassText, Class: class, Value: text}
			}
			return entities.LocatorSpec{Kind: entities.KindCSS, Selector: "." + rest}
		},
	},
	{
		name:  "placeholder",
		match: hasPrefix("placeholder="),
		build: buildPrefixed(entities.KindPlaceholder, "placeholder="),
	},
	{
		name:  "label",
		match: hasPrefix("label="),
		build: buildPrefixed(entities.KindLabel, "label="),
	},
	{
		name:  "title",
		match: hasPrefix("title="),
		build: buildPrefixed(entities.KindTitle, "title="),
	},
	{
		name:  "alt",
		match: hasPrefix("alt="),
		build: buildPrefixed(entities.KindAltText, "alt="),
	},
	{
		name:  "testid",
		match: hasPrefix("testid="),
		build: buildPrefixed(entities.KindTestID, "testid="),
	},
	// The generic TAG=TEXT rule must stay below every prefix rule above:
	// role=, class=, text= and friends all contain '=' and would otherwise be
	// captured as bogus element-type queries.
	{
		name: "tag-equals",
		match: func(raw string) bool {
			if isURLLike(raw) {
				return false
			}
			tag, _, ok := strings.Cut(raw, "=")
			return ok && elementTypeTags[tag]
		},
		build: func(p *Parser, raw string) entities.LocatorSpec {
			tag, text, _ := strings.Cut(raw, "=")
			return entities.LocatorSpec{Kind: entities.KindElementType, Tag: tag, Value: text}
		},
	},
}

func hasPrefix(prefix string) func(string) bool {
	return func(raw string) bool { return strings.HasPrefix(raw, prefix) }
}

func buildPrefixed(kind entities.LocatorKind, prefix string) func(*Parser, string) entities.LocatorSpec {
	return func(p *Parser, raw string) entities.LocatorSpec {
		return entities.LocatorSpec{Kind: kind, Value: strings.TrimPrefix(raw, prefix)}
	}
}

func isURLLike(raw string) bool {
	return strings.HasPrefix(raw, "http") || strings.HasPrefix(raw, "ftp")
}

// Parse - turns a raw locator string into a query plan. Compound strings
// (unescaped '&' separators) produce a base spec plus its modifier chain;
// everything else is a single spec with no modifiers.
func (p *Parser) Parse(raw string) entities.QueryPlan {
	if isCompound(raw) {
		spec, mods := p.parseCompound(raw)
		return entities.QueryPlan{Spec: spec, Modifiers: mods}
	}
	return entities.QueryPlan{Spec: p.parseSingle(unescapeAmp(raw))}
}

// parseSingle resolves one locator string against the grammar table.
func (p *Parser) parseSingle(raw string) entities.LocatorSpec {
	for _, rule := range grammarRules {
		if rule.match(raw) {
			return rule.build(p, raw)
		}
	}
	return entities.LocatorSpec{Kind: entities.KindCSS, Selector: raw}
}

// buildText parses the remainder of a text= locator. The value may carry a
// trailing argument list: "text=Submit,exact=true". Comma segments that do
// not look like key=value pairs are folded back into the text itself.
func (p *Parser) buildText(rest string) entities.LocatorSpec {
	parts := strings.Split(rest, ",")
	spec := entities.LocatorSpec{Kind: entities.KindText, Value: parts[0]}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			spec.Value += "," + part
			continue
		}
		switch key {
		case "exact":
			spec.Exact = coerceBool(value)
		default:
			p.log.Warnf("ignoring unknown text locator argument %q", key)
		}
	}
	return spec
}

// buildRole parses the remainder of a role= locator. Three surface forms are
// supported: "role=ROLE:NAME" (colon shorthand, only without commas),
// "role=ROLE,key=value,..." and bare "role=ROLE".
func (p *Parser) buildRole(rest string) entities.LocatorSpec {
	if !strings.Contains(rest, ",") {
		if role, name, ok := strings.Cut(rest, ":"); ok {
			return entities.LocatorSpec{Kind: entities.KindRole, Role: role, Name: name}
		}
		return entities.LocatorSpec{Kind: entities.KindRole, Role: rest}
	}

	parts := strings.Split(rest, ",")
	spec := entities.LocatorSpec{Kind: entities.KindRole, Role: parts[0]}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			p.log.Warnf("ignoring malformed role locator argument %q", part)
			continue
		}
		if key == "name" {
			spec.Name = value
			continue
		}
		if spec.Extra == nil {
			spec.Extra = make(map[string]any)
		}
		spec.Extra[key] = coerceValue(value)
	}
	return spec
}

// coerceBool interprets the compound-syntax boolean strings.
func coerceBool(value string) bool {
	return strings.EqualFold(value, "true")
}

// coerceValue maps "true"/"false" to bools and leaves everything else as a
// string, matching the loose typing of the locator syntax.
func coerceValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
