package locator

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"web_locator/domain/entities"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewParser(logger)
}

func TestParseSingleKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entities.LocatorSpec
	}{
		{
			name: "xpath",
			raw:  "//div[@id='main']",
			want: entities.LocatorSpec{Kind: entities.KindXPath, Selector: "//div[@id='main']"},
		},
		{
			name: "parenthesized xpath",
			raw:  "(//button)[2]",
			want: entities.LocatorSpec{Kind: entities.KindXPath, Selector: "(//button)[2]"},
		},
		{
			name: "text",
			raw:  "text=Submit",
			want: entities.LocatorSpec{Kind: entities.KindText, Value: "Submit"},
		},
		{
			name: "text with exact argument",
			raw:  "text=Submit,exact=true",
			want: entities.LocatorSpec{Kind: entities.KindText, Value: "Submit", Exact: true},
		},
		{
			name: "text with embedded comma",
			raw:  "text=Hello, world",
			want: entities.LocatorSpec{Kind: entities.KindText, Value: "Hello, world"},
		},
		{
			name: "role colon shorthand",
			raw:  "role=button:提交",
			want: entities.LocatorSpec{Kind: entities.KindRole, Role: "button", Name: "提交"},
		},
		{
			name: "role kwargs",
			raw:  "role=button,name=提交,exact=true",
			want: entities.LocatorSpec{Kind: entities.KindRole, Role: "button", Name: "提交", Extra: map[string]any{"exact": true}},
		},
		{
			name: "bare role",
			raw:  "role=link",
			want: entities.LocatorSpec{Kind: entities.KindRole, Role: "link"},
		},
		{
			name: "clickable",
			raw:  "clickable=Save",
			want: entities.LocatorSpec{Kind: entities.KindClickable, Value: "Save"},
		},
		{
			name: "class with text",
			raw:  "class=highlight-item-container:日志检索",
			want: entities.LocatorSpec{Kind: entities.KindClassText, Class: "highlight-item-container", Value: "日志检索"},
		},
		{
			name: "bare class",
			raw:  "class=primary",
			want: entities.LocatorSpec{Kind: entities.KindCSS, Selector: ".primary"},
		},
		{
			name: "element type span",
			raw:  "span=日志检索",
			want: entities.LocatorSpec{Kind: entities.KindElementType, Tag: "span", Value: "日志检索"},
		},
		{
			name: "element type heading",
			raw:  "h3=Results",
			want: entities.LocatorSpec{Kind: entities.KindElementType, Tag: "h3", Value: "Results"},
		},
		{
			name: "placeholder",
			raw:  "placeholder=Search...",
			want: entities.LocatorSpec{Kind: entities.KindPlaceholder, Value: "Search..."},
		},
		{
			name: "label",
			raw:  "label=Email address",
			want: entities.LocatorSpec{Kind: entities.KindLabel, Value: "Email address"},
		},
		{
			name: "title",
			raw:  "title=Close dialog",
			want: entities.LocatorSpec{Kind: entities.KindTitle, Value: "Close dialog"},
		},
		{
			name: "alt",
			raw:  "alt=Company logo",
			want: entities.LocatorSpec{Kind: entities.KindAltText, Value: "Company logo"},
		},
		{
			name: "testid",
			raw:  "testid=submit-button",
			want: entities.LocatorSpec{Kind: entities.KindTestID, Value: "submit-button"},
		},
		{
			name: "css fallback",
			raw:  "#main .item > button.primary",
			want: entities.LocatorSpec{Kind: entities.KindCSS, Selector: "#main .item > button.primary"},
		},
		{
			name: "equals sign but unknown tag falls back to css",
			raw:  "table=Results",
			want: entities.LocatorSpec{Kind: entities.KindCSS, Selector: "table=Results"},
		},
		{
			name: "url is never an element type query",
			raw:  "http://example.com/page?tab=summary",
			want: entities.LocatorSpec{Kind: entities.KindCSS, Selector: "http://example.com/page?tab=summary"},
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Parse(tt.raw)
			assert.Equal(t, tt.want, plan.Spec)
			assert.Empty(t, plan.Modifiers)
		})
	}
}

// The generic TAG=TEXT rule shares its surface syntax with every prefix rule,
// so its position in the table is load-bearing: it must come after all of
// them. Guard the table order itself rather than hoping sample inputs keep
// covering it.
func TestGrammarRuleOrder(t *testing.T) {
	position := make(map[string]int, len(grammarRules))
	for i, rule := range grammarRules {
		position[rule.name] = i
	}

	tagEquals, ok := position["tag-equals"]
	require.True(t, ok, "tag-equals rule missing from grammar table")

	for _, name := range []string{"xpath", "text", "role", "clickable", "class", "placeholder", "label", "title", "alt", "testid"} {
		i, ok := position[name]
		require.True(t, ok, "rule %s missing from grammar table", name)
		assert.Less(t, i, tagEquals, "rule %s must run before tag-equals", name)
	}
}

func TestParsePrefixCollisions(t *testing.T) {
	p := newTestParser(t)

	// "p" is an allow-listed tag and a prefix of "placeholder"; each must
	// keep its own rule.
	assert.Equal(t, entities.KindElementType, p.Parse("p=hello").Spec.Kind)
	assert.Equal(t, entities.KindPlaceholder, p.Parse("placeholder=hello").Spec.Kind)

	// "a" is allow-listed and a prefix of "alt".
	assert.Equal(t, entities.KindElementType, p.Parse("a=Home").Spec.Kind)
	assert.Equal(t, entities.KindAltText, p.Parse("alt=Home").Spec.Kind)
}

func TestParseEscapedAmpersand(t *testing.T) {
	p := newTestParser(t)

	plan := p.Parse(`text=Tom \& Jerry`)
	assert.Empty(t, plan.Modifiers)
	assert.Equal(t, entities.LocatorSpec{Kind: entities.KindText, Value: "Tom & Jerry"}, plan.Spec)
}

func TestParseRoleUnknownArgWarnsAndContinues(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewParser(logger)

	plan := p.Parse("role=button,name=Save,pressed=true,broken")
	assert.Equal(t, "button", plan.Spec.Role)
	assert.Equal(t, "Save", plan.Spec.Name)
	assert.Equal(t, map[string]any{"pressed": true}, plan.Spec.Extra)
	require.NotEmpty(t, hook.Entries)
	assert.Contains(t, hook.LastEntry().Message, "broken")
}

func TestSpecStringRoundTrip(t *testing.T) {
	raws := []string{
		"//div[@id='main']",
		"text=Submit",
		"text=提交,exact=true",
		"role=button:提交",
		"role=button,name=提交,pressed=true",
		"role=navigation",
		"clickable=Save",
		"class=highlight-item-container:日志检索",
		"span=日志检索",
		"placeholder=Search...",
		"label=Email address",
		"title=Close dialog",
		"alt=Company logo",
		"testid=submit-button",
		"#main .item",
		`text=Tom \& Jerry`,
		`span=Cakes \& Ale`,
		`label=Terms \& Conditions`,
	}

	p := newTestParser(t)
	for _, raw := range raws {
		t.Run(raw, func(t *testing.T) {
			spec := p.Parse(raw).Spec
			again := p.Parse(spec.String()).Spec
			assert.Equal(t, spec, again)
		})
	}
}

// Serialized values must re-escape '&', or re-parsing the output splits the
// value at the ampersand as if it were a compound separator.
func TestSpecStringEscapesAmpersand(t *testing.T) {
	p := newTestParser(t)

	spec := p.Parse(`text=Tom \& Jerry`).Spec
	assert.Equal(t, "Tom & Jerry", spec.Value)
	assert.Equal(t, `text=Tom \& Jerry`, spec.String())

	again := p.Parse(spec.String())
	assert.Empty(t, again.Modifiers)
	assert.Equal(t, spec, again.Spec)
}
