package locator

import (
	"context"
	"strings"
	"time"

	"web_locator/domain/entities"
	"web_locator/domain/interfaces"
)

// fakeElement is one node of the fixture DOM used by the engine tests.
type fakeElement struct {
	tag      string
	id       string
	classes  []string
	role     string
	text     string
	visible  bool
	enabled  bool
	attrs    map[string]string
	children []*fakeElement
}

func (el *fakeElement) hasClass(class string) bool {
	for _, c := range el.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (el *fakeElement) attr(name string) string {
	if el.attrs == nil {
		return ""
	}
	return el.attrs[name]
}

// fakeQuerier resolves LocatorSpecs against an in-memory element tree. It
// understands just enough CSS for the specs the engine actually issues.
type fakeQuerier struct {
	roots []*fakeElement
}

func (q *fakeQuerier) walk(roots []*fakeElement, visit func(*fakeElement)) {
	for _, el := range roots {
		visit(el)
		q.walk(el.children, visit)
	}
}

// matchSimpleCSS supports the selector shapes the engine emits: a bare tag,
// ".class", "#id", "tag.class", and single [attr="value"] filters.
func matchSimpleCSS(el *fakeElement, selector string) bool {
	if strings.HasPrefix(selector, "[") {
		body := strings.TrimSuffix(strings.TrimPrefix(selector, "["), "]")
		key, value, ok := strings.Cut(body, "=")
		if !ok {
			return false
		}
		value = strings.Trim(value, `"'`)
		if key == "role" {
			return el.role == value
		}
		return el.attr(key) == value
	}
	if strings.HasPrefix(selector, "#") {
		return el.id == strings.TrimPrefix(selector, "#")
	}
	if strings.HasPrefix(selector, ".") {
		return el.hasClass(strings.TrimPrefix(selector, "."))
	}
	if tag, class, ok := strings.Cut(selector, "."); ok {
		return el.tag == tag && el.hasClass(class)
	}
	return el.tag == selector
}

func matchSpec(el *fakeElement, spec entities.LocatorSpec) bool {
	switch spec.Kind {
	case entities.KindCSS:
		return matchSimpleCSS(el, spec.Selector)
	case entities.KindText:
		if spec.Exact {
			return strings.TrimSpace(el.text) == spec.Value
		}
		return strings.Contains(el.text, spec.Value)
	case entities.KindElementType:
		return el.tag == spec.Tag && strings.Contains(el.text, spec.Value)
	case entities.KindClassText:
		return el.hasClass(spec.Class) && strings.Contains(el.text, spec.Value)
	case entities.KindRole:
		if el.role != spec.Role {
			return false
		}
		return spec.Name == "" || strings.Contains(el.text, spec.Name) || el.attr("aria-label") == spec.Name
	case entities.KindLabel:
		return el.attr("label") == spec.Value
	case entities.KindPlaceholder:
		return el.attr("placeholder") == spec.Value
	case entities.KindTitle:
		return el.attr("title") == spec.Value
	case entities.KindAltText:
		return el.attr("alt") == spec.Value
	case entities.KindTestID:
		return el.attr("data-testid") == spec.Value
	}
	return false
}

func (q *fakeQuerier) collect(roots []*fakeElement, spec entities.LocatorSpec) []entities.Candidate {
	var out []entities.Candidate
	q.walk(roots, func(el *fakeElement) {
		if matchSpec(el, spec) {
			out = append(out, entities.Candidate{Handle: el, Index: len(out)})
		}
	})
	return out
}

func (q *fakeQuerier) QueryAll(ctx context.Context, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	return q.collect(q.roots, spec), nil
}

func (q *fakeQuerier) QueryWithin(ctx context.Context, parent entities.Candidate, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	el := parent.Handle.(*fakeElement)
	return q.collect(el.children, spec), nil
}

func (q *fakeQuerier) Count(ctx context.Context, spec entities.LocatorSpec) (int, error) {
	return len(q.collect(q.roots, spec)), nil
}

func (q *fakeQuerier) IsVisible(ctx context.Context, c entities.Candidate) (bool, error) {
	return c.Handle.(*fakeElement).visible, nil
}

func (q *fakeQuerier) IsEnabled(ctx context.Context, c entities.Candidate) (bool, error) {
	return c.Handle.(*fakeElement).enabled, nil
}

func (q *fakeQuerier) TextOf(ctx context.Context, c entities.Candidate) (string, error) {
	return c.Handle.(*fakeElement).text, nil
}

func (q *fakeQuerier) Attribute(ctx context.Context, c entities.Candidate, name string) (string, error) {
	return c.Handle.(*fakeElement).attr(name), nil
}

func (q *fakeQuerier) WaitFor(ctx context.Context, spec entities.LocatorSpec, state interfaces.WaitState, timeout time.Duration) bool {
	matches := q.collect(q.roots, spec)
	switch state {
	case interfaces.WaitStateAttached:
		return len(matches) > 0
	case interfaces.WaitStateDetached:
		return len(matches) == 0
	case interfaces.WaitStateHidden:
		for _, c := range matches {
			if c.Handle.(*fakeElement).visible {
				return false
			}
		}
		return true
	}
	for _, c := range matches {
		if c.Handle.(*fakeElement).visible {
			return true
		}
	}
	return false
}
