package locator

import (
	"context"
	"strings"

	"web_locator/domain/entities"
)

// clickableTemplates are the semantically-interactive selectors scanned by
// ResolveClickable, most interactive first. Template order, then match order,
// fixes the enumeration order of candidates.
var clickableTemplates = []string{
	"button",
	"a",
	`[role="button"]`,
	`[role="link"]`,
	`[role="menuitem"]`,
}

// narrowingTags narrow an ambiguous exact-text match, tried in order.
var narrowingTags = []string{"span", "div"}

// rank orders candidates for selection. Lexicographic: interactable (visible
// and enabled) beats merely visible, visible beats anything else, earlier
// document order breaks ties.
type rank struct {
	interactable bool
	visible      bool
	order        int
}

func (r rank) better(o rank) bool {
	if r.interactable != o.interactable {
		return r.interactable
	}
	if r.visible != o.visible {
		return r.visible
	}
	return r.order < o.order
}

// probe is a candidate with its visibility and enablement fetched once.
type probe struct {
	cand    entities.Candidate
	visible bool
	enabled bool
}

// ResolveClickable - finds the element a human would click for the given
// text. Real pages render the same label in several places at once (menu
// item, tooltip, hidden animation clone), so a unique-match strategy fails in
// practice; this cascade approximates the human choice instead:
//
//  1. first visible and enabled match of the interactive templates
//  2. first visible match of the interactive templates
//  3. a unique exact text match
//  4. an ambiguous exact match narrowed by span, then div, best-ranked
//  5. best-ranked substring text match
//  6. nothing: nil result plus a warning, never an error
func (e *Engine) ResolveClickable(ctx context.Context, text string) (*entities.Candidate, error) {
	probes, err := e.probeTemplates(ctx, text)
	if err != nil {
		return nil, err
	}

	for _, p := range probes {
		if p.visible && p.enabled {
			return &p.cand, nil
		}
	}
	for _, p := range probes {
		if p.visible {
			return &p.cand, nil
		}
	}

	exact, err := e.querier.QueryAll(ctx, entities.LocatorSpec{Kind: entities.KindText, Value: text, Exact: true})
	if err != nil {
		return nil, err
	}
	switch {
	case len(exact) == 1:
		return &exact[0], nil
	case len(exact) > 1:
		for _, tag := range narrowingTags {
			narrowed, err := e.querier.QueryAll(ctx, entities.LocatorSpec{Kind: entities.KindElementType, Tag: tag, Value: text})
			if err != nil {
				return nil, err
			}
			if len(narrowed) > 0 {
				return e.pickBest(ctx, narrowed)
			}
		}
		return e.pickBest(ctx, exact)
	}

	loose, err := e.querier.QueryAll(ctx, entities.LocatorSpec{Kind: entities.KindText, Value: text})
	if err != nil {
		return nil, err
	}
	if len(loose) > 0 {
		return e.pickBest(ctx, loose)
	}

	e.log.Warnf("no clickable element matched text %q", text)
	return nil, nil
}

// probeTemplates enumerates template matches containing the text, probing
// each candidate's visibility and enablement exactly once.
func (e *Engine) probeTemplates(ctx context.Context, text string) ([]probe, error) {
	var probes []probe
	for _, template := range clickableTemplates {
		candidates, err := e.querier.QueryAll(ctx, entities.LocatorSpec{Kind: entities.KindCSS, Selector: template})
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			content, err := e.querier.TextOf(ctx, c)
			if err != nil {
				return nil, err
			}
			if !strings.Contains(content, text) {
				continue
			}
			visible, err := e.querier.IsVisible(ctx, c)
			if err != nil {
				return nil, err
			}
			enabled, err := e.querier.IsEnabled(ctx, c)
			if err != nil {
				return nil, err
			}
			probes = append(probes, probe{cand: c, visible: visible, enabled: enabled})
		}
	}
	return probes, nil
}

// pickBest selects the rank-lexicographic best of a non-empty candidate set.
func (e *Engine) pickBest(ctx context.Context, candidates []entities.Candidate) (*entities.Candidate, error) {
	best := -1
	var bestRank rank
	for i, c := range candidates {
		visible, err := e.querier.IsVisible(ctx, c)
		if err != nil {
			return nil, err
		}
		enabled, err := e.querier.IsEnabled(ctx, c)
		if err != nil {
			return nil, err
		}
		r := rank{interactable: visible && enabled, visible: visible, order: i}
		if best == -1 || r.better(bestRank) {
			best = i
			bestRank = r
		}
	}
	return &candidates[best], nil
}
