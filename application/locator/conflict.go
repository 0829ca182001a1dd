package locator

import (
	"context"
	"fmt"
	"strings"

	"web_locator/domain/entities"
)

// ConflictOptions direct strict-mode conflict resolution. Unlike the smart
// clickable cascade, the caller already knows the spec is multi-matching and
// says how to break the tie.
type ConflictOptions struct {
	// PreferredText filters candidates by text containment.
	PreferredText string
	// PreferVisible picks the first visible candidate when more than one
	// remains. Defaults to true when nil.
	PreferVisible *bool
	// Index, when set, returns the candidate at that position directly and
	// bypasses every other rule.
	Index *int
}

// Bool - option pointer helper.
func Bool(v bool) *bool { return &v }

// Int - option pointer helper.
func Int(v int) *int { return &v }

// ResolveConflict - picks one candidate from a known-ambiguous spec.
// Decision tree, first hit wins:
//
//  1. explicit index
//  2. preferred-text filter (unique hit, else visibility preference within
//     the filtered subset)
//  3. first visible candidate
//  4. first candidate in document order
//
// A preferred text that filters everything away warns and falls back to
// steps 3-4 over the unfiltered set.
func (e *Engine) ResolveConflict(ctx context.Context, spec entities.LocatorSpec, opts ConflictOptions) (*entities.Candidate, error) {
	candidates, err := e.querier.QueryAll(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", spec.String(), err)
	}

	if opts.Index != nil {
		i := *opts.Index
		if i < 0 || i >= len(candidates) {
			return nil, fmt.Errorf("conflict index %d out of range: %q matched %d elements", i, spec.String(), len(candidates))
		}
		return &candidates[i], nil
	}

	if len(candidates) == 0 {
		e.log.Warnf("conflict resolution for %q found no candidates", spec.String())
		return nil, nil
	}

	preferVisible := opts.PreferVisible == nil || *opts.PreferVisible

	if opts.PreferredText != "" {
		var filtered []entities.Candidate
		for _, c := range candidates {
			content, err := e.querier.TextOf(ctx, c)
			if err != nil {
				return nil, err
			}
			if strings.Contains(content, opts.PreferredText) {
				filtered = append(filtered, c)
			}
		}
		switch {
		case len(filtered) == 1:
			return &filtered[0], nil
		case len(filtered) > 1:
			if preferVisible {
				return e.firstVisible(ctx, filtered)
			}
			return &filtered[0], nil
		}
		e.log.Warnf("preferred text %q matched none of %d candidates for %q, falling back", opts.PreferredText, len(candidates), spec.String())
	}

	if preferVisible {
		return e.firstVisible(ctx, candidates)
	}
	return &candidates[0], nil
}

// firstVisible returns the first visible candidate, or the first overall when
// none is visible.
func (e *Engine) firstVisible(ctx context.Context, candidates []entities.Candidate) (*entities.Candidate, error) {
	for i, c := range candidates {
		visible, err := e.querier.IsVisible(ctx, c)
		if err != nil {
			return nil, err
		}
		if visible {
			return &candidates[i], nil
		}
	}
	return &candidates[0], nil
}
