package interfaces

import (
	"context"
	"time"

	"web_locator/domain/entities"
)

// WaitState is the element state WaitFor blocks on.
type WaitState string

const (
	WaitStateVisible  WaitState = "visible"
	WaitStateHidden   WaitState = "hidden"
	WaitStateAttached WaitState = "attached"
	WaitStateDetached WaitState = "detached"
)

// Querier is the query capability boundary: the one place where a LocatorSpec
// meets a live page. The resolution core never talks to a browser protocol
// directly; every spec kind is translated by the implementing backend into
// whatever primitive it natively understands.
//
// All methods block with backend-internal timeouts and return promptly; the
// only long suspension point is WaitFor, which polls until the caller-supplied
// timeout and reports false instead of failing. An empty QueryAll result is a
// valid answer, distinct from a backend error.
type Querier interface {
	// QueryAll returns every element matching the spec, in document order.
	QueryAll(ctx context.Context, spec entities.LocatorSpec) ([]entities.Candidate, error)

	// QueryWithin runs the spec scoped to descendants of parent.
	QueryWithin(ctx context.Context, parent entities.Candidate, spec entities.LocatorSpec) ([]entities.Candidate, error)

	// Count returns the number of elements matching the spec.
	Count(ctx context.Context, spec entities.LocatorSpec) (int, error)

	// IsVisible reports whether the candidate is visible.
	IsVisible(ctx context.Context, c entities.Candidate) (bool, error)

	// IsEnabled reports whether the candidate is enabled.
	IsEnabled(ctx context.Context, c entities.Candidate) (bool, error)

	// TextOf returns the candidate's text content.
	TextOf(ctx context.Context, c entities.Candidate) (string, error)

	// Attribute returns the named attribute's value, empty when absent.
	Attribute(ctx context.Context, c entities.Candidate, name string) (string, error)

	// WaitFor blocks until the first element matching the spec reaches the
	// given state, or the timeout passes. It never fails: timeout means false.
	WaitFor(ctx context.Context, spec entities.LocatorSpec, state WaitState, timeout time.Duration) bool
}

// Interactor performs actions on resolved candidates. Kept separate from
// Querier so the resolution core can be tested against a pure query double.
type Interactor interface {
	// Click clicks the candidate.
	Click(ctx context.Context, c entities.Candidate) error

	// Fill clears the candidate and types the given text into it.
	Fill(ctx context.Context, c entities.Candidate, text string) error
}
