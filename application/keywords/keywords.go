package keywords

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"web_locator/application/locator"
	"web_locator/domain/entities"
	"web_locator/domain/interfaces"
)

// Keywords is the UI-automation surface built on the resolution engine: each
// method takes a locator string, resolves it to one element, and acts on it.
type Keywords struct {
	engine  *locator.Engine
	querier interfaces.Querier
	actor   interfaces.Interactor
	log     logrus.FieldLogger
}

// New - creates the keyword layer over a query backend and an interactor.
func New(querier interfaces.Querier, actor interfaces.Interactor, log logrus.FieldLogger) *Keywords {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Keywords{
		engine:  locator.NewEngine(querier, log),
		querier: querier,
		actor:   actor,
		log:     log,
	}
}

// Engine - exposes the underlying resolution engine.
func (k *Keywords) Engine() *locator.Engine {
	return k.engine
}

// Click - resolves the locator and clicks the element. clickable= locators
// go through the smart-clickable cascade inside the engine.
func (k *Keywords) Click(ctx context.Context, raw string) error {
	c, err := k.resolveOne(ctx, raw)
	if err != nil {
		return err
	}
	if err := k.actor.Click(ctx, *c); err != nil {
		return fmt.Errorf("failed to click %q: %w", raw, err)
	}
	return nil
}

// Fill - resolves the locator and types text into the element, clearing it
// first.
func (k *Keywords) Fill(ctx context.Context, raw string, text string) error {
	c, err := k.resolveOne(ctx, raw)
	if err != nil {
		return err
	}
	if err := k.actor.Fill(ctx, *c, text); err != nil {
		return fmt.Errorf("failed to fill %q: %w", raw, err)
	}
	return nil
}

// TextOf - resolves the locator and returns the element's text content.
func (k *Keywords) TextOf(ctx context.Context, raw string) (string, error) {
	c, err := k.resolveOne(ctx, raw)
	if err != nil {
		return "", err
	}
	return k.querier.TextOf(ctx, *c)
}

// IsVisible - resolves the locator and reports the element's visibility.
// A locator matching nothing is simply not visible.
func (k *Keywords) IsVisible(ctx context.Context, raw string) (bool, error) {
	candidates, err := k.engine.Execute(ctx, k.engine.Parse(raw))
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		return false, nil
	}
	return k.querier.IsVisible(ctx, candidates[0])
}

// Count - returns the number of elements the locator matches.
func (k *Keywords) Count(ctx context.Context, raw string) (int, error) {
	plan := k.engine.Parse(raw)
	if len(plan.Modifiers) == 0 && plan.Spec.Kind != entities.KindClickable {
		return k.querier.Count(ctx, plan.Spec)
	}
	candidates, err := k.engine.Execute(ctx, plan)
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

// WaitUntil - blocks until the locator's base query reaches the given state
// or the timeout passes. Timeout is not an error; the caller decides whether
// false is fatal.
func (k *Keywords) WaitUntil(ctx context.Context, raw string, state interfaces.WaitState, timeout time.Duration) bool {
	plan := k.engine.Parse(raw)
	return k.querier.WaitFor(ctx, plan.Spec, state, timeout)
}

// resolveOne narrows a locator to exactly one candidate. Multi-matches on a
// bare spec go through strict-mode conflict resolution; a modifier chain is
// expected to have done its own narrowing, so its first survivor wins.
func (k *Keywords) resolveOne(ctx context.Context, raw string) (*entities.Candidate, error) {
	plan := k.engine.Parse(raw)
	candidates, err := k.engine.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}
	switch {
	case len(candidates) == 0:
		return nil, fmt.Errorf("no element matched locator %q", raw)
	case len(candidates) == 1:
		return &candidates[0], nil
	}

	if len(plan.Modifiers) > 0 {
		return &candidates[0], nil
	}
	k.log.Warnf("locator %q matched %d elements, resolving conflict", raw, len(candidates))
	return k.engine.ResolveConflict(ctx, plan.Spec, locator.ConflictOptions{})
}
