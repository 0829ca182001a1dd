package locator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"web_locator/domain/entities"
	"web_locator/domain/interfaces"
)

// Engine is the element-locator resolution core: it parses locator strings,
// executes query plans against a Querier backend, and resolves ambiguity when
// a query matches more than one element. The engine holds no mutable state of
// its own; every resolution starts from a fresh parse and a fresh query.
type Engine struct {
	querier interfaces.Querier
	parser  *Parser
	log     logrus.FieldLogger
}

// NewEngine - creates a resolution engine over the given query backend.
func NewEngine(querier interfaces.Querier, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		querier: querier,
		parser:  NewParser(log),
		log:     log,
	}
}

// Parse - parses a locator string into a query plan. Never fails; unclaimed
// input degrades to a literal CSS selector.
func (e *Engine) Parse(raw string) entities.QueryPlan {
	return e.parser.Parse(raw)
}

// Execute - runs a query plan: the base query first, then each modifier in
// chain order against the previous step's output. An empty result is a valid
// answer; backend errors propagate.
func (e *Engine) Execute(ctx context.Context, plan entities.QueryPlan) ([]entities.Candidate, error) {
	if plan.Spec.Kind == entities.KindClickable {
		c, err := e.ResolveClickable(ctx, plan.Spec.Value)
		if err != nil || c == nil {
			return nil, err
		}
		return []entities.Candidate{*c}, nil
	}

	candidates, err := e.querier.QueryAll(ctx, plan.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", plan.Spec.String(), err)
	}

	for _, mod := range plan.Modifiers {
		candidates, err = e.applyModifier(ctx, candidates, mod)
		if err != nil {
			return nil, fmt.Errorf("failed to apply modifier %q: %w", mod.String(), err)
		}
	}
	return candidates, nil
}

// applyModifier applies one chain step to the current candidate set.
func (e *Engine) applyModifier(ctx context.Context, candidates []entities.Candidate, mod entities.ModifierToken) ([]entities.Candidate, error) {
	switch mod.Kind {
	case entities.ModSubLocator:
		sub := e.parser.parseSingle(unescapeAmp(mod.Value))
		var out []entities.Candidate
		for _, c := range candidates {
			children, err := e.querier.QueryWithin(ctx, c, sub)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		}
		for i := range out {
			out[i].Index = i
		}
		return out, nil

	case entities.ModHasText:
		return e.filterByText(ctx, candidates, mod.Value, true)

	case entities.ModHasNotText:
		return e.filterByText(ctx, candidates, mod.Value, false)

	case entities.ModFirst:
		if len(candidates) == 0 {
			return nil, nil
		}
		return candidates[:1], nil

	case entities.ModLast:
		if len(candidates) == 0 {
			return nil, nil
		}
		return candidates[len(candidates)-1:], nil

	case entities.ModNth:
		if mod.Index < 0 || mod.Index >= len(candidates) {
			e.log.Warnf("nth=%d is out of range for %d candidates", mod.Index, len(candidates))
			return nil, nil
		}
		return candidates[mod.Index : mod.Index+1], nil

	case entities.ModVisibleOnly:
		var out []entities.Candidate
		for _, c := range candidates {
			visible, err := e.querier.IsVisible(ctx, c)
			if err != nil {
				return nil, err
			}
			if visible {
				out = append(out, c)
			}
		}
		return out, nil
	}

	e.log.Warnf("ignoring unknown modifier kind %q", mod.Kind)
	return candidates, nil
}

func (e *Engine) filterByText(ctx context.Context, candidates []entities.Candidate, text string, keepMatching bool) ([]entities.Candidate, error) {
	var out []entities.Candidate
	for _, c := range candidates {
		content, err := e.querier.TextOf(ctx, c)
		if err != nil {
			return nil, err
		}
		if strings.Contains(content, text) == keepMatching {
			out = append(out, c)
		}
	}
	return out, nil
}
