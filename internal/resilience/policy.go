// Package resilience implements the tiered fetch policy shared by the domain
// stores: an authenticated request, then a public one, then static defaults.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrExhausted is returned when every tier failed and no fallback exists.
var ErrExhausted = errors.New("all tiers failed")

// TierKind identifies which tier produced a value.
type TierKind int

const (
	TierNone TierKind = iota
	TierAuthenticated
	TierPublic
	TierStatic
)

func (k TierKind) String() string {
	switch k {
	case TierAuthenticated:
		return "authenticated"
	case TierPublic:
		return "public"
	case TierStatic:
		return "static"
	default:
		return "none"
	}
}

// Tier is one attempt at producing a value.
type Tier[T any] func(ctx context.Context) (T, error)

// Failure records why a tier did not produce a value.
type Failure struct {
	Tier TierKind
	Err  error
}

// Outcome describes how Do arrived at its result.
type Outcome struct {
	Tier     TierKind
	Failures []Failure
}

// Degraded reports whether the value came from static defaults.
func (o Outcome) Degraded() bool { return o.Tier == TierStatic }

// Policy tries Primary, then Public, then Fallback. Nil tiers are skipped.
// Tiers run strictly one after another and never concurrently.
type Policy[T any] struct {
	Name     string
	Primary  Tier[T]
	Public   Tier[T]
	Fallback func() T
}

func (p Policy[T]) Do(ctx context.Context) (T, Outcome, error) {
	var out Outcome
	tiers := []struct {
		kind TierKind
		run  Tier[T]
	}{
		{TierAuthenticated, p.Primary},
		{TierPublic, p.Public},
	}

	for _, tier := range tiers {
		if tier.run == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, Failure{Tier: tier.kind, Err: err})
			break
		}
		v, err := tier.run(ctx)
		if err == nil {
			out.Tier = tier.kind
			return v, out, nil
		}
		log.Printf("[policy] %s: %s tier failed: %v", p.Name, tier.kind, err)
		out.Failures = append(out.Failures, Failure{Tier: tier.kind, Err: err})
	}

	if p.Fallback != nil {
		log.Printf("[policy] %s: serving static defaults", p.Name)
		out.Tier = TierStatic
		return p.Fallback(), out, nil
	}

	var zero T
	if len(out.Failures) == 0 {
		return zero, out, fmt.Errorf("%s: %w", p.Name, ErrExhausted)
	}
	last := out.Failures[len(out.Failures)-1].Err
	return zero, out, fmt.Errorf("%s: %w: %w", p.Name, ErrExhausted, last)
}
