package policy

import (
	"context"
	"sync/atomic"

	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is applied when no rate is configured.
var DefaultCommissionRate = decimal.RequireFromString("0.10")

// CommissionPolicy is the process-wide commission configuration. Values are
// immutable; a reload swaps the whole policy.
type CommissionPolicy struct {
	Rate decimal.Decimal `json:"rate"`
}

// NewCommissionPolicy validates that rate is a fraction in [0, 1).
func NewCommissionPolicy(rate decimal.Decimal) (CommissionPolicy, error) {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return CommissionPolicy{}, errors.NewValidationError("commission rate must be in [0, 1)")
	}
	return CommissionPolicy{Rate: rate}, nil
}

// Source supplies the current commission policy from an external collaborator
// (environment, database).
type Source interface {
	GetCurrentPolicy(ctx context.Context) (CommissionPolicy, error)
}

// Provider holds the active policy behind an atomic pointer so concurrent
// readers always observe a complete policy value, never a partial update.
type Provider struct {
	current atomic.Pointer[CommissionPolicy]
}

// NewProvider creates a provider seeded with the given policy.
func NewProvider(initial CommissionPolicy) *Provider {
	p := &Provider{}
	p.current.Store(&initial)
	return p
}

// Current returns the active policy. The returned value is a copy; it stays
// stable for the duration of a calculation even if a reload happens.
func (p *Provider) Current() CommissionPolicy {
	return *p.current.Load()
}

// Reload fetches a fresh policy from the source and swaps it in. On source
// failure the previous policy stays active.
func (p *Provider) Reload(ctx context.Context, src Source) error {
	fresh, err := src.GetCurrentPolicy(ctx)
	if err != nil {
		return err
	}
	p.current.Store(&fresh)
	return nil
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (CommissionPolicy, error)

func (f SourceFunc) GetCurrentPolicy(ctx context.Context) (CommissionPolicy, error) {
	return f(ctx)
}
