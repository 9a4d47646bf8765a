package services

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/platform/metrics"
)

// Policy holds the configurable behaviour of the core services.
type Policy struct {
	// ValidateBalances is used when a posting request leaves the choice open.
	ValidateBalances       bool
	MissingAccounts        domain.MissingAccountPolicy
	DuplicateGenerations   domain.DuplicateGenerationPolicy
	EnforceLineExclusivity bool
	DefaultActor           string
}

// DefaultPolicy validates balances, falls back on unknown accounts and
// treats repeated generations as idempotent.
func DefaultPolicy() Policy {
	return Policy{
		ValidateBalances:     true,
		MissingAccounts:      domain.MissingAccountFallback,
		DuplicateGenerations: domain.DuplicateIdempotent,
		DefaultActor:         domain.SystemActor,
	}
}

type serviceOptions struct {
	clock   portssvc.Clock
	metrics *metrics.Recorder
	policy  Policy
}

func newServiceOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{
		clock:  portssvc.SystemClock{},
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ServiceOption is a functional option shared by the ledger services
type ServiceOption func(*serviceOptions)

// WithClock replaces the wall clock
func WithClock(c portssvc.Clock) ServiceOption {
	return func(o *serviceOptions) {
		o.clock = c
	}
}

// WithMetrics records outcomes on r
func WithMetrics(r *metrics.Recorder) ServiceOption {
	return func(o *serviceOptions) {
		o.metrics = r
	}
}

// WithPolicy replaces the default policy
func WithPolicy(p Policy) ServiceOption {
	return func(o *serviceOptions) {
		o.policy = p
	}
}
