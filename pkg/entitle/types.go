// Package entitle defines the core domain model shared by the receipt and
// webhook reconciliation pipelines: plan tiers, the entitlement record, and
// the profile persistence contract.
package entitle

import (
	"context"
	"time"
)

// Plan is a subscription plan tier drawn from a small closed enumeration.
//
// The webhook pipeline and the receipt pipeline serve two independent product
// lines with independent enumerations. They are never conflated: a Stripe
// event can only produce an owner plan, a store receipt only a mobile plan.
type Plan string

const (
	// Owner plans, granted through the payment-provider webhook pipeline.
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanPlus    Plan = "plus"

	// Mobile plans, granted through the in-app-purchase receipt pipeline.
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// OwnerPlan reports whether s names one of the owner plan tiers and returns
// the matching Plan. Matching is case-insensitive via normalization at the
// call sites; s is expected to be lowercase already.
func OwnerPlan(s string) (Plan, bool) {
	switch Plan(s) {
	case PlanStarter, PlanPro, PlanPlus:
		return Plan(s), true
	}
	return "", false
}

// Record is the canonical subscriber entitlement derived from a payment
// event. PaidUntil is never zero: when the provider's true period end cannot
// be determined a safe 30-day default is substituted before the record is
// built.
type Record struct {
	Plan           Plan
	PaidUntil      time.Time
	SubscriptionID string
	CustomerID     string
}

// Profile is the stored subscription state for one account, the persistence
// target of the receipt pipeline.
type Profile struct {
	UserID    string
	Plan      Plan
	PaidUntil time.Time
	UpdatedAt time.Time
}

// ProfileStore persists per-account subscription profiles.
// All methods use concrete types from this package to avoid import cycles.
type ProfileStore interface {
	// GetProfile retrieves the profile for userID.
	// Returns ErrProfileNotFound when no profile exists.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// SetSubscription stores plan and paid-until for userID, creating the
	// profile if needed. Repeating a write with identical values must leave
	// the stored state unchanged.
	SetSubscription(ctx context.Context, userID string, plan Plan, paidUntil time.Time) error
}
