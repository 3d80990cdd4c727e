// Package proration computes prorated credits and charges for service start,
// service end and plan change events, including retroactive corrections that
// span several already invoiced billing periods.
package proration

import (
	"time"

	"github.com/flexprice/proratemate/internal/types"
)

// Calculator performs proration calculations. Every method is a pure function
// of its arguments: it performs no I/O, holds no mutable state and returns
// freshly built results, so one Calculator may be shared across goroutines.
//
// Inputs are expected to have passed the matching Validate* function first.
type Calculator interface {
	// BillingPeriods returns the periods overlapping [effectiveDate, currentPeriodEnd].
	BillingPeriods(effectiveDate, currentPeriodEnd time.Time, cycle types.BillingCycle, anchorDay int) ([]BillingPeriod, error)

	// CurrentPeriod returns the billing period containing at.
	CurrentPeriod(at time.Time, cycle types.BillingCycle, anchorDay int) (BillingPeriod, error)

	// CurrentPeriodSince returns the period containing at on the period chain
	// that BillingPeriods builds from effectiveDate.
	CurrentPeriodSince(effectiveDate, at time.Time, cycle types.BillingCycle, anchorDay int) (BillingPeriod, error)

	// ComputeServiceEnd credits unused time after a cancellation.
	ComputeServiceEnd(params ServiceEndParams) (*ServiceEndResult, error)

	// ComputeServiceStart charges time from a late service start.
	ComputeServiceStart(params ServiceStartParams) (*ServiceStartResult, error)

	// ComputePlanChange computes the retroactive, multi-period plan change.
	ComputePlanChange(params PlanChangeParams) (*PlanChangeResult, error)

	// ComputePlanChangeInPeriod computes a plan change within the open period.
	ComputePlanChangeInPeriod(params SinglePeriodPlanChangeParams) (*SinglePeriodPlanChangeResult, error)
}
