package proration

import (
	"time"

	"github.com/flexprice/proratemate/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a priced offering billed once per cycle.
type Plan struct {
	Name  string             `json:"name"`
	Price decimal.Decimal    `json:"price"`
	Cycle types.BillingCycle `json:"cycle"`
}

// IsUpgradeFrom reports whether moving from old to p is an upgrade.
// Equal prices are not an upgrade.
func (p Plan) IsUpgradeFrom(old Plan) bool {
	return p.Price.GreaterThan(old.Price)
}

// BillingPeriod is a half-open interval [Start, End) billed at one plan price.
type BillingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Seconds returns the length of the period in whole seconds.
func (p BillingPeriod) Seconds() int64 {
	return secondsBetween(p.Start, p.End)
}

// Contains reports whether t falls inside [Start, End).
func (p BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// PeriodAdjustment is the allocation computed for one billing period.
type PeriodAdjustment struct {
	PeriodNumber      int                   `json:"period_number"` // 1-based, chronological
	PeriodStart       time.Time             `json:"period_start"`
	PeriodEnd         time.Time             `json:"period_end"`
	TotalSeconds      int64                 `json:"total_seconds"`
	AffectedSeconds   int64                 `json:"affected_seconds"`
	DaysInPeriod      int64                 `json:"days_in_period"` // display only
	DaysAffected      int64                 `json:"days_affected"`  // display only
	CreditFromOldPlan decimal.Decimal       `json:"credit_from_old_plan"`
	ChargeForNewPlan  decimal.Decimal       `json:"charge_for_new_plan"`
	NetAdjustment     decimal.Decimal       `json:"net_adjustment"`
	IsPartial         bool                  `json:"is_partial_period"`
	PartialPosition   types.PartialPosition `json:"partial_position"`
}

// ServiceEndResult holds the credits owed for cancelling service mid-period.
type ServiceEndResult struct {
	Periods              []PeriodAdjustment `json:"periods"`
	TotalPeriodsAffected int                `json:"total_periods_affected"`
	TotalCredit          decimal.Decimal    `json:"total_credit"`
}

// ServiceStartResult holds the charges owed for starting service mid-period.
type ServiceStartResult struct {
	Periods              []PeriodAdjustment `json:"periods"`
	TotalPeriodsAffected int                `json:"total_periods_affected"`
	TotalCharge          decimal.Decimal    `json:"total_charge"`
}

// PlanChangeResult holds the retroactive per-period corrections of a plan change.
type PlanChangeResult struct {
	Periods              []PeriodAdjustment `json:"periods"`
	TotalPeriodsAffected int                `json:"total_periods_affected"`
	TotalCredits         decimal.Decimal    `json:"total_credits"`
	TotalCharges         decimal.Decimal    `json:"total_charges"`
	NetAdjustment        decimal.Decimal    `json:"net_adjustment"`
	IsUpgrade            bool               `json:"is_upgrade"`
}

// SinglePeriodPlanChangeResult is a plan change prorated inside the open period.
type SinglePeriodPlanChangeResult struct {
	Period               BillingPeriod   `json:"period"`
	TotalSeconds         int64           `json:"total_seconds"`
	SecondsUsed          int64           `json:"seconds_used"`
	SecondsRemaining     int64           `json:"seconds_remaining"`
	OldPlanDaysUsed      int64           `json:"old_plan_days_used"`      // display only
	NewPlanDaysRemaining int64           `json:"new_plan_days_remaining"` // display only
	OldPlanCredit        decimal.Decimal `json:"old_plan_credit"`
	NewPlanCharge        decimal.Decimal `json:"new_plan_charge"`
	NetAmount            decimal.Decimal `json:"net_amount"`
	IsUpgrade            bool            `json:"is_upgrade"`
}

// ServiceEndParams are the inputs of a cancellation proration.
type ServiceEndParams struct {
	CancelDate       time.Time
	CurrentPeriodEnd time.Time
	Cycle            types.BillingCycle
	AnchorDay        int
	Plan             Plan
}

// ServiceStartParams are the inputs of a late start proration.
type ServiceStartParams struct {
	StartDate        time.Time
	CurrentPeriodEnd time.Time
	Cycle            types.BillingCycle
	AnchorDay        int
	Plan             Plan
}

// PlanChangeParams are the inputs of a retroactive plan change.
type PlanChangeParams struct {
	ChangeDate       time.Time
	CurrentDate      time.Time
	CurrentPeriodEnd time.Time
	Cycle            types.BillingCycle
	AnchorDay        int
	OldPlan          Plan
	NewPlan          Plan
}

// SinglePeriodPlanChangeParams are the inputs of a plan change within the open period.
type SinglePeriodPlanChangeParams struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	ChangeDate  time.Time
	OldPlan     Plan
	NewPlan     Plan
}
