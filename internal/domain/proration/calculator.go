package proration

import (
	"time"

	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// NewCalculator creates the second-based proration calculator. Amounts are
// allocated by the exact number of seconds affected in each period so that
// partial-day events are not biased by whole-day truncation.
func NewCalculator(maxPeriodIterations int) Calculator {
	return &secondBasedCalculator{
		periods: NewPeriodGenerator(maxPeriodIterations),
	}
}

type secondBasedCalculator struct {
	periods *PeriodGenerator
}

func (c *secondBasedCalculator) BillingPeriods(
	effectiveDate time.Time,
	currentPeriodEnd time.Time,
	cycle types.BillingCycle,
	anchorDay int,
) ([]BillingPeriod, error) {
	return c.periods.Generate(effectiveDate, currentPeriodEnd, cycle, anchorDay)
}

func (c *secondBasedCalculator) CurrentPeriod(at time.Time, cycle types.BillingCycle, anchorDay int) (BillingPeriod, error) {
	return c.periods.CurrentPeriod(at, cycle, anchorDay)
}

func (c *secondBasedCalculator) CurrentPeriodSince(
	effectiveDate time.Time,
	at time.Time,
	cycle types.BillingCycle,
	anchorDay int,
) (BillingPeriod, error) {
	return c.periods.CurrentPeriodSince(effectiveDate, at, cycle, anchorDay)
}

// ComputeServiceEnd credits the part of every period after the cancellation.
// Periods after the one containing the cancel date are credited in full.
func (c *secondBasedCalculator) ComputeServiceEnd(params ServiceEndParams) (*ServiceEndResult, error) {
	periods, err := c.periods.Generate(params.CancelDate, params.CurrentPeriodEnd, params.Cycle, params.AnchorDay)
	if err != nil {
		return nil, err
	}

	adjustments := make([]PeriodAdjustment, 0, len(periods))
	for i, period := range periods {
		credited := secondsBetween(latest(period.Start, params.CancelDate), period.End)
		adj := newAdjustment(i, period, credited, params.CancelDate)

		adj.CreditFromOldPlan = allocate(params.Plan.Price, credited, adj.TotalSeconds)
		adj.ChargeForNewPlan = decimal.Zero
		adj.NetAdjustment = adj.CreditFromOldPlan.Neg()
		adjustments = append(adjustments, adj)
	}

	return &ServiceEndResult{
		Periods:              adjustments,
		TotalPeriodsAffected: len(adjustments),
		TotalCredit:          sumRounded(adjustments, creditOf),
	}, nil
}

// ComputeServiceStart charges the part of every period from the start date on.
func (c *secondBasedCalculator) ComputeServiceStart(params ServiceStartParams) (*ServiceStartResult, error) {
	periods, err := c.periods.Generate(params.StartDate, params.CurrentPeriodEnd, params.Cycle, params.AnchorDay)
	if err != nil {
		return nil, err
	}

	adjustments := make([]PeriodAdjustment, 0, len(periods))
	for i, period := range periods {
		charged := secondsBetween(latest(period.Start, params.StartDate), period.End)
		adj := newAdjustment(i, period, charged, params.StartDate)

		adj.CreditFromOldPlan = decimal.Zero
		adj.ChargeForNewPlan = allocate(params.Plan.Price, charged, adj.TotalSeconds)
		adj.NetAdjustment = adj.ChargeForNewPlan
		adjustments = append(adjustments, adj)
	}

	return &ServiceStartResult{
		Periods:              adjustments,
		TotalPeriodsAffected: len(adjustments),
		TotalCharge:          sumRounded(adjustments, chargeOf),
	}, nil
}

// ComputePlanChange unwinds every period since the change date. Billing is in
// advance, so each included period is corrected through to its full end even
// when it ends after the current period end.
func (c *secondBasedCalculator) ComputePlanChange(params PlanChangeParams) (*PlanChangeResult, error) {
	periods, err := c.periods.Generate(params.ChangeDate, params.CurrentPeriodEnd, params.Cycle, params.AnchorDay)
	if err != nil {
		return nil, err
	}

	adjustments := make([]PeriodAdjustment, 0, len(periods))
	for i, period := range periods {
		affected := secondsBetween(latest(period.Start, params.ChangeDate), period.End)
		adj := newAdjustment(i, period, affected, params.ChangeDate)

		// what was charged and should not have been
		adj.CreditFromOldPlan = allocate(params.OldPlan.Price, affected, adj.TotalSeconds)
		// what should have been charged instead
		adj.ChargeForNewPlan = allocate(params.NewPlan.Price, affected, adj.TotalSeconds)
		adj.NetAdjustment = adj.ChargeForNewPlan.Sub(adj.CreditFromOldPlan)
		adjustments = append(adjustments, adj)
	}

	return &PlanChangeResult{
		Periods:              adjustments,
		TotalPeriodsAffected: len(adjustments),
		TotalCredits:         sumRounded(adjustments, creditOf),
		TotalCharges:         sumRounded(adjustments, chargeOf),
		NetAdjustment:        sumRounded(adjustments, netOf),
		IsUpgrade:            params.NewPlan.IsUpgradeFrom(params.OldPlan),
	}, nil
}

// ComputePlanChangeInPeriod prorates a plan change inside a single open period,
// billing only up to the period end passed in.
func (c *secondBasedCalculator) ComputePlanChangeInPeriod(params SinglePeriodPlanChangeParams) (*SinglePeriodPlanChangeResult, error) {
	period := BillingPeriod{Start: params.PeriodStart, End: params.PeriodEnd}
	total := period.Seconds()
	if total <= 0 {
		return nil, ierr.NewError("invalid billing period").
			WithHintf("Period start %s must be before period end %s",
				params.PeriodStart.Format(time.RFC3339), params.PeriodEnd.Format(time.RFC3339)).
			Mark(ierr.ErrValidation)
	}

	changeDate := clamp(params.ChangeDate, period.Start, period.End)
	used := secondsBetween(period.Start, changeDate)
	remaining := total - used

	oldUsedAmount := params.OldPlan.Price.Mul(decimal.NewFromInt(used)).Div(decimal.NewFromInt(total))
	oldPlanCredit := RoundAmount(params.OldPlan.Price.Sub(oldUsedAmount))
	newPlanCharge := allocate(params.NewPlan.Price, remaining, total)

	return &SinglePeriodPlanChangeResult{
		Period:               period,
		TotalSeconds:         total,
		SecondsUsed:          used,
		SecondsRemaining:     remaining,
		OldPlanDaysUsed:      types.DaysFromSeconds(used),
		NewPlanDaysRemaining: types.DaysFromSeconds(remaining),
		OldPlanCredit:        oldPlanCredit,
		NewPlanCharge:        newPlanCharge,
		NetAmount:            RoundAmount(newPlanCharge.Sub(oldPlanCredit)),
		IsUpgrade:            params.NewPlan.IsUpgradeFrom(params.OldPlan),
	}, nil
}

// newAdjustment fills the time fields shared by every scenario. The unaffected
// part of a period only ever sits at the start of the first period.
func newAdjustment(index int, period BillingPeriod, affected int64, eventDate time.Time) PeriodAdjustment {
	total := period.Seconds()
	position := types.PartialPositionNone
	if index == 0 && eventDate.After(period.Start) && eventDate.Before(period.End) {
		position = types.PartialPositionStart
	}

	return PeriodAdjustment{
		PeriodNumber:    index + 1,
		PeriodStart:     period.Start,
		PeriodEnd:       period.End,
		TotalSeconds:    total,
		AffectedSeconds: affected,
		DaysInPeriod:    types.DaysFromSeconds(total),
		DaysAffected:    types.DaysFromSeconds(affected),
		IsPartial:       affected < total,
		PartialPosition: position,
	}
}

// RoundAmount rounds a monetary amount to two decimal places, half away from zero.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(types.ProrationPrecision)
}

// allocate returns price * part / total rounded to two decimal places.
func allocate(price decimal.Decimal, part, total int64) decimal.Decimal {
	if total <= 0 || part <= 0 {
		return decimal.Zero
	}
	return RoundAmount(price.Mul(decimal.NewFromInt(part)).Div(decimal.NewFromInt(total)))
}

// sumRounded adds already rounded per-period amounts and rounds the total again.
func sumRounded(adjustments []PeriodAdjustment, amount func(PeriodAdjustment) decimal.Decimal) decimal.Decimal {
	total := lo.Reduce(adjustments, func(acc decimal.Decimal, adj PeriodAdjustment, _ int) decimal.Decimal {
		return acc.Add(amount(adj))
	}, decimal.Zero)
	return RoundAmount(total)
}

func creditOf(adj PeriodAdjustment) decimal.Decimal { return adj.CreditFromOldPlan }
func chargeOf(adj PeriodAdjustment) decimal.Decimal { return adj.ChargeForNewPlan }
func netOf(adj PeriodAdjustment) decimal.Decimal    { return adj.NetAdjustment }

func clamp(t, lower, upper time.Time) time.Time {
	if t.Before(lower) {
		return lower
	}
	if t.After(upper) {
		return upper
	}
	return t
}
