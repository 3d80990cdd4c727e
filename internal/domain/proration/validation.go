package proration

import (
	"fmt"
	"time"

	"github.com/flexprice/proratemate/internal/types"
)

// The Validate* functions run before any calculation. They return an ordered
// list of human readable messages; a non-empty list means the matching
// Compute* call must not be made.

// ValidateServiceEnd checks the inputs of a cancellation proration.
func ValidateServiceEnd(params ServiceEndParams) []string {
	var errs []string

	errs = append(errs, requireDate(params.CancelDate, "Cancellation date")...)
	errs = append(errs, requireDate(params.CurrentPeriodEnd, "Current period end date")...)
	if params.CancelDate.After(params.CurrentPeriodEnd) {
		errs = append(errs, "Cancellation date must be on or before the current period end date")
	}

	errs = append(errs, validateSchedule(params.Cycle, params.AnchorDay)...)
	errs = append(errs, validatePrice(params.Plan, "Plan")...)
	return errs
}

// ValidateServiceStart checks the inputs of a late start proration.
func ValidateServiceStart(params ServiceStartParams) []string {
	var errs []string

	errs = append(errs, requireDate(params.StartDate, "Service start date")...)
	errs = append(errs, requireDate(params.CurrentPeriodEnd, "Current period end date")...)
	if params.StartDate.After(params.CurrentPeriodEnd) {
		errs = append(errs, "Service start date must be before period end date")
	}

	errs = append(errs, validateSchedule(params.Cycle, params.AnchorDay)...)
	errs = append(errs, validatePrice(params.Plan, "Plan")...)
	return errs
}

// ValidatePlanChangeInPeriod checks a plan change inside the open period.
func ValidatePlanChangeInPeriod(params SinglePeriodPlanChangeParams) []string {
	var errs []string

	if !params.PeriodStart.Before(params.PeriodEnd) {
		errs = append(errs, "Period start date must be before period end date")
	}
	if params.ChangeDate.Before(params.PeriodStart) {
		errs = append(errs, "Change date must be after period start date")
	}
	if params.ChangeDate.After(params.PeriodEnd) {
		errs = append(errs, "Change date must be before period end date")
	}

	errs = append(errs, validatePrice(params.OldPlan, "Current plan")...)
	errs = append(errs, validatePrice(params.NewPlan, "New plan")...)
	return errs
}

// ValidatePlanChangeRequest checks the plan change inputs shared by both the
// in-period and the retroactive path: required dates, schedule and prices.
// Date ordering depends on the path and is left to ValidatePlanChangeInPeriod
// or ValidatePlanChange.
func ValidatePlanChangeRequest(params PlanChangeParams) []string {
	var errs []string

	errs = append(errs, requireDate(params.ChangeDate, "Effective change date")...)
	errs = append(errs, requireDate(params.CurrentDate, "Current date")...)
	errs = append(errs, validateSchedule(params.Cycle, params.AnchorDay)...)
	errs = append(errs, validatePrice(params.OldPlan, "Current plan")...)
	errs = append(errs, validatePrice(params.NewPlan, "New plan")...)
	return errs
}

// ValidatePlanChange checks a retroactive, multi-period plan change.
func ValidatePlanChange(params PlanChangeParams) []string {
	var errs []string

	errs = append(errs, requireDate(params.ChangeDate, "Effective change date")...)
	errs = append(errs, requireDate(params.CurrentDate, "Current date")...)
	if params.ChangeDate.After(params.CurrentDate) {
		errs = append(errs, "Effective change date must not be after the current date")
	}
	if !params.CurrentPeriodEnd.IsZero() && params.ChangeDate.After(params.CurrentPeriodEnd) {
		errs = append(errs, "Effective change date must be on or before the current period end date")
	}

	errs = append(errs, validateSchedule(params.Cycle, params.AnchorDay)...)
	errs = append(errs, validatePrice(params.OldPlan, "Current plan")...)
	errs = append(errs, validatePrice(params.NewPlan, "New plan")...)
	return errs
}

func validateSchedule(cycle types.BillingCycle, anchorDay int) []string {
	var errs []string
	if err := cycle.Validate(); err != nil {
		errs = append(errs, "Billing cycle must be monthly, quarterly, semiannual, or annual")
	}
	if anchorDay < types.MinAnchorDay || anchorDay > types.MaxAnchorDay {
		errs = append(errs, fmt.Sprintf("Billing anchor day must be between %d and %d", types.MinAnchorDay, types.MaxAnchorDay))
	}
	return errs
}

func validatePrice(plan Plan, label string) []string {
	if plan.Price.IsNegative() {
		return []string{label + " price must not be negative"}
	}
	return nil
}

func requireDate(t time.Time, label string) []string {
	if t.IsZero() {
		return []string{label + " is required"}
	}
	return nil
}
