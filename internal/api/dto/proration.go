package dto

import (
	"time"

	"github.com/flexprice/proratemate/internal/domain/invoice"
	"github.com/flexprice/proratemate/internal/domain/proration"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/flexprice/proratemate/internal/validator"
	"github.com/shopspring/decimal"
)

// PlanRequest describes a plan by display name and price per cycle
type PlanRequest struct {
	// Name is shown on invoice lines
	Name string `json:"name" validate:"required"`

	// Price is charged once per billing cycle
	Price decimal.Decimal `json:"price"`
}

// ToPlan converts the request into a domain plan billed on cycle
func (r PlanRequest) ToPlan(cycle types.BillingCycle) proration.Plan {
	return proration.Plan{
		Name:  r.Name,
		Price: r.Price,
		Cycle: cycle,
	}
}

// BillingScheduleRequest is the cycle and anchor shared by every proration request.
// Range checks on both fields are left to the proration validator so that the
// client receives the same messages through every entry point.
type BillingScheduleRequest struct {
	BillingCycle types.BillingCycle `json:"billing_cycle" validate:"required"`

	// AnchorDay is the day of month billing periods start on.
	// Zero selects the configured default.
	AnchorDay int `json:"anchor_day,omitempty"`
}

// anchorDayOrDefault returns the requested anchor day or the fallback when unset
func (r BillingScheduleRequest) anchorDayOrDefault(fallback int) int {
	if r.AnchorDay == 0 {
		return fallback
	}
	return r.AnchorDay
}

// BillingPeriodsRequest lists the billing periods between two dates
type BillingPeriodsRequest struct {
	EffectiveDate    time.Time          `json:"effective_date" validate:"required"`
	CurrentPeriodEnd time.Time          `json:"current_period_end" validate:"required"`
	BillingCycle     types.BillingCycle `json:"billing_cycle" validate:"required,billing_cycle"`
	AnchorDay        int                `json:"anchor_day,omitempty" validate:"omitempty,min=1,max=31"`
}

func (r *BillingPeriodsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// AnchorDayOrDefault returns the requested anchor day or the fallback when unset
func (r *BillingPeriodsRequest) AnchorDayOrDefault(fallback int) int {
	if r.AnchorDay == 0 {
		return fallback
	}
	return r.AnchorDay
}

// BillingPeriodsResponse lists reconstructed billing periods in order
type BillingPeriodsResponse struct {
	BillingCycle types.BillingCycle        `json:"billing_cycle"`
	CycleLabel   string                    `json:"cycle_label"`
	Periods      []proration.BillingPeriod `json:"periods"`
	Count        int                       `json:"count"`
}

// ServiceEndPreviewRequest previews the credit owed for cancelling service
type ServiceEndPreviewRequest struct {
	// CancelDate is when service stops
	CancelDate time.Time `json:"cancel_date" validate:"required"`

	// CurrentPeriodEnd is the end of the period most recently invoiced
	CurrentPeriodEnd time.Time `json:"current_period_end" validate:"required"`

	BillingScheduleRequest

	Plan PlanRequest `json:"plan"`
}

func (r *ServiceEndPreviewRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToParams converts the request into calculator params
func (r *ServiceEndPreviewRequest) ToParams(defaultAnchorDay int) proration.ServiceEndParams {
	return proration.ServiceEndParams{
		CancelDate:       r.CancelDate,
		CurrentPeriodEnd: r.CurrentPeriodEnd,
		Cycle:            r.BillingCycle,
		AnchorDay:        r.anchorDayOrDefault(defaultAnchorDay),
		Plan:             r.Plan.ToPlan(r.BillingCycle),
	}
}

// ServiceEndPreviewResponse is the credit breakdown and its invoice
type ServiceEndPreviewResponse struct {
	Scenario types.ProrationScenario     `json:"scenario"`
	Result   *proration.ServiceEndResult `json:"result"`
	Invoice  *invoice.Invoice            `json:"invoice"`
}

// ServiceStartPreviewRequest previews the charge owed for a late service start
type ServiceStartPreviewRequest struct {
	// StartDate is when service begins
	StartDate time.Time `json:"start_date" validate:"required"`

	// CurrentPeriodEnd is the end of the period being invoiced
	CurrentPeriodEnd time.Time `json:"current_period_end" validate:"required"`

	BillingScheduleRequest

	Plan PlanRequest `json:"plan"`
}

func (r *ServiceStartPreviewRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToParams converts the request into calculator params
func (r *ServiceStartPreviewRequest) ToParams(defaultAnchorDay int) proration.ServiceStartParams {
	return proration.ServiceStartParams{
		StartDate:        r.StartDate,
		CurrentPeriodEnd: r.CurrentPeriodEnd,
		Cycle:            r.BillingCycle,
		AnchorDay:        r.anchorDayOrDefault(defaultAnchorDay),
		Plan:             r.Plan.ToPlan(r.BillingCycle),
	}
}

// ServiceStartPreviewResponse is the charge breakdown and its invoice
type ServiceStartPreviewResponse struct {
	Scenario types.ProrationScenario       `json:"scenario"`
	Result   *proration.ServiceStartResult `json:"result"`
	Invoice  *invoice.Invoice              `json:"invoice"`
}

// PlanChangePreviewRequest previews moving from one plan to another
type PlanChangePreviewRequest struct {
	// ChangeDate is when the new plan took or takes effect
	ChangeDate time.Time `json:"change_date" validate:"required"`

	// CurrentDate is the date the change is processed on
	CurrentDate time.Time `json:"current_date" validate:"required"`

	// CurrentPeriodEnd is the end of the period most recently invoiced.
	// It defaults to the end of the period containing CurrentDate.
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`

	BillingScheduleRequest

	OldPlan PlanRequest `json:"old_plan"`
	NewPlan PlanRequest `json:"new_plan"`
}

func (r *PlanChangePreviewRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToParams converts the request into retroactive plan change params.
// currentPeriodEnd is used when the request does not carry one.
func (r *PlanChangePreviewRequest) ToParams(defaultAnchorDay int, currentPeriodEnd time.Time) proration.PlanChangeParams {
	if r.CurrentPeriodEnd != nil {
		currentPeriodEnd = *r.CurrentPeriodEnd
	}

	return proration.PlanChangeParams{
		ChangeDate:       r.ChangeDate,
		CurrentDate:      r.CurrentDate,
		CurrentPeriodEnd: currentPeriodEnd,
		Cycle:            r.BillingCycle,
		AnchorDay:        r.anchorDayOrDefault(defaultAnchorDay),
		OldPlan:          r.OldPlan.ToPlan(r.BillingCycle),
		NewPlan:          r.NewPlan.ToPlan(r.BillingCycle),
	}
}

// ToInPeriodParams converts the request into params for a change inside period
func (r *PlanChangePreviewRequest) ToInPeriodParams(period proration.BillingPeriod) proration.SinglePeriodPlanChangeParams {
	return proration.SinglePeriodPlanChangeParams{
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		ChangeDate:  r.ChangeDate,
		OldPlan:     r.OldPlan.ToPlan(r.BillingCycle),
		NewPlan:     r.NewPlan.ToPlan(r.BillingCycle),
	}
}

// AnchorDayOrDefault returns the requested anchor day or the fallback when unset
func (r *PlanChangePreviewRequest) AnchorDayOrDefault(fallback int) int {
	return r.anchorDayOrDefault(fallback)
}

// PlanChangePreviewResponse carries exactly one of SinglePeriod or MultiPeriod
// depending on Mode.
type PlanChangePreviewResponse struct {
	Scenario     types.ProrationScenario                 `json:"scenario"`
	Mode         types.PlanChangeMode                    `json:"mode"`
	IsUpgrade    bool                                    `json:"is_upgrade"`
	NetAmount    decimal.Decimal                         `json:"net_amount"`
	SinglePeriod *proration.SinglePeriodPlanChangeResult `json:"single_period,omitempty"`
	MultiPeriod  *proration.PlanChangeResult             `json:"multi_period,omitempty"`
	Invoice      *invoice.Invoice                        `json:"invoice"`
}
