package invoice

import (
	"fmt"

	"github.com/flexprice/proratemate/internal/domain/proration"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ComposeServiceEnd emits one credit line per affected period.
func ComposeServiceEnd(plan proration.Plan, result *proration.ServiceEndResult) *Invoice {
	lines := make([]InvoiceLine, 0, len(result.Periods))
	for _, adj := range result.Periods {
		lines = append(lines, creditLine(plan, unusedTimeCredit, adj.CreditFromOldPlan, &adj))
	}
	return newInvoice(lines, periodSpan(result.Periods))
}

// ComposeServiceStart emits one charge line per affected period.
func ComposeServiceStart(plan proration.Plan, result *proration.ServiceStartResult) *Invoice {
	lines := make([]InvoiceLine, 0, len(result.Periods))
	for _, adj := range result.Periods {
		lines = append(lines, chargeLine(plan, adj.ChargeForNewPlan, &adj))
	}
	return newInvoice(lines, periodSpan(result.Periods))
}

// ComposePlanChange emits a credit for the old plan followed by a charge for
// the new plan for every corrected period.
func ComposePlanChange(oldPlan, newPlan proration.Plan, result *proration.PlanChangeResult) *Invoice {
	lines := make([]InvoiceLine, 0, 2*len(result.Periods))
	for _, adj := range result.Periods {
		lines = append(lines,
			creditLine(oldPlan, oldPlanCredit, adj.CreditFromOldPlan, &adj),
			chargeLine(newPlan, adj.ChargeForNewPlan, &adj),
		)
	}
	return newInvoice(lines, periodSpan(result.Periods))
}

// ComposePlanChangeInPeriod emits the credit and charge of a plan change made
// inside the open period.
func ComposePlanChangeInPeriod(oldPlan, newPlan proration.Plan, result *proration.SinglePeriodPlanChangeResult) *Invoice {
	days := result.NewPlanDaysRemaining
	lines := []InvoiceLine{
		{
			Description: fmt.Sprintf("%s - Credit for unused portion (%s)", planName(oldPlan), dayCount(days)),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   result.OldPlanCredit.Neg(),
			Amount:      result.OldPlanCredit.Neg(),
			IsCredit:    true,
		},
		{
			Description: fmt.Sprintf("%s - Prorated charge (%s)", planName(newPlan), dayCount(days)),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   result.NewPlanCharge,
			Amount:      result.NewPlanCharge,
		},
	}
	return newInvoice(lines, result.Period)
}

func newInvoice(lines []InvoiceLine, span proration.BillingPeriod) *Invoice {
	subtotal := lo.Reduce(lines, func(acc decimal.Decimal, line InvoiceLine, _ int) decimal.Decimal {
		if line.IsCredit {
			return acc
		}
		return acc.Add(line.Amount)
	}, decimal.Zero)

	credits := lo.Reduce(lines, func(acc decimal.Decimal, line InvoiceLine, _ int) decimal.Decimal {
		if !line.IsCredit {
			return acc
		}
		return acc.Add(line.Amount.Abs())
	}, decimal.Zero)

	subtotal = proration.RoundAmount(subtotal)
	credits = proration.RoundAmount(credits)

	return &Invoice{
		Lines:       lines,
		Subtotal:    subtotal,
		Credits:     credits,
		Total:       proration.RoundAmount(subtotal.Sub(credits)),
		PeriodStart: span.Start,
		PeriodEnd:   span.End,
	}
}

const (
	// unusedTimeCredit refunds time after a cancellation
	unusedTimeCredit = "Credit for unused time"
	// oldPlanCredit unwinds time already billed on the plan being replaced
	oldPlanCredit = "Credit for old plan"
)

func creditLine(plan proration.Plan, reason string, credit decimal.Decimal, adj *proration.PeriodAdjustment) InvoiceLine {
	line := periodLine(adj)
	line.Description = fmt.Sprintf("%s - %s, period %d (%s)",
		planName(plan), reason, adj.PeriodNumber, dayCount(adj.DaysAffected))
	line.UnitPrice = credit.Neg()
	line.Amount = credit.Neg()
	line.IsCredit = true
	return line
}

func chargeLine(plan proration.Plan, charge decimal.Decimal, adj *proration.PeriodAdjustment) InvoiceLine {
	line := periodLine(adj)
	line.Description = fmt.Sprintf("%s - Prorated charge, period %d (%s)",
		planName(plan), adj.PeriodNumber, dayCount(adj.DaysAffected))
	line.UnitPrice = charge
	line.Amount = charge
	return line
}

func periodLine(adj *proration.PeriodAdjustment) InvoiceLine {
	start, end := adj.PeriodStart, adj.PeriodEnd
	return InvoiceLine{
		Quantity:     decimal.NewFromInt(1),
		PeriodNumber: adj.PeriodNumber,
		PeriodStart:  &start,
		PeriodEnd:    &end,
	}
}

// periodSpan returns the first period's start and the last period's end.
func periodSpan(periods []proration.PeriodAdjustment) proration.BillingPeriod {
	if len(periods) == 0 {
		return proration.BillingPeriod{}
	}
	return proration.BillingPeriod{
		Start: periods[0].PeriodStart,
		End:   periods[len(periods)-1].PeriodEnd,
	}
}

func planName(plan proration.Plan) string {
	if plan.Name == "" {
		return "Plan"
	}
	return plan.Name
}

func dayCount(days int64) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
