package types

import (
	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/samber/lo"
)

// BillingCycle is the recurring cadence of a plan ex monthly, quarterly
type BillingCycle string

const (
	BillingCycleMonthly    BillingCycle = "monthly"
	BillingCycleQuarterly  BillingCycle = "quarterly"
	BillingCycleSemiannual BillingCycle = "semiannual"
	BillingCycleAnnual     BillingCycle = "annual"
)

var BillingCycleValues = []BillingCycle{
	BillingCycleMonthly,
	BillingCycleQuarterly,
	BillingCycleSemiannual,
	BillingCycleAnnual,
}

var billingCycleMonths = map[BillingCycle]int{
	BillingCycleMonthly:    1,
	BillingCycleQuarterly:  3,
	BillingCycleSemiannual: 6,
	BillingCycleAnnual:     12,
}

var billingCycleLabels = map[BillingCycle]string{
	BillingCycleMonthly:    "Monthly",
	BillingCycleQuarterly:  "Quarterly",
	BillingCycleSemiannual: "Semi-Annual",
	BillingCycleAnnual:     "Annual",
}

// Months returns the fixed number of calendar months in one cycle.
// Unknown cycles return 0, callers are expected to Validate first.
func (c BillingCycle) Months() int {
	return billingCycleMonths[c]
}

// Label returns the display label of the cycle, or the raw value when unknown.
func (c BillingCycle) Label() string {
	if label, ok := billingCycleLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c BillingCycle) Validate() error {
	if !lo.Contains(BillingCycleValues, c) {
		return ierr.NewError("invalid billing cycle").
			WithHint("Billing cycle must be monthly, quarterly, semiannual, or annual").
			WithReportableDetails(map[string]any{
				"allowed_values": BillingCycleValues,
				"provided_value": c,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (c BillingCycle) String() string {
	return string(c)
}

const (
	// MinAnchorDay and MaxAnchorDay bound the billing anchor day of month.
	MinAnchorDay = 1
	MaxAnchorDay = 31
)
