package invoice

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Invoice is the normalized line item view of a proration result. It is never
// persisted and carries no identity.
type Invoice struct {
	Lines       []InvoiceLine   `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Credits     decimal.Decimal `json:"credits"`
	Total       decimal.Decimal `json:"total"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
}

// ChargeLines returns the non credit lines.
func (i *Invoice) ChargeLines() []InvoiceLine {
	return lo.Filter(i.Lines, func(line InvoiceLine, _ int) bool { return !line.IsCredit })
}

// CreditLines returns the credit lines.
func (i *Invoice) CreditLines() []InvoiceLine {
	return lo.Filter(i.Lines, func(line InvoiceLine, _ int) bool { return line.IsCredit })
}

func (i *Invoice) Validate() error {
	if i.Subtotal.IsNegative() {
		return NewValidationError("subtotal", "must be non negative")
	}

	if i.Credits.IsNegative() {
		return NewValidationError("credits", "must be non negative")
	}

	if !i.Subtotal.Sub(i.Credits).Equal(i.Total) {
		return NewValidationError("total", "must equal subtotal - credits")
	}

	if i.PeriodEnd.Before(i.PeriodStart) {
		return NewValidationError("period_end", "must be after period_start")
	}

	for _, line := range i.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	return nil
}
