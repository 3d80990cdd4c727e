package invoice

import (
	"time"

	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/shopspring/decimal"
)

// InvoiceLine is a single credit or charge on a proration invoice.
// Credits carry negative amounts.
type InvoiceLine struct {
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
	IsCredit     bool            `json:"is_credit"`
	PeriodNumber int             `json:"period_number,omitempty"`
	PeriodStart  *time.Time      `json:"period_start,omitempty"`
	PeriodEnd    *time.Time      `json:"period_end,omitempty"`
}

// Validate validates the invoice line
func (l *InvoiceLine) Validate() error {
	if l.Quantity.IsNegative() {
		return ierr.NewError("invoice line validation failed").WithHint("quantity must be non negative").Mark(ierr.ErrValidation)
	}

	if l.IsCredit && l.Amount.IsPositive() {
		return ierr.NewError("invoice line validation failed").WithHint("credit amount must not be positive").Mark(ierr.ErrValidation)
	}

	if !l.IsCredit && l.Amount.IsNegative() {
		return ierr.NewError("invoice line validation failed").WithHint("charge amount must be non negative").Mark(ierr.ErrValidation)
	}

	if !l.UnitPrice.Mul(l.Quantity).Equal(l.Amount) {
		return ierr.NewError("invoice line validation failed").WithHint("amount must equal unit_price * quantity").Mark(ierr.ErrValidation)
	}

	if l.PeriodStart != nil && l.PeriodEnd != nil {
		if l.PeriodEnd.Before(*l.PeriodStart) {
			return ierr.NewError("invoice line validation failed").WithHint("period_end must be after period_start").Mark(ierr.ErrValidation)
		}
	}

	return nil
}
