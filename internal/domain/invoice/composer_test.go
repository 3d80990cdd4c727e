package invoice

import (
	"testing"
	"time"

	"github.com/flexprice/proratemate/internal/domain/proration"
	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ComposerSuite struct {
	suite.Suite
	calculator proration.Calculator
	basic      proration.Plan
	pro        proration.Plan
}

func TestComposer(t *testing.T) {
	suite.Run(t, new(ComposerSuite))
}

func (s *ComposerSuite) SetupTest() {
	s.calculator = proration.NewCalculator(proration.DefaultMaxPeriodIterations)
	s.basic = proration.Plan{Name: "Basic", Price: decimal.NewFromInt(50), Cycle: types.BillingCycleMonthly}
	s.pro = proration.Plan{Name: "Pro", Price: decimal.NewFromInt(200), Cycle: types.BillingCycleMonthly}
}

func (s *ComposerSuite) date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *ComposerSuite) assertAmount(expected string, actual decimal.Decimal, field string) {
	s.True(decimal.RequireFromString(expected).Equal(actual), "%s: expected %s but got %s", field, expected, actual)
}

func (s *ComposerSuite) TestComposePlanChangeInPeriod() {
	result, err := s.calculator.ComputePlanChangeInPeriod(proration.SinglePeriodPlanChangeParams{
		PeriodStart: s.date(2024, 1, 1),
		PeriodEnd:   s.date(2024, 2, 1),
		ChangeDate:  s.date(2024, 1, 16),
		OldPlan:     s.basic,
		NewPlan:     s.pro,
	})
	s.Require().NoError(err)

	inv := ComposePlanChangeInPeriod(s.basic, s.pro, result)
	s.Require().Len(inv.Lines, 2)

	s.Equal("Basic - Credit for unused portion (16 days)", inv.Lines[0].Description)
	s.True(inv.Lines[0].IsCredit)
	s.assertAmount("-25.81", inv.Lines[0].Amount, "credit amount")

	s.Equal("Pro - Prorated charge (16 days)", inv.Lines[1].Description)
	s.False(inv.Lines[1].IsCredit)
	s.assertAmount("103.23", inv.Lines[1].Amount, "charge amount")

	s.assertAmount("103.23", inv.Subtotal, "subtotal")
	s.assertAmount("25.81", inv.Credits, "credits")
	s.assertAmount("77.42", inv.Total, "total")
	s.True(inv.Total.Equal(result.NetAmount))
	s.True(s.date(2024, 1, 1).Equal(inv.PeriodStart))
	s.True(s.date(2024, 2, 1).Equal(inv.PeriodEnd))
	s.NoError(inv.Validate())
}

func (s *ComposerSuite) TestComposePlanChange_Retroactive() {
	result, err := s.calculator.ComputePlanChange(proration.PlanChangeParams{
		ChangeDate:       s.date(2024, 1, 15),
		CurrentDate:      s.date(2024, 3, 15),
		CurrentPeriodEnd: s.date(2024, 4, 1),
		Cycle:            types.BillingCycleMonthly,
		AnchorDay:        1,
		OldPlan:          s.basic,
		NewPlan:          s.pro,
	})
	s.Require().NoError(err)

	inv := ComposePlanChange(s.basic, s.pro, result)
	s.Require().Len(inv.Lines, 6)

	expected := []struct {
		description string
		amount      string
		isCredit    bool
	}{
		{"Basic - Credit for old plan, period 1 (17 days)", "-27.42", true},
		{"Pro - Prorated charge, period 1 (17 days)", "109.68", false},
		{"Basic - Credit for old plan, period 2 (29 days)", "-50", true},
		{"Pro - Prorated charge, period 2 (29 days)", "200", false},
		{"Basic - Credit for old plan, period 3 (31 days)", "-50", true},
		{"Pro - Prorated charge, period 3 (31 days)", "200", false},
	}
	for i, want := range expected {
		line := inv.Lines[i]
		s.Equal(want.description, line.Description)
		s.Equal(want.isCredit, line.IsCredit)
		s.assertAmount(want.amount, line.Amount, "line amount")
		s.True(decimal.NewFromInt(1).Equal(line.Quantity))
		s.Equal(i/2+1, line.PeriodNumber)
	}

	s.assertAmount("509.68", inv.Subtotal, "subtotal")
	s.assertAmount("127.42", inv.Credits, "credits")
	s.assertAmount("382.26", inv.Total, "total")
	s.True(inv.Total.Equal(result.NetAdjustment))
	s.True(s.date(2024, 1, 1).Equal(inv.PeriodStart))
	s.True(s.date(2024, 4, 1).Equal(inv.PeriodEnd))
	s.Len(inv.CreditLines(), 3)
	s.Len(inv.ChargeLines(), 3)
	s.NoError(inv.Validate())
}

func (s *ComposerSuite) TestComposeServiceEnd() {
	result, err := s.calculator.ComputeServiceEnd(proration.ServiceEndParams{
		CancelDate:       s.date(2024, 1, 16),
		CurrentPeriodEnd: s.date(2024, 2, 1),
		Cycle:            types.BillingCycleMonthly,
		AnchorDay:        1,
		Plan:             s.basic,
	})
	s.Require().NoError(err)

	inv := ComposeServiceEnd(s.basic, result)
	s.Require().Len(inv.Lines, 1)
	s.Equal("Basic - Credit for unused time, period 1 (16 days)", inv.Lines[0].Description)
	s.assertAmount("-25.81", inv.Lines[0].Amount, "credit amount")
	s.True(inv.Subtotal.IsZero())
	s.assertAmount("25.81", inv.Credits, "credits")
	s.assertAmount("-25.81", inv.Total, "total")
	s.NoError(inv.Validate())
}

func (s *ComposerSuite) TestComposeServiceStart_SingleDay() {
	result, err := s.calculator.ComputeServiceStart(proration.ServiceStartParams{
		StartDate:        s.date(2024, 1, 31),
		CurrentPeriodEnd: s.date(2024, 2, 1),
		Cycle:            types.BillingCycleMonthly,
		AnchorDay:        1,
		Plan:             s.basic,
	})
	s.Require().NoError(err)

	inv := ComposeServiceStart(s.basic, result)
	s.Require().Len(inv.Lines, 1)
	s.Equal("Basic - Prorated charge, period 1 (1 day)", inv.Lines[0].Description)
	s.assertAmount("1.61", inv.Lines[0].Amount, "charge amount")
	s.assertAmount("1.61", inv.Subtotal, "subtotal")
	s.True(inv.Credits.IsZero())
	s.assertAmount("1.61", inv.Total, "total")
}

func TestInvoice_Validate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		invoice Invoice
		wantErr bool
	}{
		{
			name: "balanced",
			invoice: Invoice{
				Lines: []InvoiceLine{
					{Description: "charge", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10), Amount: decimal.NewFromInt(10)},
					{Description: "credit", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-4), Amount: decimal.NewFromInt(-4), IsCredit: true},
				},
				Subtotal:    decimal.NewFromInt(10),
				Credits:     decimal.NewFromInt(4),
				Total:       decimal.NewFromInt(6),
				PeriodStart: start,
				PeriodEnd:   end,
			},
		},
		{
			name: "total_does_not_balance",
			invoice: Invoice{
				Subtotal:    decimal.NewFromInt(10),
				Credits:     decimal.NewFromInt(4),
				Total:       decimal.NewFromInt(7),
				PeriodStart: start,
				PeriodEnd:   end,
			},
			wantErr: true,
		},
		{
			name: "positive_credit_line",
			invoice: Invoice{
				Lines: []InvoiceLine{
					{Description: "credit", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(4), Amount: decimal.NewFromInt(4), IsCredit: true},
				},
				PeriodStart: start,
				PeriodEnd:   end,
			},
			wantErr: true,
		},
		{
			name: "inverted_period",
			invoice: Invoice{
				PeriodStart: end,
				PeriodEnd:   start,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.invoice.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}
