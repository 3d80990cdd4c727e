package service

import (
	"testing"
	"time"

	"github.com/flexprice/proratemate/internal/api/dto"
	"github.com/flexprice/proratemate/internal/domain/proration"
	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/testutil"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProrationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  ProrationService
	testData struct {
		basic dto.PlanRequest
		pro   dto.PlanRequest
	}
}

func TestProrationService(t *testing.T) {
	suite.Run(t, new(ProrationServiceSuite))
}

func (s *ProrationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = s.newService(s.GetConfig().Proration.MaxPeriodIterations)
	s.testData.basic = dto.PlanRequest{Name: "Basic", Price: decimal.NewFromInt(50)}
	s.testData.pro = dto.PlanRequest{Name: "Pro", Price: decimal.NewFromInt(200)}
}

func (s *ProrationServiceSuite) newService(maxIterations int) ProrationService {
	return NewProrationService(NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetCache(),
		proration.NewCalculator(maxIterations),
	))
}

func (s *ProrationServiceSuite) date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *ProrationServiceSuite) assertAmount(expected string, actual decimal.Decimal) {
	s.True(decimal.RequireFromString(expected).Equal(actual), "expected %s but got %s", expected, actual)
}

func (s *ProrationServiceSuite) monthly(anchorDay int) dto.BillingScheduleRequest {
	return dto.BillingScheduleRequest{BillingCycle: types.BillingCycleMonthly, AnchorDay: anchorDay}
}

func (s *ProrationServiceSuite) TestPreviewServiceEnd() {
	resp, err := s.service.PreviewServiceEnd(s.GetContext(), &dto.ServiceEndPreviewRequest{
		CancelDate:             s.date(2024, 1, 16),
		CurrentPeriodEnd:       s.date(2024, 2, 1),
		BillingScheduleRequest: s.monthly(0),
		Plan:                   s.testData.basic,
	})
	s.Require().NoError(err)

	s.Equal(types.ProrationScenarioServiceEnd, resp.Scenario)
	s.Require().Len(resp.Result.Periods, 1)
	s.True(s.date(2024, 1, 1).Equal(resp.Result.Periods[0].PeriodStart), "default anchor day is the first")
	s.assertAmount("25.81", resp.Result.TotalCredit)
	s.assertAmount("-25.81", resp.Invoice.Total)
	s.Equal("Basic - Credit for unused time, period 1 (16 days)", resp.Invoice.Lines[0].Description)
}

func (s *ProrationServiceSuite) TestPreviewServiceEnd_Validation() {
	tests := []struct {
		name string
		req  *dto.ServiceEndPreviewRequest
	}{
		{
			name: "cancel_after_period_end",
			req: &dto.ServiceEndPreviewRequest{
				CancelDate:             s.date(2024, 2, 5),
				CurrentPeriodEnd:       s.date(2024, 2, 1),
				BillingScheduleRequest: s.monthly(1),
				Plan:                   s.testData.basic,
			},
		},
		{
			name: "anchor_day_out_of_range",
			req: &dto.ServiceEndPreviewRequest{
				CancelDate:             s.date(2024, 1, 16),
				CurrentPeriodEnd:       s.date(2024, 2, 1),
				BillingScheduleRequest: s.monthly(40),
				Plan:                   s.testData.basic,
			},
		},
		{
			name: "unknown_cycle",
			req: &dto.ServiceEndPreviewRequest{
				CancelDate:             s.date(2024, 1, 16),
				CurrentPeriodEnd:       s.date(2024, 2, 1),
				BillingScheduleRequest: dto.BillingScheduleRequest{BillingCycle: "weekly", AnchorDay: 1},
				Plan:                   s.testData.basic,
			},
		},
		{
			name: "missing_plan_name",
			req: &dto.ServiceEndPreviewRequest{
				CancelDate:             s.date(2024, 1, 16),
				CurrentPeriodEnd:       s.date(2024, 2, 1),
				BillingScheduleRequest: s.monthly(1),
				Plan:                   dto.PlanRequest{Price: decimal.NewFromInt(50)},
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.PreviewServiceEnd(s.GetContext(), tt.req)
			s.Error(err)
			s.Nil(resp)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *ProrationServiceSuite) TestPreviewServiceStart() {
	resp, err := s.service.PreviewServiceStart(s.GetContext(), &dto.ServiceStartPreviewRequest{
		StartDate:              s.date(2024, 1, 16),
		CurrentPeriodEnd:       s.date(2024, 2, 1),
		BillingScheduleRequest: s.monthly(1),
		Plan:                   s.testData.basic,
	})
	s.Require().NoError(err)

	s.Equal(types.ProrationScenarioServiceStart, resp.Scenario)
	s.assertAmount("25.81", resp.Result.TotalCharge)
	s.assertAmount("25.81", resp.Invoice.Subtotal)
	s.assertAmount("25.81", resp.Invoice.Total)
}

func (s *ProrationServiceSuite) TestPreviewPlanChange_InOpenPeriod() {
	resp, err := s.service.PreviewPlanChange(s.GetContext(), &dto.PlanChangePreviewRequest{
		ChangeDate:             s.date(2024, 1, 16),
		CurrentDate:            s.date(2024, 1, 20),
		BillingScheduleRequest: s.monthly(1),
		OldPlan:                s.testData.basic,
		NewPlan:                s.testData.pro,
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeModeSinglePeriod, resp.Mode)
	s.Nil(resp.MultiPeriod)
	s.Require().NotNil(resp.SinglePeriod)
	s.True(resp.IsUpgrade)
	s.assertAmount("25.81", resp.SinglePeriod.OldPlanCredit)
	s.assertAmount("103.23", resp.SinglePeriod.NewPlanCharge)
	s.assertAmount("77.42", resp.NetAmount)
	s.assertAmount("77.42", resp.Invoice.Total)
	s.Len(resp.Invoice.Lines, 2)
}

func (s *ProrationServiceSuite) TestPreviewPlanChange_Retroactive() {
	resp, err := s.service.PreviewPlanChange(s.GetContext(), &dto.PlanChangePreviewRequest{
		ChangeDate:             s.date(2024, 1, 15),
		CurrentDate:            s.date(2024, 3, 15),
		BillingScheduleRequest: s.monthly(1),
		OldPlan:                s.testData.basic,
		NewPlan:                s.testData.pro,
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeModeMultiPeriod, resp.Mode)
	s.Nil(resp.SinglePeriod)
	s.Require().NotNil(resp.MultiPeriod)
	s.Equal(3, resp.MultiPeriod.TotalPeriodsAffected)
	s.Equal(types.PartialPositionStart, resp.MultiPeriod.Periods[0].PartialPosition)
	s.False(resp.MultiPeriod.Periods[1].IsPartial)
	s.False(resp.MultiPeriod.Periods[2].IsPartial)
	s.assertAmount("382.26", resp.NetAmount)
	s.assertAmount("382.26", resp.Invoice.Total)
	s.Len(resp.Invoice.Lines, 6)
	s.True(s.date(2024, 4, 1).Equal(resp.Invoice.PeriodEnd), "current period end defaults to the open period end")
}

func (s *ProrationServiceSuite) TestPreviewPlanChange_ExplicitCurrentPeriodEnd() {
	periodEnd := s.date(2024, 3, 1)
	resp, err := s.service.PreviewPlanChange(s.GetContext(), &dto.PlanChangePreviewRequest{
		ChangeDate:             s.date(2024, 1, 15),
		CurrentDate:            s.date(2024, 2, 20),
		CurrentPeriodEnd:       &periodEnd,
		BillingScheduleRequest: s.monthly(1),
		OldPlan:                s.testData.basic,
		NewPlan:                s.testData.pro,
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeModeMultiPeriod, resp.Mode)
	s.Equal(2, resp.MultiPeriod.TotalPeriodsAffected)
}

func (s *ProrationServiceSuite) TestPreviewPlanChange_LaterInOpenPeriod() {
	resp, err := s.service.PreviewPlanChange(s.GetContext(), &dto.PlanChangePreviewRequest{
		ChangeDate:             s.date(2024, 3, 20),
		CurrentDate:            s.date(2024, 3, 10),
		BillingScheduleRequest: s.monthly(1),
		OldPlan:                s.testData.basic,
		NewPlan:                s.testData.pro,
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeModeSinglePeriod, resp.Mode)
	s.Require().NotNil(resp.SinglePeriod)
	s.True(s.date(2024, 3, 1).Equal(resp.SinglePeriod.Period.Start))
	s.True(s.date(2024, 4, 1).Equal(resp.SinglePeriod.Period.End))
	s.assertAmount("19.35", resp.SinglePeriod.OldPlanCredit)
	s.assertAmount("77.42", resp.SinglePeriod.NewPlanCharge)
	s.assertAmount("58.07", resp.NetAmount)
}

func (s *ProrationServiceSuite) TestPreviewPlanChange_ClampedAnchorStopsAtOpenPeriod() {
	resp, err := s.service.PreviewPlanChange(s.GetContext(), &dto.PlanChangePreviewRequest{
		ChangeDate:             s.date(2024, 1, 31),
		CurrentDate:            s.date(2024, 4, 30),
		BillingScheduleRequest: s.monthly(31),
		OldPlan:                s.testData.basic,
		NewPlan:                s.testData.pro,
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeModeMultiPeriod, resp.Mode)
	s.Require().NotNil(resp.MultiPeriod)
	s.Require().Equal(4, resp.MultiPeriod.TotalPeriodsAffected)

	last := resp.MultiPeriod.Periods[3]
	s.True(s.date(2024, 4, 29).Equal(last.PeriodStart), "last period start %s", last.PeriodStart)
	s.True(s.date(2024, 5, 29).Equal(last.PeriodEnd), "last period end %s", last.PeriodEnd)
	s.assertAmount("200", resp.MultiPeriod.TotalCredits)
	s.assertAmount("800", resp.MultiPeriod.TotalCharges)
	s.assertAmount("600", resp.NetAmount)
	s.True(s.date(2024, 1, 31).Equal(resp.Invoice.PeriodStart))
	s.True(s.date(2024, 5, 29).Equal(resp.Invoice.PeriodEnd))
}

func (s *ProrationServiceSuite) TestPreviewPlanChange_FutureChangeDate() {
	_, err := s.service.PreviewPlanChange(s.GetContext(), &dto.PlanChangePreviewRequest{
		ChangeDate:             s.date(2024, 4, 15),
		CurrentDate:            s.date(2024, 3, 15),
		BillingScheduleRequest: s.monthly(1),
		OldPlan:                s.testData.basic,
		NewPlan:                s.testData.pro,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ProrationServiceSuite) TestResultsAreCached() {
	req := &dto.ServiceEndPreviewRequest{
		CancelDate:             s.date(2024, 1, 16),
		CurrentPeriodEnd:       s.date(2024, 3, 1),
		BillingScheduleRequest: s.monthly(1),
		Plan:                   s.testData.basic,
	}

	first, err := s.service.PreviewServiceEnd(s.GetContext(), req)
	s.Require().NoError(err)
	second, err := s.service.PreviewServiceEnd(s.GetContext(), req)
	s.Require().NoError(err)

	s.Same(first, second)
	s.Equal(1, s.GetCache().ItemCount())
}

func (s *ProrationServiceSuite) TestInvariantViolationIsNotCached() {
	svc := s.newService(1)

	_, err := svc.PreviewServiceEnd(s.GetContext(), &dto.ServiceEndPreviewRequest{
		CancelDate:             s.date(2024, 1, 16),
		CurrentPeriodEnd:       s.date(2024, 4, 1),
		BillingScheduleRequest: s.monthly(1),
		Plan:                   s.testData.basic,
	})
	s.Error(err)
	s.True(ierr.IsInvariantViolation(err))
	s.Equal(0, s.GetCache().ItemCount())
}

func (s *ProrationServiceSuite) TestListBillingPeriods() {
	resp, err := s.service.ListBillingPeriods(s.GetContext(), &dto.BillingPeriodsRequest{
		EffectiveDate:    s.date(2024, 5, 10),
		CurrentPeriodEnd: s.date(2024, 11, 15),
		BillingCycle:     types.BillingCycleQuarterly,
		AnchorDay:        15,
	})
	s.Require().NoError(err)
	s.Equal(3, resp.Count)
	s.True(s.date(2024, 2, 15).Equal(resp.Periods[0].Start))
	s.Equal("Quarterly", resp.CycleLabel)

	_, err = s.service.ListBillingPeriods(s.GetContext(), &dto.BillingPeriodsRequest{
		EffectiveDate:    s.date(2024, 12, 10),
		CurrentPeriodEnd: s.date(2024, 11, 15),
		BillingCycle:     types.BillingCycleQuarterly,
	})
	s.True(ierr.IsValidation(err))
}
