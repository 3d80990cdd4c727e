package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flexprice/proratemate/internal/api/dto"
	"github.com/flexprice/proratemate/internal/cache"
	"github.com/flexprice/proratemate/internal/domain/invoice"
	"github.com/flexprice/proratemate/internal/domain/proration"
	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/types"
)

// ProrationService previews proration outcomes for billing events
type ProrationService interface {
	ListBillingPeriods(ctx context.Context, req *dto.BillingPeriodsRequest) (*dto.BillingPeriodsResponse, error)
	PreviewServiceEnd(ctx context.Context, req *dto.ServiceEndPreviewRequest) (*dto.ServiceEndPreviewResponse, error)
	PreviewServiceStart(ctx context.Context, req *dto.ServiceStartPreviewRequest) (*dto.ServiceStartPreviewResponse, error)
	PreviewPlanChange(ctx context.Context, req *dto.PlanChangePreviewRequest) (*dto.PlanChangePreviewResponse, error)
}

type prorationService struct {
	ServiceParams
}

// NewProrationService creates a new proration service.
func NewProrationService(params ServiceParams) ProrationService {
	return &prorationService{
		ServiceParams: params,
	}
}

func (s *prorationService) ListBillingPeriods(ctx context.Context, req *dto.BillingPeriodsRequest) (*dto.BillingPeriodsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	anchorDay := req.AnchorDayOrDefault(s.Config.Proration.DefaultAnchorDay)
	if req.EffectiveDate.After(req.CurrentPeriodEnd) {
		return nil, validationFailed([]string{"Effective date must be on or before the current period end date"})
	}

	key := struct {
		Request   *dto.BillingPeriodsRequest `json:"request"`
		AnchorDay int                        `json:"anchor_day"`
		Location  string                     `json:"location"`
	}{req, anchorDay, req.EffectiveDate.Location().String()}

	return withCache(ctx, s, cache.PrefixBillingPeriods, key, func() (*dto.BillingPeriodsResponse, error) {
		periods, err := s.ProrationCalculator.BillingPeriods(req.EffectiveDate, req.CurrentPeriodEnd, req.BillingCycle, anchorDay)
		if err != nil {
			return nil, err
		}
		return &dto.BillingPeriodsResponse{
			BillingCycle: req.BillingCycle,
			CycleLabel:   req.BillingCycle.Label(),
			Periods:      periods,
			Count:        len(periods),
		}, nil
	})
}

func (s *prorationService) PreviewServiceEnd(ctx context.Context, req *dto.ServiceEndPreviewRequest) (*dto.ServiceEndPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := req.ToParams(s.Config.Proration.DefaultAnchorDay)
	if errs := proration.ValidateServiceEnd(params); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	s.Logger.Debugw("calculating service end proration",
		zap.String("request_id", types.GetRequestID(ctx)),
		zap.Time("cancel_date", params.CancelDate),
		zap.Time("current_period_end", params.CurrentPeriodEnd),
		zap.String("billing_cycle", string(params.Cycle)),
		zap.Int("anchor_day", params.AnchorDay),
	)

	return withCache(ctx, s, cache.PrefixServiceEnd, cacheParams(params, params.CancelDate), func() (*dto.ServiceEndPreviewResponse, error) {
		result, err := s.ProrationCalculator.ComputeServiceEnd(params)
		if err != nil {
			return nil, err
		}
		inv, err := checkedInvoice(invoice.ComposeServiceEnd(params.Plan, result))
		if err != nil {
			return nil, err
		}
		return &dto.ServiceEndPreviewResponse{
			Scenario: types.ProrationScenarioServiceEnd,
			Result:   result,
			Invoice:  inv,
		}, nil
	})
}

func (s *prorationService) PreviewServiceStart(ctx context.Context, req *dto.ServiceStartPreviewRequest) (*dto.ServiceStartPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := req.ToParams(s.Config.Proration.DefaultAnchorDay)
	if errs := proration.ValidateServiceStart(params); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	s.Logger.Debugw("calculating service start proration",
		zap.String("request_id", types.GetRequestID(ctx)),
		zap.Time("start_date", params.StartDate),
		zap.Time("current_period_end", params.CurrentPeriodEnd),
		zap.String("billing_cycle", string(params.Cycle)),
		zap.Int("anchor_day", params.AnchorDay),
	)

	return withCache(ctx, s, cache.PrefixServiceStart, cacheParams(params, params.StartDate), func() (*dto.ServiceStartPreviewResponse, error) {
		result, err := s.ProrationCalculator.ComputeServiceStart(params)
		if err != nil {
			return nil, err
		}
		inv, err := checkedInvoice(invoice.ComposeServiceStart(params.Plan, result))
		if err != nil {
			return nil, err
		}
		return &dto.ServiceStartPreviewResponse{
			Scenario: types.ProrationScenarioServiceStart,
			Result:   result,
			Invoice:  inv,
		}, nil
	})
}

// PreviewPlanChange prorates inside the open period when the change date is
// not earlier than that period's start, and otherwise unwinds every period
// since the change date. The open period is taken from the period chain the
// retroactive path walks.
func (s *prorationService) PreviewPlanChange(ctx context.Context, req *dto.PlanChangePreviewRequest) (*dto.PlanChangePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// schedule and prices have to hold before the open period can be located
	params := req.ToParams(s.Config.Proration.DefaultAnchorDay, time.Time{})
	if errs := proration.ValidatePlanChangeRequest(params); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	open, err := s.ProrationCalculator.CurrentPeriodSince(params.ChangeDate, params.CurrentDate, params.Cycle, params.AnchorDay)
	if err != nil {
		s.logCalculationError(ctx, "locate open billing period", err)
		return nil, err
	}

	if !params.ChangeDate.Before(open.Start) {
		return s.previewPlanChangeInPeriod(ctx, req, open)
	}

	params = req.ToParams(params.AnchorDay, open.End)
	if errs := proration.ValidatePlanChange(params); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	s.Logger.Debugw("calculating retroactive plan change proration",
		zap.String("request_id", types.GetRequestID(ctx)),
		zap.Time("change_date", params.ChangeDate),
		zap.Time("current_period_end", params.CurrentPeriodEnd),
		zap.String("old_plan", params.OldPlan.Name),
		zap.String("new_plan", params.NewPlan.Name),
	)

	return withCache(ctx, s, cache.PrefixPlanChange, cacheParams(params, params.ChangeDate), func() (*dto.PlanChangePreviewResponse, error) {
		result, err := s.ProrationCalculator.ComputePlanChange(params)
		if err != nil {
			return nil, err
		}
		inv, err := checkedInvoice(invoice.ComposePlanChange(params.OldPlan, params.NewPlan, result))
		if err != nil {
			return nil, err
		}
		return &dto.PlanChangePreviewResponse{
			Scenario:    types.ProrationScenarioPlanChange,
			Mode:        types.PlanChangeModeMultiPeriod,
			IsUpgrade:   result.IsUpgrade,
			NetAmount:   result.NetAdjustment,
			MultiPeriod: result,
			Invoice:     inv,
		}, nil
	})
}

func (s *prorationService) previewPlanChangeInPeriod(
	ctx context.Context,
	req *dto.PlanChangePreviewRequest,
	open proration.BillingPeriod,
) (*dto.PlanChangePreviewResponse, error) {
	params := req.ToInPeriodParams(open)
	if errs := proration.ValidatePlanChangeInPeriod(params); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	s.Logger.Debugw("calculating in period plan change proration",
		zap.String("request_id", types.GetRequestID(ctx)),
		zap.Time("change_date", params.ChangeDate),
		zap.Time("period_start", params.PeriodStart),
		zap.Time("period_end", params.PeriodEnd),
		zap.String("old_plan", params.OldPlan.Name),
		zap.String("new_plan", params.NewPlan.Name),
	)

	return withCache(ctx, s, cache.PrefixPlanChangeInPeriod, cacheParams(params, params.ChangeDate), func() (*dto.PlanChangePreviewResponse, error) {
		result, err := s.ProrationCalculator.ComputePlanChangeInPeriod(params)
		if err != nil {
			return nil, err
		}
		inv, err := checkedInvoice(invoice.ComposePlanChangeInPeriod(params.OldPlan, params.NewPlan, result))
		if err != nil {
			return nil, err
		}
		return &dto.PlanChangePreviewResponse{
			Scenario:     types.ProrationScenarioPlanChange,
			Mode:         types.PlanChangeModeSinglePeriod,
			IsUpgrade:    result.IsUpgrade,
			NetAmount:    result.NetAmount,
			SinglePeriod: result,
			Invoice:      inv,
		}, nil
	})
}

// withCache serves a result from the cache or computes and stores it.
// Failed computations are never cached.
func withCache[T any](
	ctx context.Context,
	s *prorationService,
	prefix string,
	params any,
	compute func() (*T, error),
) (*T, error) {
	key, err := cache.GenerateHashKey(prefix, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not build the calculation cache key").
			Mark(ierr.ErrSystem)
	}

	if s.Cache != nil {
		if value, ok := s.Cache.Get(ctx, key); ok {
			if result, ok := value.(*T); ok {
				s.Logger.Debugw("proration served from cache", zap.String("key", key))
				return result, nil
			}
		}
	}

	result, err := compute()
	if err != nil {
		s.logCalculationError(ctx, prefix, err)
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, key, result, s.Config.Cache.TTL)
	}
	return result, nil
}

func (s *prorationService) logCalculationError(ctx context.Context, operation string, err error) {
	if ierr.IsInvariantViolation(err) {
		s.Logger.Errorw("proration invariant violated",
			zap.String("request_id", types.GetRequestID(ctx)),
			zap.String("operation", operation),
			zap.Error(err),
		)
		return
	}
	s.Logger.Warnw("proration calculation failed",
		zap.String("request_id", types.GetRequestID(ctx)),
		zap.String("operation", operation),
		zap.Error(err),
	)
}

// cacheParams pairs calculator params with the location periods are built in,
// since two instants with the same offset can still fall in different zones.
func cacheParams(params any, reference time.Time) any {
	return struct {
		Params   any    `json:"params"`
		Location string `json:"location"`
	}{params, reference.Location().String()}
}

// checkedInvoice rejects a composed invoice that does not balance.
func checkedInvoice(inv *invoice.Invoice) (*invoice.Invoice, error) {
	if err := inv.Validate(); err != nil {
		return nil, ierr.NewErrorf("composed invoice is inconsistent: %v", err).
			WithHint("Invoice could not be composed for this calculation").
			Mark(ierr.ErrInvariantViolation)
	}
	return inv, nil
}

// validationFailed turns ordered validator messages into a single error whose
// hint is the first message.
func validationFailed(errs []string) error {
	return ierr.NewError("proration input validation failed").
		WithHint(errs[0]).
		WithReportableDetails(map[string]any{
			"errors": errs,
		}).
		Mark(ierr.ErrValidation)
}
