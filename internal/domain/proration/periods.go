package proration

import (
	"time"

	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/types"
)

// DefaultMaxPeriodIterations caps each walk of the period generator.
const DefaultMaxPeriodIterations = 100

// PeriodGenerator reconstructs anchor-aligned billing periods.
type PeriodGenerator struct {
	maxIterations int
}

// NewPeriodGenerator returns a generator whose walks are capped at maxIterations steps.
// A non-positive value selects DefaultMaxPeriodIterations.
func NewPeriodGenerator(maxIterations int) *PeriodGenerator {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxPeriodIterations
	}
	return &PeriodGenerator{maxIterations: maxIterations}
}

// Generate returns the chronological, contiguous billing periods overlapping
// [effectiveDate, currentPeriodEnd]. The first period is located by walking
// backward one cycle at a time from the anchor date in effectiveDate's month;
// periods are then emitted forward (next start = previous end) until a start
// reaches currentPeriodEnd. The result is never empty.
//
// An error marked ierr.ErrInvariantViolation is returned when either walk
// exceeds the iteration cap or a period fails to advance.
func (g *PeriodGenerator) Generate(
	effectiveDate time.Time,
	currentPeriodEnd time.Time,
	cycle types.BillingCycle,
	anchorDay int,
) ([]BillingPeriod, error) {
	start, err := g.locateStart(effectiveDate, cycle, anchorDay)
	if err != nil {
		return nil, err
	}

	periods := make([]BillingPeriod, 0, 1)
	for step := 0; len(periods) == 0 || start.Before(currentPeriodEnd); step++ {
		if step >= g.maxIterations {
			return nil, g.capExceeded("forward", effectiveDate, cycle, anchorDay)
		}

		end := types.PeriodEnd(start, cycle)
		if !end.After(start) {
			return nil, noAdvance(start, cycle, anchorDay)
		}

		if !end.Before(effectiveDate) {
			periods = append(periods, BillingPeriod{Start: start, End: end})
		}
		start = end
	}

	return periods, nil
}

// CurrentPeriod returns the billing period that contains at, anchored in at's month.
func (g *PeriodGenerator) CurrentPeriod(at time.Time, cycle types.BillingCycle, anchorDay int) (BillingPeriod, error) {
	return g.CurrentPeriodSince(at, at, cycle, anchorDay)
}

// CurrentPeriodSince returns the period containing at on the same chain that
// Generate builds from effectiveDate, so it always equals the last period of
// Generate(effectiveDate, end) for any end inside it. An effectiveDate after
// at falls back to the chain anchored in at's month.
func (g *PeriodGenerator) CurrentPeriodSince(
	effectiveDate time.Time,
	at time.Time,
	cycle types.BillingCycle,
	anchorDay int,
) (BillingPeriod, error) {
	origin := effectiveDate
	if origin.After(at) {
		origin = at
	}

	start, err := g.locateStart(origin, cycle, anchorDay)
	if err != nil {
		return BillingPeriod{}, err
	}

	for step := 0; step < g.maxIterations; step++ {
		end := types.PeriodEnd(start, cycle)
		if !end.After(start) {
			return BillingPeriod{}, noAdvance(start, cycle, anchorDay)
		}
		if end.After(at) {
			return BillingPeriod{Start: start, End: end}, nil
		}
		start = end
	}

	return BillingPeriod{}, g.capExceeded("forward", at, cycle, anchorDay)
}

// locateStart finds the anchor-aligned period start at or before date.
func (g *PeriodGenerator) locateStart(date time.Time, cycle types.BillingCycle, anchorDay int) (time.Time, error) {
	loc := date.Location()
	year, month := date.Year(), date.Month()

	start := types.AnchorDate(year, month, anchorDay, loc)
	for step := 0; start.After(date); step++ {
		if step >= g.maxIterations {
			return time.Time{}, g.capExceeded("backward", date, cycle, anchorDay)
		}
		month -= time.Month(cycle.Months())
		start = types.AnchorDate(year, month, anchorDay, loc)
	}

	return start, nil
}

func (g *PeriodGenerator) capExceeded(direction string, date time.Time, cycle types.BillingCycle, anchorDay int) error {
	return ierr.NewErrorf("billing period generation exceeded %d iterations walking %s", g.maxIterations, direction).
		WithHintf("Could not reconstruct billing periods for cycle %q and anchor day %d", cycle, anchorDay).
		WithReportableDetails(map[string]any{
			"billing_cycle":  cycle,
			"anchor_day":     anchorDay,
			"reference_date": date,
			"max_iterations": g.maxIterations,
			"direction":      direction,
		}).
		Mark(ierr.ErrInvariantViolation)
}

func noAdvance(start time.Time, cycle types.BillingCycle, anchorDay int) error {
	return ierr.NewError("billing period does not advance").
		WithHintf("Billing cycle %q did not produce a period after %s", cycle, start.Format(time.RFC3339)).
		WithReportableDetails(map[string]any{
			"billing_cycle": cycle,
			"anchor_day":    anchorDay,
			"period_start":  start,
		}).
		Mark(ierr.ErrInvariantViolation)
}

// GenerateBillingPeriods runs a generator with the default iteration cap.
func GenerateBillingPeriods(
	effectiveDate time.Time,
	currentPeriodEnd time.Time,
	cycle types.BillingCycle,
	anchorDay int,
) ([]BillingPeriod, error) {
	return NewPeriodGenerator(DefaultMaxPeriodIterations).Generate(effectiveDate, currentPeriodEnd, cycle, anchorDay)
}

func secondsBetween(from, to time.Time) int64 {
	if !to.After(from) {
		return 0
	}
	return int64(to.Sub(from) / time.Second)
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
