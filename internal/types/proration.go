package types

// ProrationScenario is the billing event a proration is computed for.
type ProrationScenario string

const (
	ProrationScenarioServiceStart ProrationScenario = "service_start"
	ProrationScenarioServiceEnd   ProrationScenario = "service_end"
	ProrationScenarioPlanChange   ProrationScenario = "plan_change"
)

func (s ProrationScenario) String() string {
	return string(s)
}

// PlanChangeMode tells which plan change engine produced a result.
type PlanChangeMode string

const (
	// PlanChangeModeSinglePeriod prorates inside the currently open period only
	PlanChangeModeSinglePeriod PlanChangeMode = "single_period"
	// PlanChangeModeMultiPeriod unwinds every period since the change date
	PlanChangeModeMultiPeriod PlanChangeMode = "multi_period"
)

// PartialPosition marks where the unaffected part of a partial period sits.
type PartialPosition string

const (
	PartialPositionStart PartialPosition = "start"
	PartialPositionEnd   PartialPosition = "end"
	PartialPositionNone  PartialPosition = "none"
)

// ProrationPrecision is the number of decimal places every monetary amount is rounded to.
const ProrationPrecision int32 = 2
