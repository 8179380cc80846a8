package models

// VerdictStatus is the per-check result status.
type VerdictStatus string

const (
	VerdictPass               VerdictStatus = "pass"
	VerdictFail               VerdictStatus = "fail"
	VerdictNeedsClarification VerdictStatus = "needs_clarification"
)

// FailureReason classifies a failing verdict. The orchestrator's
// aggregation rule keys off this, not off the check name.
type FailureReason string

const (
	ReasonSecurity       FailureReason = "security"
	ReasonSchemaMismatch FailureReason = "schema_mismatch"
	ReasonIntentUnclear  FailureReason = "intent_unclear"
)

// CheckVerdict is the immutable result of a single validation check.
// Each check produces exactly one per invocation.
type CheckVerdict struct {
	Check  string
	Status VerdictStatus
	Reason FailureReason
	Detail string
}

// Pass builds a passing verdict for the named check.
func Pass(check string) CheckVerdict {
	return CheckVerdict{Check: check, Status: VerdictPass}
}

// Fail builds a failing verdict with a reason and detail.
func Fail(check string, reason FailureReason, detail string) CheckVerdict {
	return CheckVerdict{Check: check, Status: VerdictFail, Reason: reason, Detail: detail}
}

// NeedsClarification builds a clarification verdict.
func NeedsClarification(check string, detail string) CheckVerdict {
	return CheckVerdict{Check: check, Status: VerdictNeedsClarification, Reason: ReasonIntentUnclear, Detail: detail}
}

// ComplexityClass partitions candidates by structural complexity.
type ComplexityClass string

const (
	ComplexitySimple  ComplexityClass = "simple"
	ComplexityMedium  ComplexityClass = "medium"
	ComplexityComplex ComplexityClass = "complex"
)

// ValidationStrategy selects how the orchestrator runs the checks.
type ValidationStrategy string

const (
	StrategyMinimal    ValidationStrategy = "minimal"
	StrategySequential ValidationStrategy = "sequential"
	StrategyConcurrent ValidationStrategy = "concurrent"
)

// Outcome is the aggregated result over all verdicts for one candidate.
type Outcome string

const (
	OutcomeAccept  Outcome = "accept"
	OutcomeReject  Outcome = "reject"
	OutcomeClarify Outcome = "clarify"
)

// AggregatedVerdict is built only by the validation orchestrator.
// Verdicts are listed in fixed check order regardless of whether the
// checks ran sequentially or concurrently.
type AggregatedVerdict struct {
	Outcome    Outcome
	Verdicts   []CheckVerdict
	Complexity ComplexityClass
	Strategy   ValidationStrategy
	Clarity    *ClarityReport
}

// FirstFailure returns the highest-precedence failing verdict:
// security failures first, then schema/clarity, in check order.
func (a AggregatedVerdict) FirstFailure() (CheckVerdict, bool) {
	for _, v := range a.Verdicts {
		if v.Status == VerdictFail && v.Reason == ReasonSecurity {
			return v, true
		}
	}
	for _, v := range a.Verdicts {
		if v.Status != VerdictPass {
			return v, true
		}
	}
	return CheckVerdict{}, false
}
