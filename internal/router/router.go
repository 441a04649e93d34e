// Package router implements the next-step router (C7): a fixed,
// first-match-wins decision tree over a StateSnapshot that picks the
// concrete recommendation surfaced to the user.
package router

import (
	"complexity-engine/internal/types"
)

const safetyNetCopy = "If you feel unsafe or symptoms get worse, call 000 or seek urgent care."

// Route applies the 8-rule decision tree from the component design,
// first match wins.
func Route(snap *types.StateSnapshot) *types.RoutedStep {
	for _, f := range snap.UsedFactors {
		if f.Code == types.FactorSafetySelfHarm {
			return &types.RoutedStep{
				Category:  types.StepCrisisSupport,
				Rationale: "A self-harm risk factor was detected.",
				SafetyNet: types.Ptr(safetyNetCopy),
			}
		}
	}

	if snap.NextActionKind == types.ActionSafetyEscalation || snap.RiskBand == types.RiskUrgent {
		return &types.RoutedStep{
			Category:  types.StepUrgentCareED,
			Rationale: "Risk is urgent.",
			SafetyNet: types.Ptr(safetyNetCopy),
		}
	}

	if snap.UncertaintyBand == types.UncertaintyHigh && snap.NextActionKind == types.ActionAskFollowup {
		return &types.RoutedStep{
			Category:  types.StepSelfCare,
			Rationale: "A follow-up question needs answering before routing further.",
		}
	}

	if snap.RiskBand == types.RiskHigh && snap.FrictionBand == types.FrictionHigh {
		return &types.RoutedStep{
			Category:  types.StepUrgentCareED,
			Rationale: "Risk is high and friction to ordinary care is also high.",
			SafetyNet: types.Ptr(safetyNetCopy),
		}
	}

	if snap.RiskBand == types.RiskHigh {
		return &types.RoutedStep{Category: types.StepGPTelehealth, Rationale: "Risk is high."}
	}

	if snap.RiskBand == types.RiskMedium && snap.FrictionBand == types.FrictionHigh {
		return &types.RoutedStep{Category: types.StepGPTelehealth, Rationale: "Risk is medium and friction to ordinary care is high."}
	}

	if snap.RiskBand == types.RiskMedium {
		return &types.RoutedStep{Category: types.StepPharmacist, Rationale: "Risk is medium."}
	}

	return &types.RoutedStep{Category: types.StepSelfCare, Rationale: "No elevated risk or friction signals."}
}
