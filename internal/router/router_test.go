package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/types"
)

func baseSnapshot() *types.StateSnapshot {
	return &types.StateSnapshot{
		RiskBand:        types.RiskLow,
		FrictionBand:    types.FrictionLow,
		UncertaintyBand: types.UncertaintyLow,
		NextActionKind:  types.ActionAnswer,
	}
}

func TestRoute_SelfHarmFactorTakesPriorityOverEverything(t *testing.T) {
	snap := baseSnapshot()
	snap.RiskBand = types.RiskLow
	snap.UsedFactors = []types.UsedFactorSummary{{Code: types.FactorSafetySelfHarm, Domain: types.DomainSafetyRisk, Confidence: 0.95}}

	step := Route(snap)
	require.NotNil(t, step)
	assert.Equal(t, types.StepCrisisSupport, step.Category)
	require.NotNil(t, step.SafetyNet)
}

func TestRoute_UrgentRiskWithoutSelfHarmFactor_RoutesToED(t *testing.T) {
	snap := baseSnapshot()
	snap.RiskBand = types.RiskUrgent
	snap.NextActionKind = types.ActionSafetyEscalation

	step := Route(snap)
	assert.Equal(t, types.StepUrgentCareED, step.Category)
	require.NotNil(t, step.SafetyNet)
}

func TestRoute_AskFollowupUnderHighUncertainty_RoutesToSelfCare(t *testing.T) {
	snap := baseSnapshot()
	snap.UncertaintyBand = types.UncertaintyHigh
	snap.NextActionKind = types.ActionAskFollowup

	step := Route(snap)
	assert.Equal(t, types.StepSelfCare, step.Category)
	assert.Nil(t, step.SafetyNet)
}

func TestRoute_HighRiskHighFriction_RoutesToED(t *testing.T) {
	snap := baseSnapshot()
	snap.RiskBand = types.RiskHigh
	snap.FrictionBand = types.FrictionHigh

	step := Route(snap)
	assert.Equal(t, types.StepUrgentCareED, step.Category)
}

func TestRoute_HighRiskLowFriction_RoutesToTelehealth(t *testing.T) {
	snap := baseSnapshot()
	snap.RiskBand = types.RiskHigh
	snap.FrictionBand = types.FrictionLow

	step := Route(snap)
	assert.Equal(t, types.StepGPTelehealth, step.Category)
}

func TestRoute_MediumRiskHighFriction_RoutesToTelehealth(t *testing.T) {
	snap := baseSnapshot()
	snap.RiskBand = types.RiskMedium
	snap.FrictionBand = types.FrictionHigh

	step := Route(snap)
	assert.Equal(t, types.StepGPTelehealth, step.Category)
}

func TestRoute_MediumRiskLowFriction_RoutesToPharmacist(t *testing.T) {
	snap := baseSnapshot()
	snap.RiskBand = types.RiskMedium
	snap.FrictionBand = types.FrictionLow

	step := Route(snap)
	assert.Equal(t, types.StepPharmacist, step.Category)
}

func TestRoute_NoElevatedSignals_RoutesToSelfCare(t *testing.T) {
	snap := baseSnapshot()

	step := Route(snap)
	assert.Equal(t, types.StepSelfCare, step.Category)
	assert.Nil(t, step.SafetyNet)
}

func TestRoute_SelfHarmFactorBeatsUrgentRiskRule(t *testing.T) {
	// Rule 1 (crisis_support) must win even when rule 2's urgent-risk
	// condition is also true, proving first-match-wins ordering.
	snap := baseSnapshot()
	snap.RiskBand = types.RiskUrgent
	snap.NextActionKind = types.ActionSafetyEscalation
	snap.UsedFactors = []types.UsedFactorSummary{{Code: types.FactorSafetySelfHarm, Domain: types.DomainSafetyRisk, Confidence: 0.95}}

	step := Route(snap)
	assert.Equal(t, types.StepCrisisSupport, step.Category)
}
