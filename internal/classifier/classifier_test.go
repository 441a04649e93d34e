package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/types"
)

func TestClassify_SafetyOverride(t *testing.T) {
	result := Classify("Severe chest pain and trouble breathing.", types.IntentAsk, nil)
	require.NotNil(t, result)
	assert.Equal(t, types.DomainSafetyRisk, result.Primary.Domain)
	assert.GreaterOrEqual(t, result.Primary.Confidence, 0.8)
}

func TestClassify_SafetyOverride_KeywordOnly(t *testing.T) {
	result := Classify("I think I am having a seizure.", types.IntentAsk, nil)
	assert.Equal(t, types.DomainSafetyRisk, result.Primary.Domain)
}

func TestClassify_NoSignal_FallsBackToUnknown(t *testing.T) {
	result := Classify("xyz qwe zzz", types.IntentAsk, nil)
	assert.Equal(t, types.DomainUnknownOther, result.Primary.Domain)
	assert.Equal(t, 0.0, result.Primary.Confidence)
	assert.Empty(t, result.Secondary)
}

func TestClassify_SymptomDominatesSecondary(t *testing.T) {
	result := Classify("I've got a headache.", types.IntentAsk, nil)
	assert.Equal(t, types.DomainSymptomsBodySignals, result.Primary.Domain)
	assert.LessOrEqual(t, len(result.Secondary), 2)
	for _, sec := range result.Secondary {
		assert.NotEqual(t, result.Primary.Domain, sec.Domain)
	}
}

func TestClassify_Invariant_PrimaryConfidenceInRange(t *testing.T) {
	for _, text := range []string{
		"I've got a headache.",
		"I can't afford the GP.",
		"For weeks.",
		"xyz qwe zzz",
		"Severe chest pain and trouble breathing.",
	} {
		result := Classify(text, types.IntentAsk, nil)
		assert.GreaterOrEqual(t, result.Primary.Confidence, 0.0, text)
		assert.LessOrEqual(t, result.Primary.Confidence, 1.0, text)
		assert.LessOrEqual(t, len(result.Secondary), 2, text)
		for _, sec := range result.Secondary {
			assert.NotEqual(t, result.Primary.Domain, sec.Domain, text)
		}
	}
}

func TestClassify_FollowUpBiasesTowardPreviousQuestionDomain(t *testing.T) {
	prevQuestion := "How long has this been going on?"
	result := Classify("For weeks.", types.IntentFollowUp, &prevQuestion)
	assert.Equal(t, types.DomainDurationPattern, result.Primary.Domain)
}

func TestClassify_LowConfidenceFallsBackToUnknownOther(t *testing.T) {
	// Four single-keyword hits split evenly across four domains: each
	// domain's confidence is 0.25, below the low-confidence floor.
	result := Classify("confused tired alone busy", types.IntentAsk, nil)
	assert.Equal(t, types.DomainUnknownOther, result.Primary.Domain)
}
