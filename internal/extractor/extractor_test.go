package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/classifier"
	"complexity-engine/internal/types"
)

func factorCodes(factors []*types.Factor) []types.FactorCode {
	codes := make([]types.FactorCode, 0, len(factors))
	for _, f := range factors {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestExtract_SymptomWithoutDuration_AsksDurationFollowup(t *testing.T) {
	text := "I've got a headache."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_1")

	assert.Contains(t, factorCodes(result.Factors), types.FactorSymptomHeadache)
	require.Len(t, result.MissingInfo, 1)
	assert.Equal(t, "duration", result.MissingInfo[0].Key)
	assert.Equal(t, types.MissingInfoHigh, result.MissingInfo[0].Priority)
	assert.Equal(t, "How long has this been going on?", result.MissingInfo[0].Question)
}

func TestExtract_DurationPresent_NoFollowupAsked(t *testing.T) {
	text := "I've had a headache for 3 days."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_1")

	assert.Contains(t, factorCodes(result.Factors), types.FactorSymptomHeadache)
	assert.Contains(t, factorCodes(result.Factors), types.FactorDurationDaysWeeks)
	for _, m := range result.MissingInfo {
		assert.NotEqual(t, "duration", m.Key)
	}
}

func TestExtract_FollowUpIntentSuppressesDurationQuestion(t *testing.T) {
	text := "Still got the headache."
	domainResult := classifier.Classify(text, types.IntentFollowUp, nil)
	result := Extract(text, domainResult, types.IntentFollowUp, "evt_2")

	for _, m := range result.MissingInfo {
		assert.NotEqual(t, "duration", m.Key)
	}
}

func TestExtract_AmbiguousInputWithNoFactors_AsksClarify(t *testing.T) {
	text := "I'm not sure what's going on."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_3")

	require.Len(t, result.MissingInfo, 1)
	assert.Equal(t, "clarify", result.MissingInfo[0].Key)
	assert.Equal(t, types.MissingInfoMedium, result.MissingInfo[0].Priority)
	assert.Equal(t, "What feels most important to focus on right now?", result.MissingInfo[0].Question)
}

func TestExtract_AmbiguityMarkerWithRealFactor_DoesNotAskClarify(t *testing.T) {
	// A genuine SYMPTOM_PAIN factor is present, so the ambiguity marker
	// ("not sure") must not spuriously trigger the clarify question.
	text := "I have sharp pain and I'm not sure what's going on."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_4")

	assert.Contains(t, factorCodes(result.Factors), types.FactorSymptomPain)
	for _, m := range result.MissingInfo {
		assert.NotEqual(t, "clarify", m.Key)
	}
}

func TestExtract_DurationRuleIgnoresUnrelatedAmbiguityMarker(t *testing.T) {
	// A real symptom factor makes the clarify rule's weak-extraction
	// precondition false, so an ambiguity marker elsewhere in the text
	// cannot trigger it; the duration rule fires on its own terms.
	text := "I've got a headache and I'm not sure what's going on."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_5")

	assert.Contains(t, factorCodes(result.Factors), types.FactorSymptomHeadache)
	keys := make([]string, 0, len(result.MissingInfo))
	for _, m := range result.MissingInfo {
		keys = append(keys, m.Key)
	}
	assert.Contains(t, keys, "duration")
	assert.NotContains(t, keys, "clarify")
}

func TestExtract_SafetyPhrase_ProducesSelfHarmAndRedFlag(t *testing.T) {
	text := "I want to kill myself."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_6")

	codes := factorCodes(result.Factors)
	assert.Contains(t, codes, types.FactorSafetySelfHarm)
	assert.Contains(t, codes, types.FactorSafetyRedFlag)
}

func TestExtract_AccessCostBarrier_GatedByCareKeyword(t *testing.T) {
	textNoCare := "I can't afford groceries."
	domainResult := classifier.Classify(textNoCare, types.IntentAsk, nil)
	result := Extract(textNoCare, domainResult, types.IntentAsk, "evt_7")
	assert.NotContains(t, factorCodes(result.Factors), types.FactorAccessCostBarrier)

	textWithCare := "I can't afford the GP."
	domainResult = classifier.Classify(textWithCare, types.IntentAsk, nil)
	result = Extract(textWithCare, domainResult, types.IntentAsk, "evt_8")
	assert.Contains(t, factorCodes(result.Factors), types.FactorAccessCostBarrier)
}

func TestExtract_AllFactorsMeetConfidenceFloor(t *testing.T) {
	text := "I've had a headache for three days and I can't afford the GP."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_9")
	for _, f := range result.Factors {
		assert.GreaterOrEqual(t, f.Confidence, minFactorConfidence)
	}
}

func TestExtract_DedupesToHighestConfidencePerCode(t *testing.T) {
	// "worn out" (phrase, 0.85) and "fatigue" (keyword, 0.7) both detect
	// SYMPTOM_FATIGUE_BODY; the either-detector already picks the phrase
	// first, so only one factor of that code should ever surface.
	text := "I feel completely worn out and fatigued."
	domainResult := classifier.Classify(text, types.IntentAsk, nil)
	result := Extract(text, domainResult, types.IntentAsk, "evt_10")

	count := 0
	for _, f := range result.Factors {
		if f.Code == types.FactorSymptomFatigueBody {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
