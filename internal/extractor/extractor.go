// Package extractor implements the factor extractor (C4): it maps
// normalized text, the classifier's domain result, intent, and the
// originating event ID to the minimal reusable Factor list plus any
// MissingInfo questions worth asking.
//
// Detection is deliberately simple and auditable: a fixed table of
// per-FactorCode detectors (keyword, phrase, either, or a hand-written
// function for duration and safety), gated by confidence and by which
// domains are in scope for the turn, grounded on the same
// table-of-detectors idiom the classifier uses for domain scoring.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"complexity-engine/internal/taxonomy"
	"complexity-engine/internal/textnorm"
	"complexity-engine/internal/types"
)

const (
	minFactorConfidence = 0.6
	highConfidenceFloor = 0.8
)

type detectorFunc func(normalized string, tokens []string) []detection

// detectorTable lists every non-duration, non-safety FactorCode detector.
// Built once at package init and never mutated, the same discipline the
// classifier's phrase tables follow.
var detectorTable = []detectorFunc{
	keywordDetector(types.FactorSymptomPain, 0.7, words("pain", "ache", "aches", "aching", "sore")),
	keywordDetector(types.FactorSymptomHeadache, 0.7, words("headache", "headaches", "migraine")),
	keywordDetector(types.FactorSymptomNausea, 0.7, words("nausea", "nauseous", "queasy")),
	keywordDetector(types.FactorSymptomFever, 0.7, words("fever", "feverish", "temperature")),
	eitherDetector(
		phraseDetector(types.FactorSymptomFatigueBody, 0.85, []string{"worn out", "physically exhausted", "no energy at all"}),
		keywordDetector(types.FactorSymptomFatigueBody, 0.7, words("fatigue", "fatigued")),
	),
	eitherDetector(
		phraseDetector(types.FactorSymptomBreathlessness, 0.85, []string{"short of breath", "trouble breathing", "cant breathe", "cant catch my breath"}),
		keywordDetector(types.FactorSymptomBreathlessness, 0.7, words("breathless", "breathlessness")),
	),
	eitherDetector(
		phraseDetector(types.FactorSymptomDizziness, 0.85, []string{"feel dizzy", "room is spinning", "light headed", "lightheaded"}),
		keywordDetector(types.FactorSymptomDizziness, 0.7, words("dizzy", "dizziness")),
	),
	keywordDetector(types.FactorSymptomRash, 0.7, words("rash", "hives", "welts")),

	keywordDetector(types.FactorMedicalExistingCondition, 0.7, words("asthma", "diabetes", "arthritis", "condition")),
	phraseDetector(types.FactorMedicalMedicationUse, 0.75, []string{"take medication", "on medication", "taking pills", "my medication"}),
	phraseDetector(types.FactorMedicalRecentDiagnosis, 0.75, []string{"recently diagnosed", "just diagnosed", "new diagnosis"}),
	keywordDetector(types.FactorMedicalPregnancy, 0.8, words("pregnant", "pregnancy")),

	eitherDetector(
		phraseDetector(types.FactorEmotionAnxietyStress, 0.8, []string{"so anxious", "very stressed", "stressed out"}),
		keywordDetector(types.FactorEmotionAnxietyStress, 0.7, words("anxious", "anxiety", "stressed", "stress")),
	),
	eitherDetector(
		phraseDetector(types.FactorEmotionLowMood, 0.8, []string{"low mood", "feeling down", "feeling low"}),
		keywordDetector(types.FactorEmotionLowMood, 0.7, words("depressed", "sad", "hopeless")),
	),
	phraseDetector(types.FactorEmotionPanic, 0.85, []string{"panic attack", "panicking", "feel panicked"}),

	keywordDetector(types.FactorCapacityFatigue, 0.7, words("tired", "exhausted", "drained")),
	eitherDetector(
		phraseDetector(types.FactorCapacityPoorSleep, 0.8, []string{"cant sleep", "trouble sleeping", "not sleeping"}),
		keywordDetector(types.FactorCapacityPoorSleep, 0.7, words("insomnia")),
	),
	phraseDetector(types.FactorCapacityLowFocus, 0.75, []string{"hard to focus", "cant concentrate", "trouble concentrating"}),

	phraseDetector(types.FactorAccessCostBarrier, 0.75, []string{"cant afford", "too expensive", "cant pay for"}),
	phraseDetector(types.FactorAccessAppointmentBarrier, 0.8, []string{"cant get an appointment", "waiting list", "waitlist", "no appointments"}),
	phraseDetector(types.FactorAccessTransportBarrier, 0.8, []string{"no transport", "no way to get there", "cant get to the"}),

	phraseDetector(types.FactorResourceFinancialStrain, 0.75, []string{"cant afford", "money is tight", "financial strain", "broke"}),
	phraseDetector(types.FactorResourceTimePressure, 0.75, []string{"no time", "too busy", "time is tight"}),
	phraseDetector(types.FactorResourceCaregivingLoad, 0.75, []string{"looking after", "caring for", "caregiving"}),

	keywordDetector(types.FactorEnvAirQualityExposure, 0.7, words("smoke", "smoky", "pollution", "bushfire")),

	phraseDetector(types.FactorSocialSupportLimited, 0.75, []string{"no one to help", "no support", "on my own", "all alone"}),

	eitherDetector(
		phraseDetector(types.FactorKnowledgeNeedsInformation, 0.7, []string{"want to know", "want to understand", "need information"}),
		keywordDetector(types.FactorKnowledgeNeedsInformation, 0.6, words("confused", "unsure")),
	),

	phraseDetector(types.FactorGoalSymptomRelief, 0.7, []string{"want it to stop", "want relief", "make it stop"}),
	phraseDetector(types.FactorGoalReassurance, 0.7, []string{"just want reassurance", "tell me its fine", "am i okay"}),
	phraseDetector(types.FactorGoalUnderstandCause, 0.7, []string{"want to know why", "whats causing", "what is causing"}),
}

var durationPattern = regexp.MustCompile(`\b(\d+|few|couple)\s+(day|days|week|weeks|month|months|year|years)\b`)

func durationDetector(normalized string, _ []string) []detection {
	var out []detection

	for _, p := range durationRecentPhrases {
		if strings.Contains(normalized, p) {
			out = append(out, detection{code: types.FactorDurationOnsetRecent, confidence: 0.75})
			break
		}
	}

	if m := durationPattern.FindStringSubmatch(normalized); m != nil {
		unit := m[2]
		if strings.HasPrefix(unit, "month") || strings.HasPrefix(unit, "year") {
			out = append(out, detection{code: types.FactorDurationMonthsPlus, confidence: 0.8})
		} else {
			out = append(out, detection{code: types.FactorDurationDaysWeeks, confidence: 0.75})
		}
	}

	for _, p := range durationRecurringPhrases {
		if strings.Contains(normalized, p) {
			out = append(out, detection{code: types.FactorPatternRecurring, confidence: 0.7})
			break
		}
	}

	return out
}

func safetyDetector(normalized string, _ []string) []detection {
	for _, p := range selfHarmPhrases {
		if strings.Contains(normalized, p) {
			return []detection{
				{code: types.FactorSafetySelfHarm, confidence: 0.95},
				{code: types.FactorSafetyRedFlag, confidence: 0.85},
			}
		}
	}
	for _, p := range redFlagPhrases {
		if strings.Contains(normalized, p) {
			return []detection{{code: types.FactorSafetyRedFlag, confidence: 0.95}}
		}
	}
	return nil
}

// allowedDomains computes the set of domains permitted to surface factors
// this turn: the primary and secondary tags, SAFETY_RISK always, and any
// domain implied by taxonomy.ImpliedDomains. When the primary tag is
// UNKNOWN_OTHER, every domain is allowed since the classifier had no
// confident read on scope.
func allowedDomains(domainResult *types.DomainResult) map[types.ComplexityDomain]struct{} {
	allowed := map[types.ComplexityDomain]struct{}{types.DomainSafetyRisk: {}}

	if domainResult.Primary.Domain == types.DomainUnknownOther {
		for _, d := range types.AllDomains {
			allowed[d] = struct{}{}
		}
		return allowed
	}

	allowed[domainResult.Primary.Domain] = struct{}{}
	for _, sec := range domainResult.Secondary {
		allowed[sec.Domain] = struct{}{}
	}
	for d := range allowed {
		for _, implied := range taxonomy.ImpliedDomains(d) {
			allowed[implied] = struct{}{}
		}
	}
	return allowed
}

// Extract runs the full extraction pipeline: normalize, run every
// detector, gate by confidence and domain scope, apply the
// ACCESS_COST_BARRIER contextual gate, dedup to the highest-confidence
// detection per code, emit MissingInfo, and assign Factor metadata and IDs.
func Extract(text string, domainResult *types.DomainResult, intent types.EventIntent, eventID string) *types.ExtractionResult {
	normalized := textnorm.Normalize(text)
	tokens := textnorm.Tokens(normalized)
	allowed := allowedDomains(domainResult)

	best := make(map[types.FactorCode]float64)
	weakSignalSeen := false
	apply := func(d detection) {
		if d.confidence < minFactorConfidence {
			weakSignalSeen = true
			return
		}
		applyDetection(best, d, allowed)
	}
	for _, det := range detectorTable {
		for _, d := range det(normalized, tokens) {
			apply(d)
		}
	}
	for _, d := range durationDetector(normalized, tokens) {
		apply(d)
	}
	for _, d := range safetyDetector(normalized, tokens) {
		apply(d)
	}

	if _, ok := best[types.FactorAccessCostBarrier]; ok && !hasCareKeyword(tokens) {
		delete(best, types.FactorAccessCostBarrier)
	}

	factors := buildFactors(best, eventID)
	missing := missingInfoFor(factors, normalized, intent, weakSignalSeen)

	if len(missing) > 0 {
		factors = dropLoneKnowledgeFactor(factors, missing)
	}

	return &types.ExtractionResult{Factors: factors, MissingInfo: missing}
}

func applyDetection(best map[types.FactorCode]float64, d detection, allowed map[types.ComplexityDomain]struct{}) {
	if d.confidence < minFactorConfidence {
		return
	}
	meta, ok := taxonomy.Factor(d.code)
	if !ok {
		return
	}
	if _, domainAllowed := allowed[meta.Domain]; !domainAllowed {
		return
	}
	if existing, ok := best[d.code]; !ok || d.confidence > existing {
		best[d.code] = d.confidence
	}
}

func hasCareKeyword(tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := careKeywords[tok]; ok {
			return true
		}
	}
	return false
}

func buildFactors(best map[types.FactorCode]float64, eventID string) []*types.Factor {
	factors := make([]*types.Factor, 0, len(best))
	for code, confidence := range best {
		meta, ok := taxonomy.Factor(code)
		if !ok {
			continue
		}
		factors = append(factors, &types.Factor{
			ID:            fmt.Sprintf("factor_%s", uuid.NewString()),
			Domain:        meta.Domain,
			Type:          meta.Type,
			Code:          code,
			Value:         types.BoolValue(true),
			Confidence:    confidence,
			TimeHorizon:   meta.DefaultHorizon,
			Modifiability: meta.Modifiability,
			SourceEventID: eventID,
		})
	}
	return factors
}

// missingInfoFor applies the two emission rules: a symptom was reported
// without any duration signal, and the extraction came back empty (or
// solely a KNOWLEDGE_NEEDS_INFORMATION factor) with either a sub-threshold
// detection or an ambiguity marker in the user's own wording.
func missingInfoFor(factors []*types.Factor, normalized string, intent types.EventIntent, weakSignalSeen bool) []*types.MissingInfo {
	var out []*types.MissingInfo

	hasSymptom, hasDuration := false, false
	for _, f := range factors {
		if f.Domain == types.DomainSymptomsBodySignals {
			hasSymptom = true
		}
		if f.Domain == types.DomainDurationPattern {
			hasDuration = true
		}
	}
	if hasSymptom && !hasDuration && intent != types.IntentFollowUp {
		out = append(out, &types.MissingInfo{
			Key:      "duration",
			Question: "How long has this been going on?",
			Domain:   types.DomainDurationPattern,
			Priority: types.MissingInfoHigh,
		})
	}

	onlyKnowledgeFactor := len(factors) == 1 && factors[0].Code == types.FactorKnowledgeNeedsInformation
	weakExtraction := len(factors) == 0 || onlyKnowledgeFactor

	ambiguous := false
	for _, m := range ambiguityMarkers {
		if strings.Contains(normalized, m) {
			ambiguous = true
			break
		}
	}
	if weakExtraction && (weakSignalSeen || ambiguous) {
		out = append(out, &types.MissingInfo{
			Key:      "clarify",
			Question: "What feels most important to focus on right now?",
			Domain:   types.DomainUnknownOther,
			Priority: types.MissingInfoMedium,
		})
	}

	return out
}

// dropLoneKnowledgeFactor removes a KNOWLEDGE_NEEDS_INFORMATION factor when
// it is the only factor extracted and a clarify question is already being
// asked, since the two otherwise say the same thing twice.
func dropLoneKnowledgeFactor(factors []*types.Factor, missing []*types.MissingInfo) []*types.Factor {
	if len(factors) != 1 || factors[0].Code != types.FactorKnowledgeNeedsInformation {
		return factors
	}
	for _, m := range missing {
		if m.Key == "clarify" {
			return nil
		}
	}
	return factors
}
