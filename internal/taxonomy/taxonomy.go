// Package taxonomy exposes the closed domain and factor-code tables that
// every other engine component looks up against: labels, priorities,
// override behavior, default time horizon/modifiability, canonical bullet
// copy, and UI chip labels.
//
// These tables are immutable package-level data, built once at init time
// rather than recomputed per turn, in keeping with the rest of the engine's
// build-static-data-once discipline (see internal/classifier and
// internal/extractor for the phrase tables built the same way).
package taxonomy

import (
	"fmt"

	"github.com/dominikbraun/graph"

	"complexity-engine/internal/types"
)

// DomainMeta is the immutable metadata attached to one ComplexityDomain.
type DomainMeta struct {
	Label            string
	Priority         int
	OverrideBehavior types.OverrideBehavior
}

// domainMeta is keyed by ComplexityDomain; priority 1 is safety, 13 is unknown.
var domainMeta = map[types.ComplexityDomain]DomainMeta{
	types.DomainSafetyRisk:            {"Safety risk", 1, types.OverridesAll},
	types.DomainSymptomsBodySignals:   {"Symptoms & body signals", 2, types.OverrideNone},
	types.DomainDurationPattern:       {"Duration & pattern", 3, types.OverrideNone},
	types.DomainMedicalContext:        {"Medical context", 4, types.OverrideNone},
	types.DomainMentalEmotionalState:  {"Mental & emotional state", 5, types.OverrideNone},
	types.DomainCapacityEnergy:        {"Capacity & energy", 6, types.OverrideNone},
	types.DomainAccessToCare:          {"Access to care", 7, types.OverrideNone},
	types.DomainResourcesConstraints:  {"Resources & constraints", 8, types.OverrideNone},
	types.DomainEnvironmentExposures:  {"Environment & exposures", 9, types.OverrideNone},
	types.DomainSocialSupportContext:  {"Social support context", 10, types.OverrideNone},
	types.DomainKnowledgeBeliefsPrefs: {"Knowledge, beliefs & preferences", 11, types.OverrideNone},
	types.DomainGoalsIntent:           {"Goals & intent", 12, types.OverrideNone},
	types.DomainUnknownOther:          {"Unknown / other", 13, types.OverrideNone},
}

// Domain returns the metadata for d. The zero value is returned, with ok
// false, for an unrecognized domain (a CorruptState condition for callers
// reading persisted rows).
func Domain(d types.ComplexityDomain) (DomainMeta, bool) {
	m, ok := domainMeta[d]
	return m, ok
}

// FactorMeta is the immutable metadata attached to one FactorCode.
type FactorMeta struct {
	Domain        types.ComplexityDomain
	Type          types.FactorType
	DefaultHorizon types.FactorTimeHorizon
	Modifiability  types.FactorModifiability
	BulletCopy     string
	ChipLabel      string
}

var factorMeta = map[types.FactorCode]FactorMeta{
	types.FactorSymptomPain: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityMedium,
		"You mentioned pain that may need attention.", "Pain",
	},
	types.FactorSymptomHeadache: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityMedium,
		"You mentioned a headache.", "Headache",
	},
	types.FactorSymptomNausea: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityMedium,
		"You mentioned nausea.", "Nausea",
	},
	types.FactorSymptomFever: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityMedium,
		"You mentioned a fever.", "Fever",
	},
	types.FactorSymptomFatigueBody: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityMedium,
		"You mentioned feeling physically worn down.", "Fatigue",
	},
	types.FactorSymptomBreathlessness: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityLow,
		"You mentioned trouble breathing.", "Breathlessness",
	},
	types.FactorSymptomDizziness: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityLow,
		"You mentioned dizziness.", "Dizziness",
	},
	types.FactorSymptomRash: {
		types.DomainSymptomsBodySignals, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityMedium,
		"You mentioned a rash.", "Rash",
	},

	types.FactorDurationOnsetRecent: {
		types.DomainDurationPattern, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityUnknown,
		"This started recently.", "Recent onset",
	},
	types.FactorDurationDaysWeeks: {
		types.DomainDurationPattern, types.FactorTypeChance, types.HorizonChronic, types.ModifiabilityUnknown,
		"This has been going on for days to weeks.", "Days to weeks",
	},
	types.FactorDurationMonthsPlus: {
		types.DomainDurationPattern, types.FactorTypeChance, types.HorizonLifeCourse, types.ModifiabilityUnknown,
		"This has been going on for months or longer.", "Months or more",
	},
	types.FactorPatternRecurring: {
		types.DomainDurationPattern, types.FactorTypeChance, types.HorizonChronic, types.ModifiabilityUnknown,
		"This tends to come back.", "Recurring pattern",
	},

	types.FactorMedicalExistingCondition: {
		types.DomainMedicalContext, types.FactorTypeChance, types.HorizonChronic, types.ModifiabilityLow,
		"You mentioned an existing medical condition.", "Existing condition",
	},
	types.FactorMedicalMedicationUse: {
		types.DomainMedicalContext, types.FactorTypeChoice, types.HorizonChronic, types.ModifiabilityMedium,
		"You mentioned taking medication.", "On medication",
	},
	types.FactorMedicalRecentDiagnosis: {
		types.DomainMedicalContext, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityLow,
		"You mentioned a recent diagnosis.", "Recent diagnosis",
	},
	types.FactorMedicalPregnancy: {
		types.DomainMedicalContext, types.FactorTypeChance, types.HorizonLifeCourse, types.ModifiabilityLow,
		"You mentioned pregnancy.", "Pregnancy",
	},

	types.FactorEmotionAnxietyStress: {
		types.DomainMentalEmotionalState, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityMedium,
		"You mentioned feeling anxious or stressed.", "Anxiety / stress",
	},
	types.FactorEmotionLowMood: {
		types.DomainMentalEmotionalState, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityMedium,
		"You mentioned feeling low.", "Low mood",
	},
	types.FactorEmotionPanic: {
		types.DomainMentalEmotionalState, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityLow,
		"You mentioned feeling panicked.", "Panic",
	},

	types.FactorCapacityFatigue: {
		types.DomainCapacityEnergy, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityMedium,
		"You mentioned low energy.", "Low energy",
	},
	types.FactorCapacityPoorSleep: {
		types.DomainCapacityEnergy, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityMedium,
		"You mentioned poor sleep.", "Poor sleep",
	},
	types.FactorCapacityLowFocus: {
		types.DomainCapacityEnergy, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityMedium,
		"You mentioned trouble focusing.", "Low focus",
	},

	types.FactorAccessCostBarrier: {
		types.DomainAccessToCare, types.FactorTypeConstrainedChoice, types.HorizonUnknown, types.ModifiabilityLow,
		"Cost is making it harder to get care.", "Cost barrier",
	},
	types.FactorAccessAppointmentBarrier: {
		types.DomainAccessToCare, types.FactorTypeConstrainedChoice, types.HorizonUnknown, types.ModifiabilityLow,
		"Getting an appointment is a barrier.", "Appointment barrier",
	},
	types.FactorAccessTransportBarrier: {
		types.DomainAccessToCare, types.FactorTypeConstrainedChoice, types.HorizonUnknown, types.ModifiabilityLow,
		"Getting there is a barrier.", "Transport barrier",
	},

	types.FactorResourceFinancialStrain: {
		types.DomainResourcesConstraints, types.FactorTypeConstrainedChoice, types.HorizonUnknown, types.ModifiabilityLow,
		"Money is tight right now.", "Financial strain",
	},
	types.FactorResourceTimePressure: {
		types.DomainResourcesConstraints, types.FactorTypeConstrainedChoice, types.HorizonUnknown, types.ModifiabilityLow,
		"Time is tight right now.", "Time pressure",
	},
	types.FactorResourceCaregivingLoad: {
		types.DomainResourcesConstraints, types.FactorTypeConstrainedChoice, types.HorizonChronic, types.ModifiabilityLow,
		"You're carrying caregiving responsibilities.", "Caregiving load",
	},

	types.FactorSafetyRedFlag: {
		types.DomainSafetyRisk, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityLow,
		"You mentioned something that may need urgent attention.", "Red flag",
	},
	types.FactorSafetySelfHarm: {
		types.DomainSafetyRisk, types.FactorTypeChance, types.HorizonAcute, types.ModifiabilityLow,
		"You mentioned thoughts of self-harm.", "Self-harm risk",
	},

	types.FactorEnvAirQualityExposure: {
		types.DomainEnvironmentExposures, types.FactorTypeChance, types.HorizonUnknown, types.ModifiabilityLow,
		"You mentioned an environmental exposure.", "Air quality exposure",
	},

	types.FactorSocialSupportLimited: {
		types.DomainSocialSupportContext, types.FactorTypeConstrainedChoice, types.HorizonChronic, types.ModifiabilityLow,
		"You mentioned limited support around you.", "Limited support",
	},

	types.FactorKnowledgeNeedsInformation: {
		types.DomainKnowledgeBeliefsPrefs, types.FactorTypeChoice, types.HorizonUnknown, types.ModifiabilityHigh,
		"You're looking for more information.", "Needs information",
	},

	types.FactorGoalSymptomRelief: {
		types.DomainGoalsIntent, types.FactorTypeChoice, types.HorizonUnknown, types.ModifiabilityHigh,
		"Your goal is symptom relief.", "Wants relief",
	},
	types.FactorGoalReassurance: {
		types.DomainGoalsIntent, types.FactorTypeChoice, types.HorizonUnknown, types.ModifiabilityHigh,
		"Your goal is reassurance.", "Wants reassurance",
	},
	types.FactorGoalUnderstandCause: {
		types.DomainGoalsIntent, types.FactorTypeChoice, types.HorizonUnknown, types.ModifiabilityHigh,
		"Your goal is understanding the cause.", "Wants to understand cause",
	},
}

// Factor returns the metadata for code. ok is false for an unrecognized
// code (a CorruptState condition for callers reading persisted rows).
func Factor(code types.FactorCode) (FactorMeta, bool) {
	m, ok := factorMeta[code]
	return m, ok
}

// BulletCopy returns the canonical one-line explanation for code, or "" if
// code is unrecognized.
func BulletCopy(code types.FactorCode) string {
	if m, ok := factorMeta[code]; ok {
		return m.BulletCopy
	}
	return ""
}

// ChipLabel returns the canonical UI chip label for code, or "" if code is
// unrecognized.
func ChipLabel(code types.FactorCode) string {
	if m, ok := factorMeta[code]; ok {
		return m.ChipLabel
	}
	return ""
}

// domainGraph is a directed graph over ComplexityDomain values expressing
// two kinds of edges the extractor consults when computing allowed domains:
// override edges (SAFETY_RISK reaches every other domain, mirroring its
// OVERRIDES_ALL behavior) and implication edges (a body-signal report
// implies duration/pattern is also in scope). Built once at package init,
// reused read-only thereafter.
var domainGraph graph.Graph[types.ComplexityDomain, types.ComplexityDomain]

func init() {
	g := graph.New(func(d types.ComplexityDomain) types.ComplexityDomain { return d }, graph.Directed())
	for _, d := range types.AllDomains {
		if err := g.AddVertex(d); err != nil {
			panic(fmt.Sprintf("taxonomy: add vertex %s: %v", d, err))
		}
	}
	for _, d := range types.AllDomains {
		if d == types.DomainSafetyRisk {
			continue
		}
		if err := g.AddEdge(types.DomainSafetyRisk, d); err != nil {
			panic(fmt.Sprintf("taxonomy: add override edge: %v", err))
		}
	}
	if err := g.AddEdge(types.DomainSymptomsBodySignals, types.DomainDurationPattern); err != nil {
		panic(fmt.Sprintf("taxonomy: add implication edge: %v", err))
	}
	domainGraph = g
}

// ImpliedDomains returns the domains reachable from d via implication edges
// (excluding the safety override edges, which the extractor already
// accounts for by always allowing SAFETY_RISK). Only direct neighbors are
// returned; the implication graph is intentionally shallow.
func ImpliedDomains(d types.ComplexityDomain) []types.ComplexityDomain {
	if d != types.DomainSymptomsBodySignals {
		return nil
	}
	adj, err := domainGraph.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []types.ComplexityDomain
	for target := range adj[d] {
		if target != types.DomainSafetyRisk {
			out = append(out, target)
		}
	}
	return out
}
