// Package snapshot implements the state snapshot builder (C6): it reduces
// an event, its domain result, the extracted factors, and the current
// profile into the bounded risk/friction/uncertainty bands and the bullet
// list a turn routes and responds from.
package snapshot

import (
	"sort"

	"complexity-engine/internal/taxonomy"
	"complexity-engine/internal/types"
)

var highRiskSymptoms = map[types.FactorCode]struct{}{
	types.FactorSymptomBreathlessness: {},
	types.FactorSymptomDizziness:      {},
}

var mediumRiskSignals = map[types.FactorCode]struct{}{
	types.FactorSymptomPain:          {},
	types.FactorSymptomHeadache:      {},
	types.FactorSymptomNausea:        {},
	types.FactorEmotionPanic:         {},
	types.FactorEmotionAnxietyStress: {},
}

var highFrictionCodes = map[types.FactorCode]struct{}{
	types.FactorAccessCostBarrier:        {},
	types.FactorAccessAppointmentBarrier: {},
	types.FactorResourceTimePressure:     {},
	types.FactorResourceCaregivingLoad:   {},
	types.FactorCapacityFatigue:          {},
	types.FactorCapacityPoorSleep:        {},
}

var mediumFrictionCodes = map[types.FactorCode]struct{}{
	types.FactorResourceFinancialStrain: {},
	types.FactorCapacityLowFocus:        {},
	types.FactorSocialSupportLimited:    {},
}

// whatMattersPriority ranks domains for the what-matters bullet ordering:
// symptoms > resources > access > capacity > mental > duration > medical >
// environment > social > knowledge > goals > unknown.
var whatMattersPriority = map[types.ComplexityDomain]int{
	types.DomainSymptomsBodySignals:   0,
	types.DomainResourcesConstraints:  1,
	types.DomainAccessToCare:          2,
	types.DomainCapacityEnergy:        3,
	types.DomainMentalEmotionalState:  4,
	types.DomainDurationPattern:       5,
	types.DomainMedicalContext:        6,
	types.DomainEnvironmentExposures:  7,
	types.DomainSocialSupportContext:  8,
	types.DomainKnowledgeBeliefsPrefs: 9,
	types.DomainGoalsIntent:           10,
	types.DomainUnknownOther:          11,
	types.DomainSafetyRisk:            -1,
}

const safetyCopy = "If you are in immediate danger, call 000 or seek urgent care."

// usedFactorBuffer accumulates factors consulted while computing bands, in
// the order consulted; add keeps only the first entry for each code.
type usedFactorBuffer struct {
	seen  map[types.FactorCode]struct{}
	items []types.UsedFactorSummary
}

func newUsedFactorBuffer() *usedFactorBuffer {
	return &usedFactorBuffer{seen: make(map[types.FactorCode]struct{})}
}

func (b *usedFactorBuffer) add(f *types.Factor) {
	if _, ok := b.seen[f.Code]; ok {
		return
	}
	b.seen[f.Code] = struct{}{}
	b.items = append(b.items, types.UsedFactorSummary{Code: f.Code, Domain: f.Domain, Confidence: f.Confidence})
}

// Build runs the full ordered band computation from the component design,
// collecting used factors as each band consults them.
func Build(event *types.Event, domainResult *types.DomainResult, extracted *types.ExtractionResult, profile *types.ComplexityProfile) *types.StateSnapshot {
	buf := newUsedFactorBuffer()
	factors := extracted.Factors

	risk := riskBand(domainResult, factors, buf)
	uncertainty := uncertaintyBand(factors, extracted.MissingInfo)
	friction := frictionBand(factors, buf)
	whatMatters := whatMattersBullets(factors)

	snap := &types.StateSnapshot{
		EventID:         event.ID,
		CreatedAt:       event.CreatedAt,
		Intent:          event.Intent,
		RiskBand:        risk,
		FrictionBand:    friction,
		UncertaintyBand: uncertainty,
		WhatMatters:     whatMatters,
		UsedFactors:     buf.items,
	}
	snap.NextActionKind, snap.FollowupQuestion, snap.SafetyCopy = nextAction(snap, event, extracted.MissingInfo)
	return snap
}

func riskBand(domainResult *types.DomainResult, factors []*types.Factor, buf *usedFactorBuffer) types.RiskBand {
	safetyOverride := domainResult.Primary.Domain == types.DomainSafetyRisk
	if !safetyOverride {
		for _, sec := range domainResult.Secondary {
			if sec.Domain == types.DomainSafetyRisk {
				safetyOverride = true
				break
			}
		}
	}

	// The safety factors feed the used-factors buffer whenever they are
	// present, independent of which path (domain-level override or the
	// factor check below) actually decided the urgent band — otherwise a
	// self-harm turn whose domain is already tagged SAFETY_RISK would
	// never surface SAFETY_SELF_HARM in UsedFactors.
	for _, f := range factors {
		if f.Code == types.FactorSafetyRedFlag || f.Code == types.FactorSafetySelfHarm {
			buf.add(f)
			safetyOverride = true
		}
	}
	if safetyOverride {
		return types.RiskUrgent
	}

	high := false
	for _, f := range factors {
		if _, ok := highRiskSymptoms[f.Code]; ok && f.Confidence >= 0.8 {
			buf.add(f)
			high = true
		}
	}
	if high {
		return types.RiskHigh
	}

	medium := false
	for _, f := range factors {
		if _, ok := mediumRiskSignals[f.Code]; ok {
			buf.add(f)
			medium = true
		}
	}
	if medium {
		return types.RiskMedium
	}

	return types.RiskLow
}

func uncertaintyBand(factors []*types.Factor, missing []*types.MissingInfo) types.UncertaintyBand {
	if len(missing) > 0 {
		return types.UncertaintyHigh
	}
	if len(factors) == 0 {
		return types.UncertaintyMedium
	}
	total := 0.0
	for _, f := range factors {
		total += f.Confidence
	}
	if total/float64(len(factors)) >= 0.7 {
		return types.UncertaintyLow
	}
	return types.UncertaintyMedium
}

func frictionBand(factors []*types.Factor, buf *usedFactorBuffer) types.FrictionBand {
	high := false
	for _, f := range factors {
		if _, ok := highFrictionCodes[f.Code]; ok && f.Confidence >= 0.75 {
			buf.add(f)
			high = true
		}
	}
	if high {
		return types.FrictionHigh
	}

	medium := false
	for _, f := range factors {
		if _, ok := mediumFrictionCodes[f.Code]; ok && f.Confidence >= 0.6 {
			buf.add(f)
			medium = true
		}
	}
	if medium {
		return types.FrictionMedium
	}

	return types.FrictionLow
}

func whatMattersBullets(factors []*types.Factor) []string {
	if len(factors) == 0 {
		return []string{"It is not clear yet what is most important."}
	}

	ordered := make([]*types.Factor, len(factors))
	copy(ordered, factors)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := whatMattersPriority[ordered[i].Domain], whatMattersPriority[ordered[j].Domain]
		if pi != pj {
			return pi < pj
		}
		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	if len(ordered) > 3 {
		ordered = ordered[:3]
	}
	bullets := make([]string, 0, len(ordered))
	for _, f := range ordered {
		if bullet := taxonomy.BulletCopy(f.Code); bullet != "" {
			bullets = append(bullets, bullet)
		}
	}
	if len(bullets) == 0 {
		return []string{"It is not clear yet what is most important."}
	}
	return bullets
}

func nextAction(snap *types.StateSnapshot, event *types.Event, missing []*types.MissingInfo) (types.NextActionKind, *string, *string) {
	if snap.RiskBand == types.RiskUrgent {
		return types.ActionSafetyEscalation, nil, types.Ptr(safetyCopy)
	}
	if event.Intent == types.IntentLogOnly {
		return types.ActionLogOnly, nil, nil
	}
	if snap.UncertaintyBand == types.UncertaintyHigh && len(missing) > 0 {
		question := highestPriorityMissingInfo(missing).Question
		return types.ActionAskFollowup, types.Ptr(question), nil
	}
	return types.ActionAnswer, nil, nil
}

var missingInfoPriorityRank = map[types.MissingInfoPriority]int{
	types.MissingInfoHigh:   0,
	types.MissingInfoMedium: 1,
	types.MissingInfoLow:    2,
}

func highestPriorityMissingInfo(missing []*types.MissingInfo) *types.MissingInfo {
	best := missing[0]
	for _, m := range missing[1:] {
		if missingInfoPriorityRank[m.Priority] < missingInfoPriorityRank[best.Priority] {
			best = m
		}
	}
	return best
}
