// Package classifier implements the domain classifier (C3): it maps input
// text plus intent, and optionally a prior follow-up question, to a primary
// domain tag with up to two secondary tags and confidences.
//
// The classifier is pure: no I/O, deterministic for a given input, grounded
// on the teacher's priority-ordered detector pattern in
// internal/reasoning/problem_classifier.go but reworked from a
// first-match-wins detector chain into a scored multi-domain tagger, since
// the specification calls for confidences and secondary tags rather than a
// single winning category.
package classifier

import (
	"sort"
	"strings"

	"complexity-engine/internal/taxonomy"
	"complexity-engine/internal/textnorm"
	"complexity-engine/internal/types"
)

const (
	safetyOverrideConfidence = 0.9
	followUpBiasBoost        = 1.5
	followUpBiasThreshold    = 0.4
	lowConfidenceThreshold   = 0.6
)

// Classify runs the full 7-step algorithm from the component design:
// normalize, safety override, per-domain scoring, follow-up bias,
// confidence normalization, tagging with tie-break, and low-confidence
// fallback.
func Classify(text string, intent types.EventIntent, previousQuestion *string) *types.DomainResult {
	normalized := textnorm.Normalize(text)

	if isSafetyOverride(normalized) {
		scores := scoreAllDomains(normalized)
		secondary := topSecondary(scores, types.DomainSafetyRisk)
		return &types.DomainResult{
			Primary:   types.DomainTag{Domain: types.DomainSafetyRisk, Confidence: safetyOverrideConfidence},
			Secondary: secondary,
			Rationale: "Safety risk keywords detected.",
		}
	}

	scores := scoreAllDomains(normalized)

	if intent == types.IntentFollowUp && previousQuestion != nil {
		prevNormalized := textnorm.Normalize(*previousQuestion)
		prevScores := scoreAllDomains(prevNormalized)
		if topDomain, topConf, ok := topByConfidence(prevScores); ok && topConf >= followUpBiasThreshold {
			scores[topDomain] += followUpBiasBoost
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return &types.DomainResult{
			Primary:   types.DomainTag{Domain: types.DomainUnknownOther, Confidence: 0},
			Secondary: nil,
			Rationale: "No domain signals detected.",
		}
	}

	tags := tagAndSort(scores, total)
	primary := tags[0]
	secondary := capSecondary(dropDomain(tags[1:], primary.Domain))

	if primary.Confidence < lowConfidenceThreshold {
		fallbackConfidence := clamp01(1 - primary.Confidence)
		allSecondary := capSecondary(tags)
		return &types.DomainResult{
			Primary:   types.DomainTag{Domain: types.DomainUnknownOther, Confidence: fallbackConfidence},
			Secondary: allSecondary,
		}
	}

	return &types.DomainResult{
		Primary:   primary,
		Secondary: secondary,
	}
}

func isSafetyOverride(normalized string) bool {
	for _, phrase := range safetyRiskPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	tokens := textnorm.Tokens(normalized)
	for _, tok := range tokens {
		if _, ok := safetyRiskKeywords[tok]; ok {
			return true
		}
	}
	return false
}

// scoreAllDomains computes score = Σ whole-word keyword matches + 2 ×
// phrase substring matches for each of the 11 scoring domains.
func scoreAllDomains(normalized string) map[types.ComplexityDomain]float64 {
	tokens := textnorm.Tokens(normalized)
	scores := make(map[types.ComplexityDomain]float64, len(scoringDomains))
	for domain, dw := range scoringDomains {
		score := 0.0
		for _, tok := range tokens {
			if _, ok := dw.keywords[tok]; ok {
				score++
			}
		}
		for _, phrase := range dw.phrases {
			if n := strings.Count(normalized, phrase); n > 0 {
				score += 2 * float64(n)
			}
		}
		scores[domain] = score
	}
	return scores
}

func topByConfidence(scores map[types.ComplexityDomain]float64) (types.ComplexityDomain, float64, bool) {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return "", 0, false
	}
	tags := tagAndSort(scores, total)
	return tags[0].Domain, tags[0].Confidence, true
}

// tagAndSort converts raw scores into confidence-bearing tags for every
// domain with positive score, sorted descending by confidence, ties broken
// by domain priority (lower number wins).
func tagAndSort(scores map[types.ComplexityDomain]float64, total float64) []types.DomainTag {
	var tags []types.DomainTag
	for d, s := range scores {
		if s > 0 {
			tags = append(tags, types.DomainTag{Domain: d, Confidence: s / total})
		}
	}
	priority := func(d types.ComplexityDomain) int {
		if meta, ok := taxonomy.Domain(d); ok {
			return meta.Priority
		}
		return 999
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Confidence != tags[j].Confidence {
			return tags[i].Confidence > tags[j].Confidence
		}
		return priority(tags[i].Domain) < priority(tags[j].Domain)
	})
	return tags
}

func dropDomain(tags []types.DomainTag, domain types.ComplexityDomain) []types.DomainTag {
	out := make([]types.DomainTag, 0, len(tags))
	for _, t := range tags {
		if t.Domain != domain {
			out = append(out, t)
		}
	}
	return out
}

func capSecondary(tags []types.DomainTag) []types.DomainTag {
	if len(tags) > 2 {
		return tags[:2]
	}
	return tags
}

func topSecondary(scores map[types.ComplexityDomain]float64, exclude types.ComplexityDomain) []types.DomainTag {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return nil
	}
	tags := tagAndSort(scores, total)
	return capSecondary(dropDomain(tags, exclude))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
