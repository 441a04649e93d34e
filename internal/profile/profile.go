// Package profile implements the profile builder (C5): it aggregates
// persisted and current-turn factors into the single ComplexityProfile a
// turn reasons over, applying confidence filtering, suppression, TTL decay,
// and priority/recency merging by code.
//
// Grounded on the teacher's aggregation idioms in internal/reasoning
// (scoring and ranking over a flat slice), reworked around a time-decayed
// merge instead of a static score.
package profile

import (
	"sort"
	"time"

	"complexity-engine/internal/types"
)

const defaultMinConfidence = 0.7

// ttlExtended is the set of codes that decay after 14 days regardless of
// time horizon, ahead of the default acute/unknown rules.
var ttlExtended = map[types.FactorCode]time.Duration{
	types.FactorAccessCostBarrier:        14 * 24 * time.Hour,
	types.FactorAccessAppointmentBarrier: 14 * 24 * time.Hour,
	types.FactorResourceTimePressure:     14 * 24 * time.Hour,
}

// Options parameterizes Build. A zero-value MinConfidence is replaced with
// defaultMinConfidence, so callers can omit it.
type Options struct {
	MinConfidence   float64
	SuppressedCodes map[types.FactorCode]struct{}
	Now             time.Time
}

// Build runs the full aggregation pipeline over factors (persisted plus the
// current turn's), producing the ComplexityProfile a turn's snapshot and
// response are built from.
func Build(factors []*types.Factor, opts Options) *types.ComplexityProfile {
	minConfidence := opts.MinConfidence
	if minConfidence == 0 {
		minConfidence = defaultMinConfidence
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	kept := filter(factors, minConfidence, opts.SuppressedCodes)
	kept = applyTTL(kept, now)
	merged := mergeByCode(kept)

	profile := &types.ComplexityProfile{
		FactorsByCode:   merged,
		DomainsCoverage: coverage(merged),
		UpdatedAt:       now,
	}
	profile.TopConstraints = topConstraints(merged)
	return profile
}

func filter(factors []*types.Factor, minConfidence float64, suppressed map[types.FactorCode]struct{}) []*types.Factor {
	out := make([]*types.Factor, 0, len(factors))
	for _, f := range factors {
		if f.Confidence < minConfidence {
			continue
		}
		if _, ok := suppressed[f.Code]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func getFactorTTL(code types.FactorCode, horizon types.FactorTimeHorizon) *time.Duration {
	if horizon == types.HorizonChronic || horizon == types.HorizonLifeCourse {
		return nil
	}
	if d, ok := ttlExtended[code]; ok {
		return &d
	}
	if horizon == types.HorizonAcute {
		d := 72 * time.Hour
		return &d
	}
	d := 7 * 24 * time.Hour
	return &d
}

func applyTTL(factors []*types.Factor, now time.Time) []*types.Factor {
	out := make([]*types.Factor, 0, len(factors))
	for _, f := range factors {
		ttl := getFactorTTL(f.Code, f.TimeHorizon)
		if ttl != nil && now.Sub(f.CreatedAt) > *ttl {
			continue
		}
		out = append(out, f)
	}
	return out
}

// mergeByCode keeps, for each code, the most recent factor, breaking ties
// in favor of higher confidence.
func mergeByCode(factors []*types.Factor) map[types.FactorCode]*types.Factor {
	merged := make(map[types.FactorCode]*types.Factor, len(factors))
	for _, f := range factors {
		existing, ok := merged[f.Code]
		if !ok {
			merged[f.Code] = f
			continue
		}
		if f.CreatedAt.After(existing.CreatedAt) {
			merged[f.Code] = f
		} else if f.CreatedAt.Equal(existing.CreatedAt) && f.Confidence > existing.Confidence {
			merged[f.Code] = f
		}
	}
	return merged
}

func coverage(merged map[types.FactorCode]*types.Factor) map[types.ComplexityDomain]types.DomainCoverage {
	out := make(map[types.ComplexityDomain]types.DomainCoverage)
	for _, f := range merged {
		c := out[f.Domain]
		switch f.TimeHorizon {
		case types.HorizonAcute:
			c.Acute++
		case types.HorizonChronic, types.HorizonLifeCourse:
			c.Chronic++
		}
		out[f.Domain] = c
	}
	return out
}

var constraintDomains = map[types.ComplexityDomain]struct{}{
	types.DomainAccessToCare:         {},
	types.DomainResourcesConstraints: {},
}

func isConstraint(f *types.Factor) bool {
	if f.Type == types.FactorTypeConstrainedChoice {
		return true
	}
	_, ok := constraintDomains[f.Domain]
	return ok
}

func topConstraints(merged map[types.FactorCode]*types.Factor) []*types.Factor {
	var candidates []*types.Factor
	for _, f := range merged {
		if isConstraint(f) {
			candidates = append(candidates, f)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}
