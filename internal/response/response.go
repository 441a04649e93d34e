// Package response implements the response and explainability model
// builder (C9): it turns a StateSnapshot and a RoutedStep into the
// user-facing ResponseModel, including the deduplicated, sorted
// explainability chip list.
package response

import (
	"sort"

	"complexity-engine/internal/taxonomy"
	"complexity-engine/internal/types"
)

const (
	titleLogOnly          = "Saved"
	titleAskFollowup      = "One quick question"
	titleSafetyEscalation = "It may be safer to get help now"
	titleAnswer           = "Here's what matters"
)

const (
	chipGroupBodySignals = "Body signals"
	chipGroupConstraints = "Constraints"
	chipGroupContext     = "Context"
)

var chipGroupBoost = map[string]float64{
	chipGroupBodySignals: 0.20,
	chipGroupConstraints: 0.15,
	chipGroupContext:     0.00,
}

var bodySignalCodes = map[types.FactorCode]struct{}{
	types.FactorSymptomPain:           {},
	types.FactorSymptomHeadache:       {},
	types.FactorSymptomNausea:         {},
	types.FactorSymptomFever:          {},
	types.FactorSymptomFatigueBody:    {},
	types.FactorSymptomBreathlessness: {},
	types.FactorSymptomDizziness:      {},
	types.FactorSymptomRash:           {},
	types.FactorSafetyRedFlag:         {},
	types.FactorSafetySelfHarm:        {},
}

var constraintCodes = map[types.FactorCode]struct{}{
	types.FactorAccessCostBarrier:        {},
	types.FactorAccessAppointmentBarrier: {},
	types.FactorAccessTransportBarrier:   {},
	types.FactorResourceFinancialStrain:  {},
	types.FactorResourceTimePressure:     {},
	types.FactorResourceCaregivingLoad:   {},
}

type nextStepTemplate struct {
	text    string
	options []string
}

var nextStepTemplates = map[types.NextStepCategory]nextStepTemplate{
	types.StepSelfCare: {
		text:    "This sounds manageable with self-care for now.",
		options: []string{"Rest and monitor how you feel", "Try an over-the-counter remedy if appropriate"},
	},
	types.StepPharmacist: {
		text:    "A pharmacist can likely help with this.",
		options: []string{"Visit or call a local pharmacy", "Ask about over-the-counter options"},
	},
	types.StepGPTelehealth: {
		text:    "It's worth checking in with a GP, in person or by telehealth.",
		options: []string{"Book a GP telehealth appointment", "Call your regular clinic"},
	},
	types.StepUrgentCareED: {
		text:    "This may need urgent attention.",
		options: []string{"Go to your nearest emergency department", "Call an urgent-care line"},
	},
	types.StepCrisisSupport: {
		text:    "Please reach out to a crisis support service now.",
		options: []string{"Call Lifeline on 13 11 14", "Call 000 if you are in immediate danger"},
	},
}

// Build assembles the full ResponseModel from a snapshot and its routed
// step.
func Build(snap *types.StateSnapshot, routed *types.RoutedStep, controls types.ControlsView) *types.ResponseModel {
	mode := modeFor(snap, routed)

	model := &types.ResponseModel{
		Mode:        mode,
		Title:       titleFor(mode),
		WhatMatters: snap.WhatMatters,
		WhatImUsing: types.WhatImUsing{
			Chips:    formatUsedFactorsForUI(snap.UsedFactors),
			Controls: controls,
		},
	}

	if mode == types.ModeAskFollowup {
		model.FollowupQuestion = snap.FollowupQuestion
	}

	if mode != types.ModeLogOnly && mode != types.ModeAskFollowup {
		model.NextStep = nextStepView(routed)
	}

	if mode == types.ModeSafetyEscalation {
		if routed.SafetyNet != nil {
			model.SafetyNet = routed.SafetyNet
		} else {
			model.SafetyNet = snap.SafetyCopy
		}
	} else if mode == types.ModeAnswer && routed.SafetyNet != nil {
		model.SafetyNet = routed.SafetyNet
	}

	return model
}

func modeFor(snap *types.StateSnapshot, routed *types.RoutedStep) types.ResponseMode {
	switch snap.NextActionKind {
	case types.ActionLogOnly:
		return types.ModeLogOnly
	case types.ActionAskFollowup:
		return types.ModeAskFollowup
	case types.ActionSafetyEscalation:
		return types.ModeSafetyEscalation
	}
	if routed.Category == types.StepUrgentCareED || routed.Category == types.StepCrisisSupport {
		return types.ModeSafetyEscalation
	}
	return types.ModeAnswer
}

func titleFor(mode types.ResponseMode) string {
	switch mode {
	case types.ModeLogOnly:
		return titleLogOnly
	case types.ModeAskFollowup:
		return titleAskFollowup
	case types.ModeSafetyEscalation:
		return titleSafetyEscalation
	default:
		return titleAnswer
	}
}

func nextStepView(routed *types.RoutedStep) *types.NextStepView {
	tmpl, ok := nextStepTemplates[routed.Category]
	if !ok {
		return nil
	}
	return &types.NextStepView{
		Category: routed.Category,
		Heading:  "Next step",
		Text:     tmpl.text,
		Options:  tmpl.options,
	}
}

func chipGroup(code types.FactorCode) string {
	if _, ok := bodySignalCodes[code]; ok {
		return chipGroupBodySignals
	}
	if _, ok := constraintCodes[code]; ok {
		return chipGroupConstraints
	}
	return chipGroupContext
}

// formatUsedFactorsForUI dedups by code, labels and groups each chip, sorts
// by boosted confidence then group then label, and caps at 6.
func formatUsedFactorsForUI(used []types.UsedFactorSummary) []types.UsedFactorChip {
	seen := make(map[types.FactorCode]struct{}, len(used))
	chips := make([]types.UsedFactorChip, 0, len(used))
	for _, u := range used {
		if _, ok := seen[u.Code]; ok {
			continue
		}
		seen[u.Code] = struct{}{}
		group := chipGroup(u.Code)
		chips = append(chips, types.UsedFactorChip{
			Code:       u.Code,
			Label:      taxonomy.ChipLabel(u.Code),
			Group:      group,
			Confidence: u.Confidence,
		})
	}

	sort.SliceStable(chips, func(i, j int) bool {
		bi := chips[i].Confidence + chipGroupBoost[chips[i].Group]
		bj := chips[j].Confidence + chipGroupBoost[chips[j].Group]
		if bi != bj {
			return bi > bj
		}
		if chips[i].Group != chips[j].Group {
			return chips[i].Group < chips[j].Group
		}
		return chips[i].Label < chips[j].Label
	})

	if len(chips) > 6 {
		chips = chips[:6]
	}
	return chips
}
