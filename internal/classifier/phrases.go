package classifier

import "complexity-engine/internal/types"

// domainWords is the keyword/phrase table for one scoring domain. Built
// once as package-level data and never recomputed per turn, the same
// "static data, build once" discipline the teacher's phrase tables follow.
type domainWords struct {
	keywords map[string]struct{}
	phrases  []string
}

func words(ws ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}

// scoringDomains covers the 11 domains eligible for the per-domain keyword
// and phrase scoring pass — every ComplexityDomain except SAFETY_RISK
// (handled by the override in step 2) and UNKNOWN_OTHER (the fallback).
var scoringDomains = map[types.ComplexityDomain]domainWords{
	types.DomainSymptomsBodySignals: {
		keywords: words("pain", "ache", "aches", "aching", "fever", "nausea", "nauseous",
			"dizzy", "dizziness", "breathless", "rash", "headache", "vomit", "vomiting", "cough"),
		phrases: []string{"feel sick", "not feeling well", "throwing up", "short of breath"},
	},
	types.DomainDurationPattern: {
		keywords: words("today", "yesterday", "days", "weeks", "months", "years", "recently", "lately"),
		phrases: []string{"for weeks", "for days", "for months", "every afternoon", "every day",
			"every night", "keeps coming back", "on and off"},
	},
	types.DomainMedicalContext: {
		keywords: words("diagnosed", "condition", "medication", "pills", "prescription",
			"pregnant", "pregnancy", "asthma", "diabetes"),
		phrases: []string{"existing condition", "take medication", "recently diagnosed"},
	},
	types.DomainMentalEmotionalState: {
		keywords: words("anxious", "anxiety", "stressed", "stress", "depressed", "sad",
			"panic", "worried", "overwhelmed"),
		phrases: []string{"panic attack", "low mood", "mental health"},
	},
	types.DomainCapacityEnergy: {
		keywords: words("tired", "exhausted", "insomnia", "fatigue", "focus", "concentrate", "energy"),
		phrases:  []string{"cant sleep", "no energy", "hard to focus"},
	},
	types.DomainAccessToCare: {
		keywords: words("appointment", "waitlist", "gp", "doctor", "clinic", "transport"),
		phrases: []string{"cant get an appointment", "cant afford the gp", "cant afford the doctor",
			"no transport", "cant get to the doctor", "waiting list"},
	},
	types.DomainEnvironmentExposures: {
		keywords: words("smoke", "smoky", "pollution", "dust", "mold", "mould", "fumes", "bushfire"),
		phrases:  []string{"air quality", "bushfire smoke"},
	},
	types.DomainSocialSupportContext: {
		keywords: words("alone", "lonely", "isolated"),
		phrases:  []string{"no one to help", "no support", "on my own"},
	},
	types.DomainResourcesConstraints: {
		keywords: words("afford", "money", "expensive", "broke", "rent", "bills", "busy", "caregiving", "caring"),
		phrases:  []string{"cant afford", "no time", "looking after", "financial strain"},
	},
	types.DomainKnowledgeBeliefsPrefs: {
		keywords: words("information", "understand", "explain", "confused", "unsure"),
		phrases:  []string{"not sure", "no idea", "hard to explain", "dont understand", "want to know"},
	},
	types.DomainGoalsIntent: {
		keywords: words("relief", "reassurance", "cure"),
		phrases:  []string{"want it to stop", "just want reassurance", "want to know why"},
	},
}

// safetyRiskPhrases trigger the classifier's safety override on substring
// match against the normalized text.
var safetyRiskPhrases = []string{
	"chest pain", "trouble breathing", "cant breathe", "severe bleeding",
	"suicidal thoughts", "want to die", "end it all", "hurt myself", "kill myself",
}

// safetyRiskKeywords trigger the classifier's safety override on whole-word
// match against the normalized text.
var safetyRiskKeywords = words("suicidal", "overdose", "seizure", "unconscious", "stroke")
