package extractor

import "complexity-engine/internal/types"

func words(ws ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}

// careKeywords are the care-related terms the contextual gate for
// ACCESS_COST_BARRIER requires to also be present, so that "can't afford
// groceries" does not trigger an access-to-care factor.
var careKeywords = words("gp", "doctor", "clinic", "physio", "specialist", "dentist", "hospital")

// ambiguityMarkers signal the user themself is unsure what matters, feeding
// the MissingInfo "clarify" rule.
var ambiguityMarkers = []string{"not sure", "hard to explain", "no idea", "dont know", "not certain"}

// selfHarmPhrases, when matched, produce both SAFETY_SELF_HARM and
// SAFETY_RED_FLAG.
var selfHarmPhrases = []string{
	"hurt myself", "kill myself", "want to die", "end it all", "suicidal",
}

// redFlagPhrases, when matched (and not already covered by a self-harm
// phrase), produce SAFETY_RED_FLAG alone.
var redFlagPhrases = []string{
	"chest pain", "trouble breathing", "cant breathe", "severe bleeding",
	"seizure", "unconscious", "stroke", "overdose",
}

var (
	durationRecentPhrases    = []string{"today", "yesterday", "this morning", "just started", "suddenly"}
	durationRecurringPhrases = []string{"every afternoon", "every day", "every night", "every morning",
		"keeps coming back", "on and off", "comes and goes"}
)
