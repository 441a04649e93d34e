package extractor

import (
	"strings"

	"complexity-engine/internal/types"
)

// detection is one candidate factor code surfaced by a detector, before
// gating.
type detection struct {
	code       types.FactorCode
	confidence float64
}

func keywordDetector(code types.FactorCode, confidence float64, ws map[string]struct{}) func(normalized string, tokens []string) []detection {
	return func(_ string, tokens []string) []detection {
		for _, tok := range tokens {
			if _, ok := ws[tok]; ok {
				return []detection{{code: code, confidence: confidence}}
			}
		}
		return nil
	}
}

func phraseDetector(code types.FactorCode, confidence float64, phrases []string) func(normalized string, tokens []string) []detection {
	return func(normalized string, _ []string) []detection {
		for _, p := range phrases {
			if strings.Contains(normalized, p) {
				return []detection{{code: code, confidence: confidence}}
			}
		}
		return nil
	}
}

// eitherDetector runs the phrase detector first; if it misses, falls back
// to the keyword detector.
func eitherDetector(phraseFn, keywordFn func(normalized string, tokens []string) []detection) func(string, []string) []detection {
	return func(normalized string, tokens []string) []detection {
		if d := phraseFn(normalized, tokens); d != nil {
			return d
		}
		return keywordFn(normalized, tokens)
	}
}
