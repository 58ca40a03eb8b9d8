// Package scoring provides a reference validation collaborator.
//
// Production deployments inject a real scorer (speech model, phraseology
// rubric service); this one makes the engine usable standalone by comparing
// normalized token sets.
package scoring

import (
	"context"
	"strings"

	"github.com/airband-io/airband/pkg/domain"
)

// SimpleValidator scores a response by token overlap with the expected
// transmission after normalization (case, punctuation, whitespace).
type SimpleValidator struct {
	// Threshold is the minimum score counted as correct. Zero value means
	// the DefaultThreshold.
	Threshold float64
}

// DefaultThreshold passes a response when 80% of expected tokens appear.
const DefaultThreshold = 0.8

// Evaluate implements ports.ResponseValidator.
func (v *SimpleValidator) Evaluate(_ context.Context, req domain.ValidationRequest) (domain.ValidationOutcome, error) {
	threshold := v.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	expected := tokenize(req.Expected)
	submitted := make(map[string]bool)
	for _, tok := range tokenize(req.Submitted) {
		submitted[tok] = true
	}

	if len(expected) == 0 {
		return domain.ValidationOutcome{Score: 1, IsCorrect: true}, nil
	}

	hits := 0
	var missing []string
	for _, tok := range expected {
		if submitted[tok] {
			hits++
		} else {
			missing = append(missing, tok)
		}
	}

	score := float64(hits) / float64(len(expected))
	outcome := domain.ValidationOutcome{
		Score:     score,
		IsCorrect: score >= threshold,
	}
	if outcome.IsCorrect {
		outcome.Feedback = "Readback accepted."
	} else {
		outcome.Feedback = "Missing: " + strings.Join(missing, ", ")
	}
	return outcome, nil
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}
