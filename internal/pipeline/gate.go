package pipeline

import (
	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/classify"
)

// Gate is the caller-side login policy: a card may proceed only when its
// classification confidence reaches MinConfidence and the type is known.
// It lives here, not in the classifier, so callers can tune or replace it.
type Gate struct {
	MinConfidence float64
}

// DefaultGate requires confidence of at least 40.
func DefaultGate() Gate {
	return Gate{MinConfidence: 40.0}
}

// Allow reports whether the classification clears the gate.
func (g Gate) Allow(res classify.Result) bool {
	return res.Confidence >= g.MinConfidence && res.CardType != string(constants.Unknown)
}
