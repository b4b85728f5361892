package pipeline

import (
	"github.com/victoedr/idcard-verifier/internal/classify"
	"github.com/victoedr/idcard-verifier/internal/ocr"
	"github.com/victoedr/idcard-verifier/internal/textutil"
)

// ReduceCandidates picks the OCR pass whose text classifies with the highest
// confidence. Ties keep the earliest candidate, so the pass order reported by
// the extractor doubles as the preference order. Zero candidates reduce to an
// empty text and an Unknown result.
func ReduceCandidates(cands []ocr.Candidate, classifier *classify.Classifier) (string, classify.Result) {
	if classifier == nil {
		classifier = classify.NewClassifier(nil, classify.DefaultHeuristics())
	}
	if len(cands) == 0 {
		return "", classify.Unknown()
	}

	bestText := cands[0].Text
	bestResult := classifier.Classify(textutil.Normalize(cands[0].Text))
	for _, cand := range cands[1:] {
		res := classifier.Classify(textutil.Normalize(cand.Text))
		if res.Confidence > bestResult.Confidence {
			bestText = cand.Text
			bestResult = res
		}
	}
	return bestText, bestResult
}
