package pipeline

import (
	"log/slog"

	"github.com/victoedr/idcard-verifier/internal/classify"
	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/fields"
	"github.com/victoedr/idcard-verifier/internal/match"
	"github.com/victoedr/idcard-verifier/internal/textutil"
)

// Outcome is the combined result of one pass over a card's text.
type Outcome struct {
	Classification classify.Result   `json:"classification"`
	Fields         fields.Fields     `json:"fields"`
	Matches        []match.Candidate `json:"matches"`
}

// Pipeline sequences normalize, classify, extract, and match over a text and
// an in-memory driver set. It holds no collaborators and performs no I/O;
// every stage degrades to an empty result, so Run cannot fail.
type Pipeline struct {
	classifier *classify.Classifier
	extractor  *fields.Extractor
	matcher    *match.Matcher
	logger     *slog.Logger
}

// NewPipeline wires the three stages. Nil arguments fall back to the stage
// defaults, so NewPipeline(nil, nil, nil, nil) is fully usable.
func NewPipeline(classifier *classify.Classifier, extractor *fields.Extractor, matcher *match.Matcher, logger *slog.Logger) *Pipeline {
	if classifier == nil {
		classifier = classify.NewClassifier(nil, classify.DefaultHeuristics())
	}
	if extractor == nil {
		extractor = fields.NewExtractor(fields.DefaultConfig())
	}
	if matcher == nil {
		matcher = match.NewMatcher(match.DefaultPolicy())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{classifier: classifier, extractor: extractor, matcher: matcher, logger: logger}
}

// Run executes the stages in order: normalize the raw text, classify it,
// extract the card fields, then rank the driver records against them.
func (p *Pipeline) Run(rawText string, records []entity.DriverRecord) Outcome {
	normalized := textutil.Normalize(rawText)

	classification := p.classifier.Classify(normalized)
	extracted := p.extractor.Extract(rawText, normalized)
	matches := p.matcher.MatchByName(extracted, records)

	p.logger.Debug("pipeline.run",
		"card_type", classification.CardType,
		"confidence", classification.Confidence,
		"keywords", classification.MatchedKeywordCount,
		"license_number", extracted.LicenseNumber,
		"matches", len(matches),
	)
	return Outcome{Classification: classification, Fields: extracted, Matches: matches}
}
