package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"

	"github.com/victoedr/idcard-verifier/internal/classify"
	"github.com/victoedr/idcard-verifier/internal/common"
	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/fields"
	"github.com/victoedr/idcard-verifier/internal/match"
	"github.com/victoedr/idcard-verifier/internal/ocr"
	"github.com/victoedr/idcard-verifier/internal/repository"
	"github.com/victoedr/idcard-verifier/internal/textutil"
)

// Report is the complete outcome of one verification run.
type Report struct {
	RunID          uuid.UUID         `json:"run_id"`
	CardType       string            `json:"card_type"`
	Confidence     float64           `json:"confidence"`
	KeywordsFound  []string          `json:"keywords_found,omitempty"`
	Fields         fields.Fields     `json:"fields"`
	Matches        []match.Candidate `json:"matches,omitempty"`
	LoginAllowed   bool              `json:"login_allowed"`
	NameSimilarity float64           `json:"name_similarity,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
	ElapsedMS      int64             `json:"elapsed_ms"`
}

// VerifierConfig holds the caller-side policy for a verification run.
type VerifierConfig struct {
	// ActiveOnly restricts candidate queries to active licenses.
	ActiveOnly bool
	Gate       Gate
}

func (c VerifierConfig) normalized() VerifierConfig {
	if c.Gate.MinConfidence <= 0 {
		c.Gate = DefaultGate()
	}
	return c
}

// Verifier runs the whole flow: OCR the card, pick the best pass, classify
// and extract, fetch candidate rows from storage, rank them, and apply the
// login gate.
type Verifier struct {
	logger     *slog.Logger
	cfg        VerifierConfig
	ocr        ocr.TextExtractor
	drivers    repository.DriverRepository
	classifier *classify.Classifier
	extractor  *fields.Extractor
	matcher    *match.Matcher
	sim        *metrics.JaroWinkler
}

// NewVerifier wires the service. Nil stages fall back to their defaults; tx
// may be nil when only VerifyText will be used.
func NewVerifier(
	logger *slog.Logger,
	cfg VerifierConfig,
	tx ocr.TextExtractor,
	drivers repository.DriverRepository,
	classifier *classify.Classifier,
	extractor *fields.Extractor,
	matcher *match.Matcher,
) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = classify.NewClassifier(nil, classify.DefaultHeuristics())
	}
	if extractor == nil {
		extractor = fields.NewExtractor(fields.DefaultConfig())
	}
	if matcher == nil {
		matcher = match.NewMatcher(match.DefaultPolicy())
	}
	return &Verifier{
		logger:     logger,
		cfg:        cfg.normalized(),
		ocr:        tx,
		drivers:    drivers,
		classifier: classifier,
		extractor:  extractor,
		matcher:    matcher,
		sim:        metrics.NewJaroWinkler(),
	}
}

// VerifyImage OCRs the card at path, reduces the passes to the text that
// classifies best, and verifies it.
func (v *Verifier) VerifyImage(ctx context.Context, path string) (*Report, error) {
	started := time.Now()
	runID := uuid.New()
	log := v.logger.With("run_id", runID)
	log.Info("verify.start", "source", "image", "path", path)

	if v.ocr == nil {
		return nil, fmt.Errorf("no text extractor configured: %w", common.ErrOCRUnavailable)
	}
	cands, err := v.ocr.ExtractCandidates(ctx, path)
	if err != nil {
		log.Error("verify.ocr.failed", "path", path, "err", err)
		return nil, err
	}
	text, best := ReduceCandidates(cands, v.classifier)
	log.Info("verify.ocr.reduced",
		"candidates", len(cands),
		"winner_card_type", best.CardType,
		"winner_confidence", best.Confidence,
	)
	return v.verify(ctx, log, runID, text, collectWarnings(cands), started)
}

// VerifyText verifies already-available card text, skipping OCR.
func (v *Verifier) VerifyText(ctx context.Context, rawText string) (*Report, error) {
	started := time.Now()
	runID := uuid.New()
	log := v.logger.With("run_id", runID)
	log.Info("verify.start", "source", "text", "bytes", len(rawText))
	return v.verify(ctx, log, runID, rawText, nil, started)
}

func (v *Verifier) verify(ctx context.Context, log *slog.Logger, runID uuid.UUID, rawText string, warnings []string, started time.Time) (*Report, error) {
	normalized := textutil.Normalize(rawText)
	classification := v.classifier.Classify(normalized)
	extracted := v.extractor.Extract(rawText, normalized)
	log.Info("verify.classified",
		"card_type", classification.CardType,
		"confidence", classification.Confidence,
		"keywords", classification.MatchedKeywordCount,
		"license_number", extracted.LicenseNumber,
	)

	matches, err := v.matchAgainstStore(ctx, extracted)
	if err != nil {
		log.Error("verify.storage.failed", "err", err)
		return nil, err
	}

	rep := &Report{
		RunID:         runID,
		CardType:      classification.CardType,
		Confidence:    classification.Confidence,
		KeywordsFound: classification.KeywordsFound,
		Fields:        extracted,
		Matches:       matches,
		LoginAllowed:  v.cfg.Gate.Allow(classification),
		Warnings:      warnings,
	}
	if len(matches) > 0 {
		rep.NameSimilarity = v.nameSimilarity(extracted, matches[0].Driver)
	}
	rep.ElapsedMS = time.Since(started).Milliseconds()

	log.Info("verify.done",
		"card_type", rep.CardType,
		"confidence", rep.Confidence,
		"matches", len(rep.Matches),
		"login_allowed", rep.LoginAllowed,
		"elapsed_ms", rep.ElapsedMS,
	)
	return rep, nil
}

// matchAgainstStore fetches candidate rows the way the extracted fields
// suggest: by license number when one was read off the card, else by last
// name, else the whole table. A number query that ranks nothing falls
// through to the name path.
func (v *Verifier) matchAgainstStore(ctx context.Context, f fields.Fields) ([]match.Candidate, error) {
	if f.HasLicenseNumber() {
		records, err := v.drivers.FindByLicenseNumber(ctx, f.LicenseNumber, v.cfg.ActiveOnly)
		if err != nil {
			return nil, err
		}
		if cands := v.matcher.MatchByNumber(f.LicenseNumber, records); len(cands) > 0 {
			return cands, nil
		}
	}

	var (
		records []entity.DriverRecord
		err     error
	)
	if f.HasLastName() {
		records, err = v.drivers.FindByLastName(ctx, f.LastName, v.cfg.ActiveOnly)
	} else {
		records, err = v.drivers.AllDrivers(ctx, v.cfg.ActiveOnly)
	}
	if err != nil {
		return nil, err
	}
	return v.matcher.MatchByName(f, records), nil
}

// nameSimilarity is the Jaro-Winkler similarity between the extracted full
// name and the top candidate's, for display alongside the banded score.
func (v *Verifier) nameSimilarity(f fields.Fields, top entity.DriverRecord) float64 {
	extracted := f.FullName()
	if extracted == "" {
		return 0
	}
	return strutil.Similarity(strings.ToLower(extracted), strings.ToLower(top.FullName()), v.sim)
}

func collectWarnings(cands []ocr.Candidate) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range cands {
		for _, w := range c.Warnings {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}
