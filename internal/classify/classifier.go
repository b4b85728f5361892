package classify

import (
	"math"
	"strings"

	"github.com/victoedr/idcard-verifier/constants"
)

// Result is the outcome of classifying one piece of normalized card text.
// Confidence is a heuristic percentage in [0,100], not a probability.
type Result struct {
	CardType            string   `json:"card_type"`
	Confidence          float64  `json:"confidence"`
	MatchedKeywordCount int      `json:"matched_keyword_count"`
	KeywordsFound       []string `json:"keywords_found,omitempty"`
}

// Unknown is the Result for text that matched no profile keyword.
func Unknown() Result {
	return Result{CardType: string(constants.Unknown), Confidence: 0}
}

// Heuristics names the confidence constants so they can be tuned without
// touching the classification flow.
type Heuristics struct {
	// ScaleFactor dampens raw keyword coverage: full coverage alone yields
	// ScaleFactor*100 before boosting.
	ScaleFactor float64
	// BoostFactor multiplies confidence when at least BoostMinKeywords
	// keywords were found.
	BoostFactor      float64
	BoostMinKeywords int
	// KeywordFloor is the minimum confidence whenever any keyword matched.
	KeywordFloor  float64
	MaxConfidence float64
}

// DefaultHeuristics returns the deployed tuning.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		ScaleFactor:      0.3,
		BoostFactor:      1.5,
		BoostMinKeywords: 4,
		KeywordFloor:     40.0,
		MaxConfidence:    100.0,
	}
}

// normalized fills zero values with defaults so a partially constructed
// Heuristics behaves sanely.
func (h Heuristics) normalized() Heuristics {
	def := DefaultHeuristics()
	if h.ScaleFactor <= 0 {
		h.ScaleFactor = def.ScaleFactor
	}
	if h.BoostFactor <= 0 {
		h.BoostFactor = def.BoostFactor
	}
	if h.BoostMinKeywords <= 0 {
		h.BoostMinKeywords = def.BoostMinKeywords
	}
	if h.KeywordFloor <= 0 {
		h.KeywordFloor = def.KeywordFloor
	}
	if h.MaxConfidence <= 0 {
		h.MaxConfidence = def.MaxConfidence
	}
	return h
}

// Classifier assigns a card type to normalized OCR text by counting keyword
// hits per profile. It is pure: no I/O, no randomness.
type Classifier struct {
	profiles   []Profile
	heuristics Heuristics
}

// NewClassifier builds a classifier over the given profiles, which are
// consulted in order. Nil or empty profiles fall back to DefaultProfiles.
func NewClassifier(profiles []Profile, heuristics Heuristics) *Classifier {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	return &Classifier{profiles: profiles, heuristics: heuristics.normalized()}
}

// Classify scores text (already normalized, see textutil.Normalize) against
// every profile and returns the best. A profile wins by matching strictly
// more keywords; ties keep the earliest declared profile. Text matching no
// keyword at all classifies as Unknown with confidence 0.
func (c *Classifier) Classify(text string) Result {
	bestIdx := -1
	var bestFound []string

	for i, p := range c.profiles {
		found := keywordsIn(text, p.Keywords)
		if len(found) > len(bestFound) {
			bestIdx = i
			bestFound = found
		}
	}

	if bestIdx < 0 || len(bestFound) == 0 {
		return Unknown()
	}

	p := c.profiles[bestIdx]
	return Result{
		CardType:            p.Name,
		Confidence:          c.heuristics.confidence(len(bestFound), len(p.Keywords)),
		MatchedKeywordCount: len(bestFound),
		KeywordsFound:       bestFound,
	}
}

// confidence implements the deployed heuristic:
//
//	raw   = (found/total) * ScaleFactor * 100
//	boost = raw * BoostFactor          when found >= BoostMinKeywords
//	floor = max(value, KeywordFloor)   when found >= 1
//	cap   = min(value, MaxConfidence)
func (h Heuristics) confidence(found, total int) float64 {
	if found == 0 || total == 0 {
		return 0
	}
	conf := (float64(found) / float64(total)) * h.ScaleFactor * 100
	if found >= h.BoostMinKeywords {
		conf *= h.BoostFactor
	}
	if conf < h.KeywordFloor {
		conf = h.KeywordFloor
	}
	return math.Min(conf, h.MaxConfidence)
}

// keywordsIn returns the distinct profile keywords present in text as
// substrings, in declaration order. Empty keywords never count.
func keywordsIn(text string, keywords []string) []string {
	if text == "" {
		return nil
	}
	var found []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
