package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/victoedr/idcard-verifier/internal/textutil"
)

// Fields holds whatever identity data could be pulled out of card text.
// Absent fields are empty strings, never errors.
type Fields struct {
	LicenseNumber string `json:"license_number,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
}

func (f Fields) HasLicenseNumber() bool { return f.LicenseNumber != "" }

func (f Fields) HasLastName() bool { return f.LastName != "" }

func (f Fields) HasFirstName() bool { return f.FirstName != "" }

// FullName joins the present name parts with a space.
func (f Fields) FullName() string {
	switch {
	case f.FirstName != "" && f.LastName != "":
		return f.FirstName + " " + f.LastName
	case f.FirstName != "":
		return f.FirstName
	default:
		return f.LastName
	}
}

// Config holds the extraction length thresholds.
type Config struct {
	MinIDLength   int
	MaxIDLength   int
	MinNameLength int
}

func DefaultConfig() Config {
	return Config{MinIDLength: 6, MaxIDLength: 12, MinNameLength: 2}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MinIDLength <= 0 {
		c.MinIDLength = def.MinIDLength
	}
	if c.MaxIDLength < c.MinIDLength {
		c.MaxIDLength = def.MaxIDLength
	}
	if c.MinNameLength <= 0 {
		c.MinNameLength = def.MinNameLength
	}
	return c
}

// Extractor pulls license numbers and names out of card text with ordered
// pattern rules. It is pure and deterministic.
//
// Number patterns run against normalized (lowercased, space-collapsed) text.
// Name patterns rely on capitalization, which normalization destroys, so they
// run against the raw text.
type Extractor struct {
	cfg Config

	numberPatterns []*regexp.Regexp
	tokenPattern   *regexp.Regexp
	namePatterns   []*regexp.Regexp
}

// NewExtractor compiles the pattern set for the given thresholds.
func NewExtractor(cfg Config) *Extractor {
	cfg = cfg.normalized()
	idLen := fmt.Sprintf("{%d,%d}", cfg.MinIDLength, cfg.MaxIDLength)

	return &Extractor{
		cfg: cfg,
		// ordered by specificity: labelled identifiers, then bare shapes
		numberPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:dl|d\.l\.|licen[cs]e|lic\.?|no\.?|#|cdl)\s*[:.]?\s*([a-z0-9]` + idLen + `)`),
			regexp.MustCompile(`(?:id|card)\s*(?:no\.?|#)\s*[:.]?\s*([a-z0-9]` + idLen + `)`),
			regexp.MustCompile(`\b([a-z]\d{7,10})\b`),
			regexp.MustCompile(`\b(\d{8,10})\b`),
		},
		tokenPattern: regexp.MustCompile(`[a-z0-9]+`),
		namePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:NAME|CARDHOLDER|FN|FIRST|LAST)[:.]?\s*([A-Z][a-z]+)\s+([A-Z][a-z]+)`),
			regexp.MustCompile(`(?:NAME)[:.]?\s*([A-Z]+),?\s+([A-Z]+)`),
			regexp.MustCompile(`\b([A-Z][a-z]{2,})\s+([A-Z][a-z]{2,})\b`),
		},
	}
}

// Extract runs number extraction over the normalized text and name
// extraction over the raw text. Both renderings must come from the same
// source document.
func (e *Extractor) Extract(rawText, normalizedText string) Fields {
	first, last := e.ExtractName(rawText)
	return Fields{
		LicenseNumber: e.ExtractLicenseNumber(normalizedText),
		FirstName:     first,
		LastName:      last,
	}
}

// ExtractLicenseNumber tries the labelled patterns first, then bare ID
// shapes, then falls back to the longest alphanumeric token that contains a
// digit and satisfies the length thresholds. Digit confusions are corrected
// only inside the chosen token; the result is upper-cased.
func (e *Extractor) ExtractLicenseNumber(normalizedText string) string {
	for _, pattern := range e.numberPatterns {
		if m := pattern.FindStringSubmatch(normalizedText); m != nil {
			return finishNumber(m[1])
		}
	}

	if tok := e.longestIDToken(normalizedText); tok != "" {
		return finishNumber(tok)
	}
	return ""
}

// longestIDToken scans every alphanumeric token and keeps the longest one
// that looks like an identifier (has at least one digit, length within
// bounds). Earlier tokens win ties.
func (e *Extractor) longestIDToken(text string) string {
	var best string
	for _, tok := range e.tokenPattern.FindAllString(text, -1) {
		if len(tok) < e.cfg.MinIDLength || len(tok) > e.cfg.MaxIDLength {
			continue
		}
		if !strings.ContainsAny(tok, "0123456789") {
			continue
		}
		if len(tok) > len(best) {
			best = tok
		}
	}
	return best
}

func finishNumber(token string) string {
	return strings.ToUpper(textutil.CorrectDigitConfusions(token))
}

// ExtractName returns (firstName, lastName) from raw card text. Each pattern
// is tried in order; a pattern's first match is validated (alphabetic, long
// enough) and an invalid match moves on to the next pattern rather than
// failing. No match at all yields two empty strings.
func (e *Extractor) ExtractName(rawText string) (string, string) {
	for _, pattern := range e.namePatterns {
		m := pattern.FindStringSubmatch(rawText)
		if m == nil {
			continue
		}
		first := strings.TrimSpace(m[1])
		last := strings.TrimSpace(m[2])
		if e.validName(first) && e.validName(last) {
			return textutil.TitleWord(first), textutil.TitleWord(last)
		}
	}
	return "", ""
}

func (e *Extractor) validName(name string) bool {
	return len(name) >= e.cfg.MinNameLength && textutil.IsAlphabetic(name)
}
