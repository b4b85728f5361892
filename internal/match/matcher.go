package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/fields"
)

// Candidate is one scored driver row.
type Candidate struct {
	Driver entity.DriverRecord `json:"driver"`
	Score  int                 `json:"score"`
	Band   string              `json:"band"`
}

// Band labels carried on candidates for reporting.
const (
	BandExactFirstName  = "exact first name"
	BandFirstNameClose  = "first name close"
	BandLastNameOnly    = "last name only"
	BandPartialLastName = "partial last name"
	BandExactNumber     = "exact number"
	BandNumberPrefix    = "number prefix"
	BandNumberFragment  = "number fragment"
)

// Matcher scores extracted card fields against driver rows. Deterministic:
// no randomness, stable ordering, same inputs always rank identically.
type Matcher struct {
	policy Policy
	sim    *metrics.JaroWinkler
}

func NewMatcher(policy Policy) *Matcher {
	return &Matcher{
		policy: policy.normalized(),
		sim:    metrics.NewJaroWinkler(),
	}
}

// MatchByName implements the tiered name match.
//
// Filter: when a last name was extracted, only rows with a case-insensitive
// exact last-name match survive (last names are the most reliable OCR
// signal). Rows with merely overlapping last names are admitted, capped at
// the partial band, only when the policy allows it. When no last name was
// extracted every row survives.
//
// Score: exact first name hits the top band; containment either way or
// Jaro-Winkler similarity at or above the policy floor hits the close band;
// anything else, including missing first names, scores as last-name-only.
//
// Rank: stable sort descending, ties keep the input row order, truncated to
// the policy TopN.
func (m *Matcher) MatchByName(f fields.Fields, records []entity.DriverRecord) []Candidate {
	if len(records) == 0 {
		return nil
	}
	if !f.HasLastName() && !f.HasFirstName() && m.policy.OnEmptyFields == EmptyFieldsReturnNone {
		return nil
	}

	var cands []Candidate
	for _, rec := range records {
		if f.HasLastName() && !strings.EqualFold(rec.LastName, f.LastName) {
			if m.policy.AllowPartialLastName && overlapFold(rec.LastName, f.LastName) {
				cands = append(cands, Candidate{Driver: rec, Score: m.policy.ScorePartialLastName, Band: BandPartialLastName})
			}
			continue
		}
		score, band := m.firstNameScore(f.FirstName, rec.FirstName)
		cands = append(cands, Candidate{Driver: rec, Score: score, Band: band})
	}
	return m.rank(cands)
}

// MatchByNumber scores rows against an extracted license number: exact,
// prefix, then fragment. Rows without any overlap are dropped.
func (m *Matcher) MatchByNumber(number string, records []entity.DriverRecord) []Candidate {
	if number == "" || len(records) == 0 {
		return nil
	}
	n := strings.ToLower(number)

	var cands []Candidate
	for _, rec := range records {
		rn := strings.ToLower(rec.LicenseNumber)
		if rn == "" {
			continue
		}
		switch {
		case rn == n:
			cands = append(cands, Candidate{Driver: rec, Score: m.policy.ScoreExactFirstName, Band: BandExactNumber})
		case strings.HasPrefix(rn, n):
			cands = append(cands, Candidate{Driver: rec, Score: m.policy.ScoreFirstNameClose, Band: BandNumberPrefix})
		case strings.Contains(rn, n):
			cands = append(cands, Candidate{Driver: rec, Score: m.policy.ScoreLastNameOnly, Band: BandNumberFragment})
		}
	}
	return m.rank(cands)
}

func (m *Matcher) firstNameScore(extracted, stored string) (int, string) {
	if extracted == "" || stored == "" {
		return m.policy.ScoreLastNameOnly, BandLastNameOnly
	}
	a := strings.ToLower(extracted)
	b := strings.ToLower(stored)
	if a == b {
		return m.policy.ScoreExactFirstName, BandExactFirstName
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return m.policy.ScoreFirstNameClose, BandFirstNameClose
	}
	if strutil.Similarity(a, b, m.sim) >= m.policy.FirstNameSimilarity {
		return m.policy.ScoreFirstNameClose, BandFirstNameClose
	}
	return m.policy.ScoreLastNameOnly, BandLastNameOnly
}

func (m *Matcher) rank(cands []Candidate) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
	if len(cands) > m.policy.TopN {
		cands = cands[:m.policy.TopN]
	}
	return cands
}

// overlapFold reports whether either name contains the other,
// case-insensitively.
func overlapFold(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
