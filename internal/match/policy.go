package match

// EmptyFieldsPolicy picks the behavior when neither name field was
// extracted: keep every row (scored at the last-name-only band) or return
// nothing. Keeping rows mirrors the deployed behavior; callers wanting a
// stricter posture opt into ReturnNone.
type EmptyFieldsPolicy int

const (
	EmptyFieldsReturnAll EmptyFieldsPolicy = iota
	EmptyFieldsReturnNone
)

// Policy centralizes the match score bands and thresholds.
type Policy struct {
	// Score bands, highest to lowest signal.
	ScoreExactFirstName  int
	ScoreFirstNameClose  int
	ScoreLastNameOnly    int
	ScorePartialLastName int

	// FirstNameSimilarity is the Jaro-Winkler floor for the close band when
	// neither first name contains the other.
	FirstNameSimilarity float64

	// AllowPartialLastName retains rows whose last name only partially
	// overlaps the extracted one, capped at ScorePartialLastName. Off by
	// default: exact last-name equality is the hard filter.
	AllowPartialLastName bool

	OnEmptyFields EmptyFieldsPolicy

	// TopN bounds the ranked result.
	TopN int
}

// DefaultPolicy returns the deployed bands.
func DefaultPolicy() Policy {
	return Policy{
		ScoreExactFirstName:  100,
		ScoreFirstNameClose:  90,
		ScoreLastNameOnly:    80,
		ScorePartialLastName: 70,
		FirstNameSimilarity:  0.85,
		AllowPartialLastName: false,
		OnEmptyFields:        EmptyFieldsReturnAll,
		TopN:                 5,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.ScoreExactFirstName <= 0 {
		p.ScoreExactFirstName = d.ScoreExactFirstName
	}
	if p.ScoreFirstNameClose <= 0 {
		p.ScoreFirstNameClose = d.ScoreFirstNameClose
	}
	if p.ScoreLastNameOnly <= 0 {
		p.ScoreLastNameOnly = d.ScoreLastNameOnly
	}
	if p.ScorePartialLastName <= 0 {
		p.ScorePartialLastName = d.ScorePartialLastName
	}
	if p.FirstNameSimilarity <= 0 || p.FirstNameSimilarity > 1 {
		p.FirstNameSimilarity = d.FirstNameSimilarity
	}
	if p.TopN <= 0 {
		p.TopN = d.TopN
	}

	return p
}
