package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/classify"
	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/match"
	"github.com/victoedr/idcard-verifier/internal/ocr"
)

func driver(id int64, first, last string) entity.DriverRecord {
	return entity.DriverRecord{
		ID:            id,
		LicenseNumber: fmt.Sprintf("B%07d", id),
		FirstName:     first,
		LastName:      last,
		Status:        string(constants.StatusActive),
	}
}

func TestPipelineRunComposesStages(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil)
	records := []entity.DriverRecord{
		driver(1, "James", "Smith"),
		driver(2, "Mary", "Smith"),
	}

	out := p.Run("DRIVER LICENSE DMV\nDL: B1234567\nNAME: James Smith", records)

	assert.Equal(t, string(constants.DriversLicence), out.Classification.CardType)
	assert.GreaterOrEqual(t, out.Classification.Confidence, 40.0)
	assert.Equal(t, "B1234567", out.Fields.LicenseNumber)
	assert.Equal(t, "James", out.Fields.FirstName)
	assert.Equal(t, "Smith", out.Fields.LastName)

	require.Len(t, out.Matches, 2)
	assert.Equal(t, int64(1), out.Matches[0].Driver.ID)
	assert.Equal(t, 100, out.Matches[0].Score)
	assert.Equal(t, int64(2), out.Matches[1].Driver.ID)
	assert.Equal(t, 80, out.Matches[1].Score)
}

func TestPipelineRunEmptyText(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil)

	records := make([]entity.DriverRecord, 0, 8)
	for i := int64(1); i <= 8; i++ {
		records = append(records, driver(i, "First", "Last"))
	}

	out := p.Run("", records)

	assert.Equal(t, string(constants.Unknown), out.Classification.CardType)
	assert.Zero(t, out.Classification.Confidence)
	assert.Empty(t, out.Fields.LicenseNumber)
	assert.Empty(t, out.Fields.FirstName)
	assert.Empty(t, out.Fields.LastName)

	// With no extracted fields the default policy returns the table head.
	require.Len(t, out.Matches, 5)
	for i, cand := range out.Matches {
		assert.Equal(t, int64(i+1), cand.Driver.ID)
		assert.Equal(t, 80, cand.Score)
		assert.Equal(t, match.BandLastNameOnly, cand.Band)
	}
}

func TestPipelineRunEmptyTable(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil)
	out := p.Run("NAME: James Smith", nil)
	assert.Empty(t, out.Matches)
}

func TestReduceCandidates(t *testing.T) {
	classifier := classify.NewClassifier(nil, classify.DefaultHeuristics())

	t.Run("picks the highest classification confidence", func(t *testing.T) {
		cands := []ocr.Candidate{
			{Text: "random noise", Pass: "preprocessed-block"},
			{Text: "california driver license dmv", Pass: "raw-block"},
		}
		text, res := ReduceCandidates(cands, classifier)
		assert.Equal(t, "california driver license dmv", text)
		assert.Equal(t, string(constants.DriversLicence), res.CardType)
		assert.Greater(t, res.Confidence, 0.0)
	})

	t.Run("ties keep the earliest pass", func(t *testing.T) {
		// Both classify at the 40 floor, so the first stays the winner.
		cands := []ocr.Candidate{
			{Text: "ghana", Pass: "preprocessed-block"},
			{Text: "voter", Pass: "raw-block"},
		}
		text, res := ReduceCandidates(cands, classifier)
		assert.Equal(t, "ghana", text)
		assert.Equal(t, string(constants.GhanaCard), res.CardType)
		assert.Equal(t, 40.0, res.Confidence)
	})

	t.Run("zero candidates reduce to unknown", func(t *testing.T) {
		text, res := ReduceCandidates(nil, classifier)
		assert.Empty(t, text)
		assert.Equal(t, string(constants.Unknown), res.CardType)
		assert.Zero(t, res.Confidence)
	})

	t.Run("deterministic", func(t *testing.T) {
		cands := []ocr.Candidate{
			{Text: "voter electoral commission"},
			{Text: "ghana card national identification"},
		}
		text1, res1 := ReduceCandidates(cands, classifier)
		text2, res2 := ReduceCandidates(cands, classifier)
		assert.Equal(t, text1, text2)
		assert.Equal(t, res1, res2)
	})
}

func TestGateAllow(t *testing.T) {
	gate := DefaultGate()
	assert.Equal(t, 40.0, gate.MinConfidence)

	tests := []struct {
		name string
		res  classify.Result
		want bool
	}{
		{"at threshold", classify.Result{CardType: string(constants.GhanaCard), Confidence: 40.0}, true},
		{"just under threshold", classify.Result{CardType: string(constants.GhanaCard), Confidence: 39.9}, false},
		{"well above threshold", classify.Result{CardType: string(constants.DriversLicence), Confidence: 45.0}, true},
		{"unknown type never passes", classify.Result{CardType: string(constants.Unknown), Confidence: 100.0}, false},
		{"zero result", classify.Unknown(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Allow(tt.res))
		})
	}
}
