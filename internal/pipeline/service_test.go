package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/common"
	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/match"
	"github.com/victoedr/idcard-verifier/internal/ocr"
)

const cardText = "DRIVER LICENSE DMV\nDL: B1234567\nNAME: James Smith"

type stubDrivers struct {
	byNumber []entity.DriverRecord
	byLast   []entity.DriverRecord
	all      []entity.DriverRecord
	err      error
	calls    []string
}

func (s *stubDrivers) FindByLastName(_ context.Context, lastName string, _ bool) ([]entity.DriverRecord, error) {
	s.calls = append(s.calls, "last:"+lastName)
	return s.byLast, s.err
}

func (s *stubDrivers) FindByLicenseNumber(_ context.Context, number string, _ bool) ([]entity.DriverRecord, error) {
	s.calls = append(s.calls, "number:"+number)
	return s.byNumber, s.err
}

func (s *stubDrivers) AllDrivers(_ context.Context, _ bool) ([]entity.DriverRecord, error) {
	s.calls = append(s.calls, "all")
	return s.all, s.err
}

func (s *stubDrivers) Insert(_ context.Context, _ *entity.DriverRecord) error { return nil }

func (s *stubDrivers) Count(_ context.Context) (int, error) { return len(s.all), nil }

type stubExtractor struct {
	cands []ocr.Candidate
	err   error
}

func (s *stubExtractor) ExtractCandidates(_ context.Context, _ string) ([]ocr.Candidate, error) {
	return s.cands, s.err
}

func newVerifier(t *testing.T, tx ocr.TextExtractor, drivers *stubDrivers) *Verifier {
	t.Helper()
	return NewVerifier(nil, VerifierConfig{}, tx, drivers, nil, nil, nil)
}

func TestVerifyTextNumberFirst(t *testing.T) {
	drivers := &stubDrivers{
		byNumber: []entity.DriverRecord{
			{ID: 1, LicenseNumber: "B1234567", FirstName: "James", LastName: "Smith", Status: "active"},
		},
	}
	v := newVerifier(t, nil, drivers)

	rep, err := v.VerifyText(context.Background(), cardText)
	require.NoError(t, err)

	assert.Equal(t, []string{"number:B1234567"}, drivers.calls)
	require.Len(t, rep.Matches, 1)
	assert.Equal(t, 100, rep.Matches[0].Score)
	assert.Equal(t, match.BandExactNumber, rep.Matches[0].Band)

	assert.NotEqual(t, uuid.Nil, rep.RunID)
	assert.Equal(t, string(constants.DriversLicence), rep.CardType)
	assert.True(t, rep.LoginAllowed)
	assert.InDelta(t, 1.0, rep.NameSimilarity, 1e-9)
	assert.GreaterOrEqual(t, rep.ElapsedMS, int64(0))
}

func TestVerifyTextNumberMissFallsBackToName(t *testing.T) {
	drivers := &stubDrivers{
		byLast: []entity.DriverRecord{
			{ID: 2, LicenseNumber: "Z9999999", FirstName: "James", LastName: "Smith", Status: "active"},
		},
	}
	v := newVerifier(t, nil, drivers)

	rep, err := v.VerifyText(context.Background(), cardText)
	require.NoError(t, err)

	assert.Equal(t, []string{"number:B1234567", "last:Smith"}, drivers.calls)
	require.Len(t, rep.Matches, 1)
	assert.Equal(t, 100, rep.Matches[0].Score)
	assert.Equal(t, match.BandExactFirstName, rep.Matches[0].Band)
}

func TestVerifyTextNoFieldsQueriesAllRows(t *testing.T) {
	all := make([]entity.DriverRecord, 8)
	for i := range all {
		all[i] = entity.DriverRecord{ID: int64(i + 1), LastName: "Row", Status: "active"}
	}
	drivers := &stubDrivers{all: all}
	v := newVerifier(t, nil, drivers)

	rep, err := v.VerifyText(context.Background(), "ghana")
	require.NoError(t, err)

	assert.Equal(t, []string{"all"}, drivers.calls)
	assert.Equal(t, string(constants.GhanaCard), rep.CardType)
	assert.Equal(t, 40.0, rep.Confidence)
	assert.True(t, rep.LoginAllowed)
	require.Len(t, rep.Matches, 5)
	for _, cand := range rep.Matches {
		assert.Equal(t, 80, cand.Score)
	}
	assert.Zero(t, rep.NameSimilarity)
}

func TestVerifyTextStorageFailure(t *testing.T) {
	drivers := &stubDrivers{err: common.StorageError("query drivers", errors.New("database file missing"))}
	v := newVerifier(t, nil, drivers)

	_, err := v.VerifyText(context.Background(), "ghana")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestVerifyImagePicksBestPass(t *testing.T) {
	tx := &stubExtractor{cands: []ocr.Candidate{
		{Text: "random noise", Pass: "preprocessed-block"},
		{Text: cardText, Pass: "raw-block"},
		{Text: "ghana", Pass: "preprocessed-auto", Warnings: []string{"preprocessing unavailable: convert missing"}},
	}}
	drivers := &stubDrivers{
		byNumber: []entity.DriverRecord{
			{ID: 1, LicenseNumber: "B1234567", FirstName: "James", LastName: "Smith", Status: "active"},
		},
	}
	v := newVerifier(t, tx, drivers)

	rep, err := v.VerifyImage(context.Background(), "card.png")
	require.NoError(t, err)

	assert.Equal(t, string(constants.DriversLicence), rep.CardType)
	assert.Equal(t, "B1234567", rep.Fields.LicenseNumber)
	require.Len(t, rep.Matches, 1)
	assert.True(t, rep.LoginAllowed)
	assert.Equal(t, []string{"preprocessing unavailable: convert missing"}, rep.Warnings)
}

func TestVerifyImageOCRFailure(t *testing.T) {
	tx := &stubExtractor{err: common.OCRError("tesseract exec", errors.New("executable file not found"))}
	v := newVerifier(t, tx, &stubDrivers{})

	_, err := v.VerifyImage(context.Background(), "card.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCRUnavailable)
}

func TestVerifyImageWithoutExtractor(t *testing.T) {
	v := newVerifier(t, nil, &stubDrivers{})

	_, err := v.VerifyImage(context.Background(), "card.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCRUnavailable)
}

func TestVerifierGateDenies(t *testing.T) {
	v := NewVerifier(nil, VerifierConfig{Gate: Gate{MinConfidence: 60}}, nil, &stubDrivers{}, nil, nil, nil)

	rep, err := v.VerifyText(context.Background(), "ghana")
	require.NoError(t, err)
	assert.Equal(t, 40.0, rep.Confidence)
	assert.False(t, rep.LoginAllowed)
}
