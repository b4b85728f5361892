package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/fields"
	"github.com/victoedr/idcard-verifier/internal/match"
	"github.com/victoedr/idcard-verifier/internal/pipeline"
)

type stubDrivers struct {
	recs []entity.DriverRecord
	err  error
}

func (s *stubDrivers) FindByLastName(_ context.Context, _ string, _ bool) ([]entity.DriverRecord, error) {
	return nil, s.err
}

func (s *stubDrivers) FindByLicenseNumber(_ context.Context, _ string, _ bool) ([]entity.DriverRecord, error) {
	return nil, s.err
}

func (s *stubDrivers) AllDrivers(_ context.Context, _ bool) ([]entity.DriverRecord, error) {
	return s.recs, s.err
}

func (s *stubDrivers) Insert(_ context.Context, _ *entity.DriverRecord) error { return s.err }

func (s *stubDrivers) Count(_ context.Context) (int, error) { return len(s.recs), nil }

func TestDriversXLSX(t *testing.T) {
	repo := &stubDrivers{recs: []entity.DriverRecord{
		{ID: 1, LicenseNumber: "B1234567", FirstName: "James", LastName: "Smith", ExpiryDate: "2027-03-01", Status: "active"},
		{ID: 2, LicenseNumber: "GHA445566", FirstName: "Ama", LastName: "Mensah", Status: "expired"},
	}}
	s := NewService(repo, nil)

	b, err := s.DriversXLSX(context.Background(), false)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue("Drivers", ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "ID", cell("A1"))
	assert.Equal(t, "License Number", cell("B1"))
	assert.Equal(t, "B1234567", cell("B2"))
	assert.Equal(t, "Smith", cell("D2"))
	assert.Equal(t, "2027-03-01", cell("G2"))
	assert.Equal(t, "GHA445566", cell("B3"))
	assert.Equal(t, "expired", cell("J3"))
	assert.Empty(t, cell("B4"))
}

func TestDriversXLSXStorageFailure(t *testing.T) {
	s := NewService(&stubDrivers{err: errors.New("database file missing")}, nil)

	_, err := s.DriversXLSX(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query drivers")
}

func TestReportXLSX(t *testing.T) {
	rep := &pipeline.Report{
		RunID:         uuid.New(),
		CardType:      "Drivers Licence",
		Confidence:    45,
		KeywordsFound: []string{"driver", "license", "dmv"},
		Fields:        fields.Fields{LicenseNumber: "B1234567", FirstName: "James", LastName: "Smith"},
		Matches: []match.Candidate{
			{
				Driver: entity.DriverRecord{ID: 1, LicenseNumber: "B1234567", FirstName: "James", LastName: "Smith", Status: "active"},
				Score:  100,
				Band:   match.BandExactNumber,
			},
		},
		LoginAllowed:   true,
		NameSimilarity: 1,
		ElapsedMS:      12,
	}
	s := NewService(&stubDrivers{}, nil)

	b, err := s.ReportXLSX(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue("Verification", ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, rep.RunID.String(), cell("B1"))
	assert.Equal(t, "Drivers Licence", cell("B2"))
	assert.Equal(t, "45", cell("B3"))
	assert.Equal(t, "driver, license, dmv", cell("B4"))
	assert.Equal(t, "B1234567", cell("B5"))
	assert.Equal(t, "TRUE", cell("B8"))

	// Match table starts after the summary block and a spacer row.
	assert.Equal(t, "Rank", cell("A12"))
	assert.Equal(t, "100", cell("B13"))
	assert.Equal(t, match.BandExactNumber, cell("C13"))
	assert.Equal(t, "B1234567", cell("D13"))
}
