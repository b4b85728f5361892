package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/victoedr/idcard-verifier/internal/pipeline"
	"github.com/victoedr/idcard-verifier/internal/repository"
)

// Service is a tiny façade over the driver repository that produces XLSX
// bytes for exports.
type Service struct {
	drivers repository.DriverRepository
	logger  *slog.Logger
}

func NewService(drivers repository.DriverRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{drivers: drivers, logger: logger}
}

// DriversXLSX returns an XLSX workbook (as bytes) listing the driver table,
// optionally restricted to active licenses.
func (s *Service) DriversXLSX(ctx context.Context, activeOnly bool) ([]byte, error) {
	start := time.Now()

	recs, err := s.drivers.AllDrivers(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query drivers: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Drivers"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"ID",
		"License Number",
		"First Name",
		"Last Name",
		"Date of Birth",
		"Issue Date",
		"Expiry Date",
		"Address",
		"Class",
		"Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, d.ID)
		write(2, d.LicenseNumber)
		write(3, d.FirstName)
		write(4, d.LastName)
		write(5, d.DateOfBirth)
		write(6, d.IssueDate)
		write(7, d.ExpiryDate)
		write(8, truncate(d.Address, 80))
		write(9, d.LicenseClass)
		write(10, d.Status)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	_ = f.SetColWidth(sheet, "E", "G", 14)
	_ = f.SetColWidth(sheet, "H", "H", 40)
	_ = f.SetColWidth(sheet, "I", "J", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.drivers.ok",
		"rows", len(recs),
		"active_only", activeOnly,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ReportXLSX returns an XLSX workbook (as bytes) for one verification run:
// a summary block followed by the ranked match table.
func (s *Service) ReportXLSX(rep *pipeline.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Verification"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return nil, err
	}

	summary := [][2]any{
		{"Run ID", rep.RunID.String()},
		{"Card Type", rep.CardType},
		{"Confidence", rep.Confidence},
		{"Keywords Found", strings.Join(rep.KeywordsFound, ", ")},
		{"License Number", rep.Fields.LicenseNumber},
		{"First Name", rep.Fields.FirstName},
		{"Last Name", rep.Fields.LastName},
		{"Login Allowed", rep.LoginAllowed},
		{"Name Similarity", rep.NameSimilarity},
		{"Elapsed MS", rep.ElapsedMS},
	}
	row := 1
	for _, kv := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, row)
		valCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, keyCell, kv[0])
		_ = f.SetCellValue(sheet, valCell, kv[1])
		row++
	}

	row++ // blank spacer row
	headers := []string{"Rank", "Score", "Band", "License Number", "First Name", "Last Name", "Status", "Expiry Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, h)
	}
	row++

	for i, cand := range rep.Matches {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, i+1)
		write(2, cand.Score)
		write(3, cand.Band)
		write(4, cand.Driver.LicenseNumber)
		write(5, cand.Driver.FirstName)
		write(6, cand.Driver.LastName)
		write(7, cand.Driver.Status)
		write(8, cand.Driver.ExpiryDate)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "C", "D", 18)
	_ = f.SetColWidth(sheet, "E", "F", 16)
	_ = f.SetColWidth(sheet, "G", "H", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.report.ok",
		"run_id", rep.RunID.String(),
		"matches", len(rep.Matches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// renameDefaultSheet points the workbook's default sheet at name.
func renameDefaultSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
