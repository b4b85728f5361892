package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/victoedr/idcard-verifier/internal/common"
	"github.com/victoedr/idcard-verifier/internal/entity"
	"github.com/victoedr/idcard-verifier/internal/repository"
)

// RowResult records the fate of one import row.
type RowResult struct {
	Index         int    `json:"index"`
	LicenseNumber string `json:"license_number,omitempty"`
	Err           string `json:"err,omitempty"`
}

// Stats aggregates an import run.
type Stats struct {
	Scanned  uint32 `json:"scanned"`
	Inserted uint32 `json:"inserted"`
	Invalid  uint32 `json:"invalid"`
	Failed   uint32 `json:"failed"`
}

// Importer loads driver records from JSON into the store.
type Importer struct {
	drivers repository.DriverRepository
	logger  *slog.Logger
}

func NewImporter(drivers repository.DriverRepository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{drivers: drivers, logger: logger}
}

// ImportJSON reads a JSON array of driver rows from r, validates each row
// against the driver schema, and inserts the valid ones. Rows that fail
// validation count as Invalid; rows the store rejects (duplicate license
// number, storage down) count as Failed. One bad row never aborts the run.
func (im *Importer) ImportJSON(ctx context.Context, r io.Reader) ([]RowResult, Stats, error) {
	var rows []json.RawMessage
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, Stats{}, fmt.Errorf("decode import file: %w: %w", common.ErrInvalidInput, err)
	}

	schema, err := compileSchema(BuildDriverJSONSchema())
	if err != nil {
		return nil, Stats{}, fmt.Errorf("compile driver schema: %w", err)
	}

	var results []RowResult
	var stats Stats
	for i, raw := range rows {
		stats.Scanned++

		if err := validateAgainstSchema(schema, raw); err != nil {
			results = append(results, RowResult{Index: i, Err: err.Error()})
			stats.Invalid++
			continue
		}

		var rec entity.DriverRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			results = append(results, RowResult{Index: i, Err: err.Error()})
			stats.Invalid++
			continue
		}

		if err := im.drivers.Insert(ctx, &rec); err != nil {
			im.logger.Warn("ingest.import.row_failed", "index", i, "license_number", rec.LicenseNumber, "err", err)
			results = append(results, RowResult{Index: i, LicenseNumber: rec.LicenseNumber, Err: err.Error()})
			stats.Failed++
			continue
		}
		results = append(results, RowResult{Index: i, LicenseNumber: rec.LicenseNumber})
		stats.Inserted++
	}

	im.logger.Info("ingest.import.done",
		"scanned", stats.Scanned,
		"inserted", stats.Inserted,
		"invalid", stats.Invalid,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
