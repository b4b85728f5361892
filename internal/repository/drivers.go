package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/victoedr/idcard-verifier/constants"
	"github.com/victoedr/idcard-verifier/internal/common"
	"github.com/victoedr/idcard-verifier/internal/entity"
)

// DriverRepository is the storage collaborator consumed by the verification
// service. Rows always come back ordered by id so "original row order" is a
// stable notion for tie-breaking downstream.
type DriverRepository interface {
	FindByLastName(ctx context.Context, lastName string, activeOnly bool) ([]entity.DriverRecord, error)
	FindByLicenseNumber(ctx context.Context, number string, activeOnly bool) ([]entity.DriverRecord, error)
	AllDrivers(ctx context.Context, activeOnly bool) ([]entity.DriverRecord, error)
	Insert(ctx context.Context, rec *entity.DriverRecord) error
	Count(ctx context.Context) (int, error)
}

type driverRepository struct {
	store  *Store
	logger *slog.Logger
}

func NewDriverRepository(store *Store, logger *slog.Logger) DriverRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &driverRepository{
		store:  store,
		logger: logger,
	}
}

const driverColumns = "id, license_number, first_name, last_name, date_of_birth, issue_date, expiry_date, address, license_class, status"

func (r *driverRepository) FindByLastName(ctx context.Context, lastName string, activeOnly bool) ([]entity.DriverRecord, error) {
	query := "SELECT " + driverColumns + " FROM drivers WHERE lower(last_name) = lower(?)"
	args := []any{lastName}
	if activeOnly {
		query += " AND status = ?"
		args = append(args, string(constants.StatusActive))
	}
	query += " ORDER BY id"
	return r.queryDrivers(ctx, "find by last name", query, args...)
}

// FindByLicenseNumber fetches the candidate superset: every row whose stored
// number contains the extracted one. Exact/prefix/fragment ranking happens in
// the matcher, not in SQL.
func (r *driverRepository) FindByLicenseNumber(ctx context.Context, number string, activeOnly bool) ([]entity.DriverRecord, error) {
	query := "SELECT " + driverColumns + " FROM drivers WHERE lower(license_number) LIKE '%' || lower(?) || '%'"
	args := []any{number}
	if activeOnly {
		query += " AND status = ?"
		args = append(args, string(constants.StatusActive))
	}
	query += " ORDER BY id"
	return r.queryDrivers(ctx, "find by license number", query, args...)
}

func (r *driverRepository) AllDrivers(ctx context.Context, activeOnly bool) ([]entity.DriverRecord, error) {
	query := "SELECT " + driverColumns + " FROM drivers"
	var args []any
	if activeOnly {
		query += " WHERE status = ?"
		args = append(args, string(constants.StatusActive))
	}
	query += " ORDER BY id"
	return r.queryDrivers(ctx, "list drivers", query, args...)
}

func (r *driverRepository) Insert(ctx context.Context, rec *entity.DriverRecord) error {
	if rec.Status == "" {
		rec.Status = string(constants.StatusActive)
	}
	args := []any{
		rec.LicenseNumber,
		rec.FirstName,
		rec.LastName,
		nullableString(rec.DateOfBirth),
		nullableString(rec.IssueDate),
		nullableString(rec.ExpiryDate),
		nullableString(rec.Address),
		nullableString(rec.LicenseClass),
		rec.Status,
	}
	const insert = "INSERT INTO drivers (license_number, first_name, last_name, date_of_birth, issue_date, expiry_date, address, license_class, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"

	if r.store.dialect == DialectPostgres {
		query := r.store.rebind(insert + " RETURNING id")
		if err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID); err != nil {
			r.logger.Error("failed to insert driver", "license_number", rec.LicenseNumber, "error", err)
			return common.StorageError("insert driver", err)
		}
		return nil
	}

	res, err := r.store.db.ExecContext(ctx, insert, args...)
	if err != nil {
		r.logger.Error("failed to insert driver", "license_number", rec.LicenseNumber, "error", err)
		return common.StorageError("insert driver", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return common.StorageError("last insert id", err)
	}
	rec.ID = id
	return nil
}

func (r *driverRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM drivers").Scan(&n); err != nil {
		return 0, common.StorageError("count drivers", err)
	}
	return n, nil
}

func (r *driverRepository) queryDrivers(ctx context.Context, op, query string, args ...any) ([]entity.DriverRecord, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(query), args...)
	if err != nil {
		r.logger.Error("driver query failed", "op", op, "error", err)
		return nil, common.StorageError(op, err)
	}
	defer rows.Close()

	var records []entity.DriverRecord
	for rows.Next() {
		rec, err := scanDriver(rows)
		if err != nil {
			return nil, common.StorageError(op, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError(op, err)
	}
	return records, nil
}

func scanDriver(rows *sql.Rows) (entity.DriverRecord, error) {
	var rec entity.DriverRecord
	var dob, issue, expiry, addr, class sql.NullString
	if err := rows.Scan(
		&rec.ID,
		&rec.LicenseNumber,
		&rec.FirstName,
		&rec.LastName,
		&dob,
		&issue,
		&expiry,
		&addr,
		&class,
		&rec.Status,
	); err != nil {
		return entity.DriverRecord{}, err
	}
	rec.DateOfBirth = dob.String
	rec.IssueDate = issue.String
	rec.ExpiryDate = expiry.String
	rec.Address = addr.String
	rec.LicenseClass = class.String
	return rec, nil
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
