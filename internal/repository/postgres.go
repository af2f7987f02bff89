package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payamancoders/trustcheck/internal/domain"
)

// Compile-time interface assertions.
var _ EmployerRepository = (*PostgresEmployerRepo)(nil)

// PostgresEmployerRepo implements EmployerRepository. The verification record is stored as a
// JSONB document next to the relational profile columns.
type PostgresEmployerRepo struct {
	db *pgxpool.Pool
}

func NewPostgresEmployerRepo(pool *pgxpool.Pool) *PostgresEmployerRepo {
	return &PostgresEmployerRepo{db: pool}
}

const employerColumns = `id, name, email, company_name, website, description, industry, founded_year, location,
created_at, updated_at, verification, version`

func (r *PostgresEmployerRepo) GetByID(ctx context.Context, id int64) (domain.Employer, error) {
	query := `SELECT ` + employerColumns + ` FROM employers WHERE id = $1 LIMIT 1`

	employer, err := scanEmployer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Employer{}, fmt.Errorf("get employer %d: %w", id, domain.ErrEmployerNotFound)
	}
	if err != nil {
		return domain.Employer{}, fmt.Errorf("get employer: %w", err)
	}
	return employer, nil
}

func (r *PostgresEmployerRepo) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.Employer, error) {
	query := `SELECT ` + employerColumns + `
FROM employers
WHERE COALESCE(verification->>'status', 'unverified') = $1
ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	defer rows.Close()

	employers := make([]domain.Employer, 0)
	for rows.Next() {
		employer, err := scanEmployer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employer: %w", err)
		}
		employers = append(employers, employer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	return employers, nil
}

const updateVerificationSQL = `UPDATE employers
SET verification = $2, version = version + 1, updated_at = NOW()
WHERE id = $1 AND version = $3
RETURNING version`

func (r *PostgresEmployerRepo) UpdateVerification(ctx context.Context, id int64, record domain.VerificationRecord, expectedVersion int64) (int64, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("encode verification: %w", err)
	}

	var version int64
	err = r.db.QueryRow(ctx, updateVerificationSQL, id, payload, expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("update verification: %w", err)
	}

	// no row matched: either the employer is gone or the version moved
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check employer: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("update employer %d: %w", id, domain.ErrEmployerNotFound)
	}
	return 0, fmt.Errorf("update employer %d at version %d: %w", id, expectedVersion, domain.ErrConflict)
}

const saveEmployerSQL = `INSERT INTO employers (id, name, email, company_name, website, description, industry, founded_year, location, verification)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	email = EXCLUDED.email,
	company_name = EXCLUDED.company_name,
	website = EXCLUDED.website,
	description = EXCLUDED.description,
	industry = EXCLUDED.industry,
	founded_year = EXCLUDED.founded_year,
	location = EXCLUDED.location,
	updated_at = NOW()
RETURNING ` + employerColumns

func (r *PostgresEmployerRepo) Save(ctx context.Context, employer domain.Employer) (domain.Employer, error) {
	record := employer.Verification
	if record.Status == "" {
		record = domain.NewVerificationRecord()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return domain.Employer{}, fmt.Errorf("encode verification: %w", err)
	}

	saved, err := scanEmployer(r.db.QueryRow(ctx, saveEmployerSQL,
		employer.ID,
		employer.Name,
		employer.Email,
		employer.CompanyName,
		employer.Website,
		employer.Description,
		employer.Industry,
		employer.FoundedYear,
		employer.Location,
		payload,
	))
	if err != nil {
		return domain.Employer{}, fmt.Errorf("save employer: %w", err)
	}
	return saved, nil
}

func scanEmployer(row pgx.Row) (domain.Employer, error) {
	var (
		e   domain.Employer
		raw []byte
	)
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.CompanyName,
		&e.Website,
		&e.Description,
		&e.Industry,
		&e.FoundedYear,
		&e.Location,
		&e.CreatedAt,
		&e.UpdatedAt,
		&raw,
		&e.Version,
	); err != nil {
		return domain.Employer{}, err
	}

	record, err := decodeVerification(raw)
	if err != nil {
		return domain.Employer{}, err
	}
	e.Verification = record
	return e, nil
}

func decodeVerification(raw []byte) (domain.VerificationRecord, error) {
	record := domain.NewVerificationRecord()
	if len(raw) == 0 {
		return record, nil
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("decode verification: %w", err)
	}
	if !record.Status.Valid() {
		record.Status = domain.StatusUnverified
	}
	if record.Flags == nil {
		record.Flags = []domain.Flag{}
	}
	if record.Documents == nil {
		record.Documents = []domain.Document{}
	}
	return record, nil
}
