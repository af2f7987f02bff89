package repository

import (
	"context"

	"github.com/payamancoders/trustcheck/internal/domain"
)

// EmployerRepository persists employer accounts and their embedded verification record.
type EmployerRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Employer, error)
	ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.Employer, error)
	// UpdateVerification replaces the verification record if the stored version still equals
	// expectedVersion, and returns the new version. A stale version yields domain.ErrConflict.
	UpdateVerification(ctx context.Context, id int64, record domain.VerificationRecord, expectedVersion int64) (int64, error)
	// Save creates or updates the company profile fields. The verification record is left untouched
	// on update.
	Save(ctx context.Context, employer domain.Employer) (domain.Employer, error)
}

// EmployerLocker serialises read-modify-write cycles on one employer.
type EmployerLocker interface {
	// Acquire blocks briefly for the lock and returns its release func.
	// domain.ErrLockNotObtained is returned when another holder keeps it.
	Acquire(ctx context.Context, employerID int64) (release func(), err error)
}
