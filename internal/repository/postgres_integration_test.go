//go:build integration

package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payamancoders/trustcheck/internal/bootstrap"
	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/repository"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL must be set for integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, bootstrap.ApplySchema(ctx, pool))
	return pool
}

func seedEmployer(t *testing.T, repo *repository.PostgresEmployerRepo, id int64) domain.Employer {
	t.Helper()

	saved, err := repo.Save(context.Background(), domain.Employer{
		ID:          id,
		Name:        "Maria Santos",
		Email:       "maria@acme-integration.test",
		CompanyName: "Acme Integration",
		Website:     "https://acme-integration.test",
		Description: "Integration test employer",
		Industry:    "Software",
		FoundedYear: 2015,
		Location:    "Cebu",
	})
	require.NoError(t, err)
	return saved
}

func TestPostgresEmployerRepo(t *testing.T) {
	pool := setupDB(t)
	repo := repository.NewPostgresEmployerRepo(pool)
	ctx := context.Background()

	id := time.Now().UnixNano()
	seeded := seedEmployer(t, repo, id)
	assert.Equal(t, domain.StatusUnverified, seeded.Verification.Status)
	assert.Equal(t, int64(0), seeded.Version)

	record := seeded.Verification.Clone()
	record.Status = domain.StatusPending
	record.TrustScore = 55
	record.Checks.ManualReviewRequired = true
	record.Flags = append(record.Flags, domain.Flag{ID: 1, Type: domain.FlagSuspiciousPattern, Description: "No company website provided", CreatedAt: time.Now().UTC()})

	version, err := repo.UpdateVerification(ctx, id, record, seeded.Version)
	require.NoError(t, err)
	assert.Equal(t, seeded.Version+1, version)

	_, err = repo.UpdateVerification(ctx, id, record, seeded.Version)
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = repo.UpdateVerification(ctx, -id, record, 0)
	require.ErrorIs(t, err, domain.ErrEmployerNotFound)

	loaded, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loaded.Verification.Status)
	assert.Equal(t, 55, loaded.Verification.TrustScore)
	assert.Len(t, loaded.Verification.Flags, 1)

	pending, err := repo.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	found := false
	for _, e := range pending {
		if e.ID == id {
			found = true
		}
	}
	assert.True(t, found)

	// profile updates keep the verification document
	seeded.CompanyName = "Acme Integration Inc"
	resaved, err := repo.Save(ctx, seeded)
	require.NoError(t, err)
	assert.Equal(t, "Acme Integration Inc", resaved.CompanyName)
	assert.Equal(t, domain.StatusPending, resaved.Verification.Status)

	_, err = repo.GetByID(ctx, -id)
	require.ErrorIs(t, err, domain.ErrEmployerNotFound)
}
