//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanh/salary-tracker/internal/domain"
	pgtx "github.com/rayanh/salary-tracker/internal/pkg/postgres"
	salariespg "github.com/rayanh/salary-tracker/internal/salaries/postgres"
	"github.com/rayanh/salary-tracker/internal/testutil"
)

func insertUserRow(t *testing.T) int64 {
	t.Helper()

	var id int64
	require.NoError(t, testDB.QueryRow(t.Context(),
		`INSERT INTO users (username, email, password_hash, role)
		 VALUES ($1, $2, $3, 'USER') RETURNING id`,
		"uow", testutil.RandomEmail("uow"), "not-a-real-hash").Scan(&id))
	return id
}

func countSalaries(t *testing.T, userID int64) int {
	t.Helper()

	var n int
	require.NoError(t, testDB.QueryRow(t.Context(),
		"SELECT COUNT(*) FROM salaries WHERE user_id = $1", userID).Scan(&n))
	return n
}

func TestUnitOfWork_CommitPersists(t *testing.T) {
	userID := insertUserRow(t)
	repo := salariespg.NewRepository(testDB)

	salary := &domain.Salary{
		UserID:   userID,
		Month:    domain.Month{Year: 2024, Month: time.March},
		Gross:    3000,
		Currency: "EUR",
	}
	err := pgtx.RunInTx(t.Context(), testDB, func(ctx context.Context) error {
		return repo.CreateSalary(ctx, salary)
	})
	require.NoError(t, err)
	assert.NotZero(t, salary.ID)
	assert.Equal(t, 1, countSalaries(t, userID))
}

func TestUnitOfWork_RollbackOnError(t *testing.T) {
	userID := insertUserRow(t)
	repo := salariespg.NewRepository(testDB)

	boom := errors.New("boom")
	err := pgtx.RunInTx(t.Context(), testDB, func(ctx context.Context) error {
		if err := repo.CreateSalary(ctx, &domain.Salary{
			UserID:   userID,
			Month:    domain.Month{Year: 2024, Month: time.March},
			Gross:    3000,
			Currency: "EUR",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The insert was rolled back, nothing was written.
	assert.Equal(t, 0, countSalaries(t, userID))

	// The connection came back to the pool; the next unit of work
	// can insert the same month and commit.
	err = pgtx.RunInTx(t.Context(), testDB, func(ctx context.Context) error {
		return repo.CreateSalary(ctx, &domain.Salary{
			UserID:   userID,
			Month:    domain.Month{Year: 2024, Month: time.March},
			Gross:    3000,
			Currency: "EUR",
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countSalaries(t, userID))
}

func TestUnitOfWork_NestedRejected(t *testing.T) {
	err := pgtx.RunInTx(t.Context(), testDB, func(ctx context.Context) error {
		return pgtx.RunInTx(ctx, testDB, func(ctx context.Context) error {
			return nil
		})
	})
	assert.ErrorIs(t, err, pgtx.ErrNestedTx)
}

func TestUnitOfWork_ConcurrentSameMonthInsert(t *testing.T) {
	userID := insertUserRow(t)
	repo := salariespg.NewRepository(testDB)
	ctx := t.Context()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- pgtx.RunInTx(ctx, testDB, func(ctx context.Context) error {
				return repo.CreateSalary(ctx, &domain.Salary{
					UserID:   userID,
					Month:    domain.Month{Year: 2024, Month: time.May},
					Gross:    3000,
					Currency: "EUR",
				})
			})
		}()
	}

	var failed []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failed = append(failed, err)
		}
	}

	// The unique (user_id, year, month) constraint lets exactly one through.
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], domain.ErrEntityAlreadyExists)
	assert.Equal(t, 1, countSalaries(t, userID))
}
