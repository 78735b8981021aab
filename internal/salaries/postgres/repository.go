// Package postgres provides PostgreSQL implementation of the salaries repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rayanh/salary-tracker/internal/domain"
	"github.com/rayanh/salary-tracker/internal/pkg/postgres"
)

const uniqueViolation = "23505"

// Repository implements salaries.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSalary inserts a salary record. The unique (user_id, year, month)
// constraint turns a duplicate month into ErrEntityAlreadyExists, which
// also settles concurrent inserts of the same month.
func (r *Repository) CreateSalary(ctx context.Context, salary *domain.Salary) error {
	query := `
		INSERT INTO salaries (user_id, year, month, gross, bonus, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := postgres.QuerierFrom(ctx, r.db).QueryRow(ctx, query,
		salary.UserID,
		salary.Month.Year,
		int(salary.Month.Month),
		salary.Gross,
		salary.Bonus,
		salary.Currency,
	).Scan(&salary.ID, &salary.CreatedAt, &salary.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: salary for %s already recorded", domain.ErrEntityAlreadyExists, salary.Month)
		}
		return fmt.Errorf("create salary: %w", err)
	}
	return nil
}

// GetSalary retrieves a salary record by id within the user's namespace.
func (r *Repository) GetSalary(ctx context.Context, userID, id int64) (*domain.Salary, error) {
	query := `
		SELECT id, user_id, year, month, gross, bonus, currency, created_at, updated_at
		FROM salaries
		WHERE id = $1 AND user_id = $2
	`
	salary, err := scanSalary(postgres.QuerierFrom(ctx, r.db).QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf("get salary: %w", err)
	}
	return salary, nil
}

// ListSalaries retrieves the user's salary records, newest period first.
func (r *Repository) ListSalaries(ctx context.Context, userID int64) ([]*domain.Salary, error) {
	query := `
		SELECT id, user_id, year, month, gross, bonus, currency, created_at, updated_at
		FROM salaries
		WHERE user_id = $1
		ORDER BY year DESC, month DESC
	`
	rows, err := postgres.QuerierFrom(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list salaries: %w", err)
	}
	defer rows.Close()

	salaries := make([]*domain.Salary, 0)
	for rows.Next() {
		salary, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan salary: %w", err)
		}
		salaries = append(salaries, salary)
	}

	return salaries, rows.Err()
}

// UpdateSalary writes the mutable fields of a salary record. The write is
// owner-scoped like the lookups.
func (r *Repository) UpdateSalary(ctx context.Context, salary *domain.Salary) error {
	query := `
		UPDATE salaries
		SET gross = $3, bonus = $4, currency = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err := postgres.QuerierFrom(ctx, r.db).QueryRow(ctx, query,
		salary.ID,
		salary.UserID,
		salary.Gross,
		salary.Bonus,
		salary.Currency,
	).Scan(&salary.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEntityNotFound
		}
		return fmt.Errorf("update salary: %w", err)
	}
	return nil
}

// DeleteSalary removes a salary record within the user's namespace.
func (r *Repository) DeleteSalary(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM salaries WHERE id = $1 AND user_id = $2`
	result, err := postgres.QuerierFrom(ctx, r.db).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete salary: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

func scanSalary(row pgx.Row) (*domain.Salary, error) {
	var (
		salary domain.Salary
		year   int
		month  int
	)
	err := row.Scan(
		&salary.ID,
		&salary.UserID,
		&year,
		&month,
		&salary.Gross,
		&salary.Bonus,
		&salary.Currency,
		&salary.CreatedAt,
		&salary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	salary.Month = domain.Month{Year: year, Month: time.Month(month)}
	return &salary, nil
}
