// Package salaries implements per-user monthly salary records.
package salaries

import (
	"context"

	"github.com/rayanh/salary-tracker/internal/domain"
)

// Repository defines persistence operations for salary records. All
// lookups are scoped to the owning user; a record belonging to someone
// else is indistinguishable from a missing one.
type Repository interface {
	CreateSalary(ctx context.Context, salary *domain.Salary) error
	GetSalary(ctx context.Context, userID, id int64) (*domain.Salary, error)
	ListSalaries(ctx context.Context, userID int64) ([]*domain.Salary, error)
	UpdateSalary(ctx context.Context, salary *domain.Salary) error
	DeleteSalary(ctx context.Context, userID, id int64) error
}

// TxManager opens a unit of work around a service operation.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements salary business logic.
type Service struct {
	repo Repository
	tx   TxManager
}

// NewService creates a new salaries service.
func NewService(repo Repository, tx TxManager) *Service {
	return &Service{repo: repo, tx: tx}
}

// CreateInput contains the fields for a new salary record.
type CreateInput struct {
	Month    domain.Month
	Gross    float64
	Bonus    float64
	Currency string
}

// Create inserts a salary record for the user. At most one record per
// month can exist; under concurrent inserts of the same month the
// database constraint lets exactly one through.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (*domain.Salary, error) {
	salary := &domain.Salary{
		UserID:   userID,
		Month:    input.Month,
		Gross:    input.Gross,
		Bonus:    input.Bonus,
		Currency: input.Currency,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateSalary(ctx, salary)
	})
	if err != nil {
		return nil, err
	}
	return salary, nil
}

// Get returns one of the user's salary records by id.
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Salary, error) {
	var salary *domain.Salary
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		salary, err = s.repo.GetSalary(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return salary, nil
}

// List returns all of the user's salary records.
func (s *Service) List(ctx context.Context, userID int64) ([]*domain.Salary, error) {
	var salaries []*domain.Salary
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		salaries, err = s.repo.ListSalaries(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return salaries, nil
}

// UpdateInput is a partial patch. Nil fields keep their stored values.
// The month is immutable; changing the period is a delete plus insert.
type UpdateInput struct {
	Gross    *float64
	Bonus    *float64
	Currency *string
}

// Update patches the user's salary record. Read and write share one unit
// of work so a concurrent update cannot interleave between them.
func (s *Service) Update(ctx context.Context, userID, id int64, input UpdateInput) (*domain.Salary, error) {
	var salary *domain.Salary
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetSalary(ctx, userID, id)
		if err != nil {
			return err
		}

		if input.Gross != nil {
			current.Gross = *input.Gross
		}
		if input.Bonus != nil {
			current.Bonus = *input.Bonus
		}
		if input.Currency != nil {
			current.Currency = *input.Currency
		}

		if err := s.repo.UpdateSalary(ctx, current); err != nil {
			return err
		}
		salary = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return salary, nil
}

// Delete removes the user's salary record. A second delete of the same
// id reports not found and changes nothing.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.repo.DeleteSalary(ctx, userID, id)
	})
}
