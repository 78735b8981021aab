// Package identity implements registration, login, and user management.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rayanh/salary-tracker/internal/domain"
	"github.com/rayanh/salary-tracker/internal/pkg/ctxlog"
)

// Repository defines persistence operations for users. Implementations
// pick up the unit of work from the context when one is open.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TxManager opens a unit of work around a service operation.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements identity business logic.
type Service struct {
	repo   Repository
	tx     TxManager
	issuer TokenIssuer
}

// NewService creates a new identity service.
func NewService(repo Repository, tx TxManager, issuer TokenIssuer) *Service {
	return &Service{repo: repo, tx: tx, issuer: issuer}
}

// RegisterInput contains registration data.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates a new user with role USER. The password is hashed
// before the unit of work opens; only the insert runs inside it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Password != input.ConfirmPassword {
		return nil, domain.ErrPasswordsDoNotMatch
	}

	username := input.Username
	if username == "" {
		username, _, _ = strings.Cut(input.Email, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// LoginInput contains login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller. The credential check runs
// inside a unit of work; token issuance stays outside it.
func (s *Service) Login(ctx context.Context, input LoginInput) (string, *domain.User, error) {
	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.GetUserByEmail(ctx, input.Email)
		if err != nil {
			if errors.Is(err, domain.ErrEntityNotFound) {
				return domain.ErrAuthFailed
			}
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(input.Password)); err != nil {
			return domain.ErrAuthFailed
		}
		user = found
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// GetUserByID returns a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.GetUserByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.repo.ListUsers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user and, via cascade, their salary records.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.repo.DeleteUser(ctx, id)
	})
}

// SeedAdmin ensures an admin account exists for the configured
// credentials. A no-op when the email is already taken or when seeding
// is not configured.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	username, _, _ := strings.Cut(email, "@")
	admin := &domain.User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}

	var created bool
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetUserByEmail(ctx, admin.Email); err == nil {
			return nil
		} else if !errors.Is(err, domain.ErrEntityNotFound) {
			return err
		}
		if err := s.repo.CreateUser(ctx, admin); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		// A concurrent replica may win the insert race.
		if errors.Is(err, domain.ErrEntityAlreadyExists) {
			return nil
		}
		return err
	}

	if created {
		ctxlog.FromContext(ctx).Info("seeded admin user", "email", admin.Email)
	}
	return nil
}
