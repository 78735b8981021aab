package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rayanh/salary-tracker/internal/domain"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User
	nextID        int64
	createUserErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]*domain.User)}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	if _, ok := m.users[user.Email]; ok {
		return domain.ErrEntityAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = user
	return nil
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrEntityNotFound
}

func (m *mockRepository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

func (m *mockRepository) ListUsers(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockRepository) DeleteUser(_ context.Context, id int64) error {
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return domain.ErrEntityNotFound
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// stubIssuer implements TokenIssuer for testing.
type stubIssuer struct {
	token string
	err   error
}

func (s *stubIssuer) Issue(*domain.User) (string, error) {
	return s.token, s.err
}

func newTestService(repo Repository) (*Service, *passthroughTx) {
	tx := &passthroughTx{}
	return NewService(repo, tx, &stubIssuer{token: "signed-token"}), tx
}

func TestRegister_Success(t *testing.T) {
	repo := newMockRepository()
	service, tx := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:           "Test@Example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "Test", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, 1, tx.calls)
}

func TestRegister_ExplicitUsername(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Username:        "devone",
		Email:           "dev@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "devone", user.Username)
}

func TestRegister_PasswordsDoNotMatch(t *testing.T) {
	repo := newMockRepository()
	service, tx := newTestService(repo)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:           "dev@example.com",
		Password:        "password123",
		ConfirmPassword: "different456",
	})

	require.ErrorIs(t, err, domain.ErrPasswordsDoNotMatch)
	// Rejected before any unit of work opens; no user row is created.
	assert.Equal(t, 0, tx.calls)
	assert.Empty(t, repo.users)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)

	input := RegisterInput{
		Email:           "dev@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
	_, err := service.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = service.Register(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrEntityAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)

	registered, err := service.Register(context.Background(), RegisterInput{
		Email:           "dev@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)

	token, user, err := service.Login(context.Background(), LoginInput{
		Email:    "dev@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, registered.ID, user.ID)
}

func TestLogin_UniformFailure(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:           "dev@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)

	// Unknown email and wrong password must be indistinguishable.
	_, _, unknownErr := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	_, _, wrongErr := service.Login(context.Background(), LoginInput{
		Email:    "dev@example.com",
		Password: "wrong-password",
	})

	require.ErrorIs(t, unknownErr, domain.ErrAuthFailed)
	require.ErrorIs(t, wrongErr, domain.ErrAuthFailed)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_IssuerFailure(t *testing.T) {
	repo := newMockRepository()
	tx := &passthroughTx{}
	service := NewService(repo, tx, &stubIssuer{err: errors.New("kaput")})

	_, err := service.Register(context.Background(), RegisterInput{
		Email:           "dev@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), LoginInput{
		Email:    "dev@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAuthFailed)
}

func TestSeedAdmin(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)

	require.NoError(t, service.SeedAdmin(context.Background(), "admin@example.com", "secret123"))

	admin, err := repo.GetUserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret123")))

	// Idempotent on restart.
	require.NoError(t, service.SeedAdmin(context.Background(), "admin@example.com", "secret123"))
	assert.Len(t, repo.users, 1)
}

func TestSeedAdmin_NotConfigured(t *testing.T) {
	repo := newMockRepository()
	service, tx := newTestService(repo)

	require.NoError(t, service.SeedAdmin(context.Background(), "", ""))
	assert.Equal(t, 0, tx.calls)
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo := newMockRepository()
	service, _ := newTestService(repo)

	err := service.DeleteUser(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}
