//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanh/salary-tracker/internal/testutil"
)

func TestAuth_Register_Login_Flow(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail("alice")

	resp, err := client.POST("/auth/register", map[string]string{
		"email":           email,
		"password":        "password123",
		"confirmPassword": "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered userBody
	testutil.DecodeJSON(t, resp, &registered)
	assert.Equal(t, email, registered.Email)
	assert.Equal(t, "USER", registered.Role)
	assert.NotZero(t, registered.ID)
	// Username defaults to the email local part.
	assert.Equal(t, "alice", registered.Username[:5])

	resp, err = client.POST("/auth/login", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResult struct {
		Token string   `json:"token"`
		User  userBody `json:"user"`
	}
	testutil.DecodeJSON(t, resp, &loginResult)
	assert.NotEmpty(t, loginResult.Token)
	assert.Equal(t, email, loginResult.User.Email)

	// The token works.
	client.Token = loginResult.Token
	resp, err = client.GET("/salaries")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var salaries []salaryBody
	testutil.DecodeJSON(t, resp, &salaries)
	assert.Empty(t, salaries)
}

func TestAuth_Register_PasswordsDoNotMatch(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail("mismatch")

	resp, err := client.POST("/auth/register", map[string]string{
		"email":           email,
		"password":        "password123",
		"confirmPassword": "different456",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "PasswordsDoNotMatch", decodeError(t, resp).Code)

	// No user row was created: login reports the uniform credentials failure.
	resp, err = client.POST("/auth/login", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	client := newTestClient(t)
	email := registerUser(t, client)

	resp, err := client.POST("/auth/register", map[string]string{
		"email":           email,
		"password":        "password456",
		"confirmPassword": "password456",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EntityAlreadyExists", decodeError(t, resp).Code)
}

func TestAuth_Login_UniformFailureBody(t *testing.T) {
	client := newTestClient(t)
	email := registerUser(t, client)

	wrongPassword, err := client.POST("/auth/login", map[string]string{
		"email":    email,
		"password": "wrong-password",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)

	unknownEmail, err := client.POST("/auth/login", map[string]string{
		"email":    testutil.RandomEmail("ghost"),
		"password": "wrong-password",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)

	// Identical bodies, so callers cannot probe which emails exist.
	assert.Equal(t, testutil.ReadBody(t, wrongPassword), testutil.ReadBody(t, unknownEmail))
}

func TestAuth_Me_RequiresAuth(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AuthFailed", decodeError(t, resp).Code)
}

func TestAuth_Me_ReturnsCurrentUser(t *testing.T) {
	client := newTestClient(t)
	email := loginFreshUser(t, client)

	resp, err := client.GET("/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var me userBody
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, email, me.Email)
	assert.Equal(t, "USER", me.Role)
}

func TestAuth_ExpiredToken(t *testing.T) {
	client := newTestClient(t)
	loginFreshUser(t, client)

	// Forge a token with the real signing key whose lifetime is over.
	claims := gojwt.MapClaims{
		"user_id": int64(1),
		"role":    "USER",
		"sub":     "someone@example.com",
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-1 * time.Hour).Unix(),
	}
	expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	client.Token = expired
	resp, err := client.GET("/salaries")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TokenExpired", decodeError(t, resp).Code)
}

func TestAuth_TamperedToken(t *testing.T) {
	client := newTestClient(t)
	loginFreshUser(t, client)

	client.Token = client.Token + "x"
	resp, err := client.GET("/salaries")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TokenInvalid", decodeError(t, resp).Code)
}
