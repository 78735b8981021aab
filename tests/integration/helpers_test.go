//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rayanh/salary-tracker/internal/testutil"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type userBody struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type salaryBody struct {
	ID       int64   `json:"id"`
	Month    string  `json:"month"`
	Gross    float64 `json:"gross"`
	Bonus    float64 `json:"bonus"`
	Currency string  `json:"currency"`
}

// registerUser registers a fresh user and returns its email. The shared
// password for test users is "password123".
func registerUser(t *testing.T, client *testutil.Client) string {
	t.Helper()

	email := testutil.RandomEmail("user")
	resp, err := client.POST("/auth/register", map[string]string{
		"email":           email,
		"password":        "password123",
		"confirmPassword": "password123",
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return email
}

// loginFreshUser registers a new user and logs the client in as them.
func loginFreshUser(t *testing.T, client *testutil.Client) string {
	t.Helper()

	email := registerUser(t, client)
	client.LoginAs(t, email, "password123")
	return email
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()

	var body errorBody
	testutil.DecodeJSON(t, resp, &body)
	return body
}
