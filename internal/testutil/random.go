package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// RandomEmail returns a unique email address so tests can register users
// without colliding on the unique email constraint.
func RandomEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}
