package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Month identifies a salary period as calendar year plus month.
// The wire format is "YYYY-MM".
type Month struct {
	Year  int
	Month time.Month
}

const monthLayout = "2006-01"

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month must be in YYYY-MM format", ErrInvalidArguments)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: month must be a string", ErrInvalidArguments)
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Salary is one monthly salary record. A user holds at most one record
// per month.
type Salary struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Month     Month     `json:"month"`
	Gross     float64   `json:"gross"`
	Bonus     float64   `json:"bonus"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
