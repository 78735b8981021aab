package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year)
	assert.Equal(t, time.March, m.Month)
	assert.Equal(t, "2024-03", m.String())

	for _, input := range []string{"2024-13", "2024-00", "March 2024", "2024-3", "2024/03", ""} {
		_, err := ParseMonth(input)
		assert.ErrorIs(t, err, ErrInvalidArguments, "input %q", input)
	}
}

func TestMonth_JSON(t *testing.T) {
	type doc struct {
		Month Month `json:"month"`
	}

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"month":"2024-03"}`), &d))
	assert.Equal(t, Month{Year: 2024, Month: time.March}, d.Month)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2024-03"}`, string(out))

	err = json.Unmarshal([]byte(`{"month":42}`), &d)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestRole_Satisfies(t *testing.T) {
	assert.True(t, RoleUser.Satisfies(RoleUser))
	assert.False(t, RoleUser.Satisfies(RoleAdmin))
	assert.True(t, RoleAdmin.Satisfies(RoleUser))
	assert.True(t, RoleAdmin.Satisfies(RoleAdmin))

	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("SUPERUSER").IsValid())
}
