package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPlan(t *testing.T) {
	for _, p := range Plans {
		assert.True(t, ValidPlan(p), "plan %d", p)
	}
	for _, p := range []int{0, 1, 14, 16, 100, 1000, -15} {
		assert.False(t, ValidPlan(p), "plan %d", p)
	}
}

func TestPublicProfileOmitsCredentials(t *testing.T) {
	u := User{
		ID:           "u1",
		Name:         "alice",
		Email:        "alice@test.local",
		PasswordHash: "$2a$10$hash",
		Plan:         99,
		Level:        2,
	}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice@test.local")
	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.Contains(t, string(raw), `"name":"alice"`)
}
