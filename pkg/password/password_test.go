package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("Secr3t!pass"))

	tests := []struct {
		name     string
		password string
		contains string
	}{
		{"empty", "", "required"},
		{"short", "Ab1!", "at least 8"},
		{"no lower", "SECRET1!X", "lowercase"},
		{"no upper", "secret1!x", "uppercase"},
		{"no digit", "Secret!xx", "number"},
		{"no special", "Secret1xx", "special"},
		{"too long", "Aa1!" + strings.Repeat("x", 130), "less than 128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.password)
			require.Error(t, err)
			assert.True(t, IsPolicyError(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("Secr3t!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!pass", hash)

	assert.True(t, Compare(hash, "Secr3t!pass"))
	assert.False(t, Compare(hash, "wrong"))
}
