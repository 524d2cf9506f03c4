package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery", hash))
	assert.False(t, CheckPasswordHash("wrong guess", hash))
}

func TestValidatePasswordBounds(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(""))

	assert.NoError(t, ValidatePassword(strings.Repeat("a", 72)))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 73)))
}
