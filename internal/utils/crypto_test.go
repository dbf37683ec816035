// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateResetTokenLength(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)

	other, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashStringIsDeterministic(t *testing.T) {
	h := HashString("123456")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashString("123456"))
	assert.NotEqual(t, h, HashString("654321"))
}
