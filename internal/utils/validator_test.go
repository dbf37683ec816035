// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passwordPayload struct {
	Password string `validate:"required,strong_password"`
}

type otpPayload struct {
	Code string `validate:"required,otp_code"`
}

func TestStrongPasswordValidation(t *testing.T) {
	valid := []string{"Passw0rd!", "S3cure#pass", "Aa1!aaaa"}
	for _, p := range valid {
		assert.NoError(t, ValidateStruct(passwordPayload{Password: p}), p)
	}

	invalid := []string{
		"alllowercase1!", // no uppercase
		"ALLUPPERCASE1!", // no lowercase
		"NoNumbers!!",    // no digit
		"NoSpecials123",  // no special character
		"Aa1!a",          // too short
	}
	for _, p := range invalid {
		assert.Error(t, ValidateStruct(passwordPayload{Password: p}), p)
	}
}

func TestOTPCodeValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(otpPayload{Code: "123456"}))
	assert.NoError(t, ValidateStruct(otpPayload{Code: "000000"}))

	for _, code := range []string{"12345", "1234567", "12345a", "abcdef", " 12345"} {
		assert.Error(t, ValidateStruct(otpPayload{Code: code}), code)
	}
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(otpPayload{Code: "12x"})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "code", errs[0].Field)
	assert.Equal(t, "otp_code", errs[0].Tag)
	assert.Equal(t, "Code must be exactly 6 digits", errs[0].Message)
}
