package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Str0ng!Passw0rd", false},
		{"TooShort", "Sh0rt!", true},
		{"NoUppercase", "weak!passw0rd", true},
		{"NoLowercase", "WEAK!PASSW0RD", true},
		{"NoDigit", "Weak!Password", true},
		{"NoSpecial", "WeakPassword1", true},
		{"TooLong", "Aa1!" + strings.Repeat("x", 130), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("susan_123"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("_leading"))
	assert.Error(t, ValidateUsername("trailing-"))
	assert.Error(t, ValidateUsername("has space"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("@example.com"))
}

func TestValidatePostBody(t *testing.T) {
	assert.NoError(t, ValidatePostBody("hello", 140))
	assert.Error(t, ValidatePostBody("", 140))
	assert.Error(t, ValidatePostBody(strings.Repeat("x", 141), 140))
	// Multibyte runes count as single characters.
	assert.NoError(t, ValidatePostBody(strings.Repeat("é", 140), 140))
}

func TestValidateLanguageTag(t *testing.T) {
	assert.NoError(t, ValidateLanguageTag(""))
	assert.NoError(t, ValidateLanguageTag("en"))
	assert.NoError(t, ValidateLanguageTag("pt-BR"))
	assert.Error(t, ValidateLanguageTag("english"))
	assert.Error(t, ValidateLanguageTag("EN"))
}
