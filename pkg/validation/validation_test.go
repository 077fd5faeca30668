package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"client@example.com", true},
		{"first.last+tag@studio.photo", true},
		{"  spaced@example.com  ", true},
		{"no-at-sign", false},
		{"missing@tld", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid", "Str0ng!pass", true},
		{"too short", "S1!a", false},
		{"no upper", "str0ng!pass", false},
		{"no digit", "Strong!pass", false},
		{"no special", "Str0ngpass", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("studio_01"))
	assert.True(t, ValidateUsername("my-studio"))
	assert.False(t, ValidateUsername("ab"))
	assert.False(t, ValidateUsername("has space"))
	assert.False(t, ValidateUsername("über"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello\n"))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "", SanitizeString("\t\r\n"))
}
