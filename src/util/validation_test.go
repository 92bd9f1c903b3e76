package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("amy@example.com"))
	assert.True(t, ValidateEmail("amy.w+girlmath@mail.example.org"))
	assert.False(t, ValidateEmail("amy"))
	assert.False(t, ValidateEmail("amy@example"))
	assert.False(t, ValidateEmail(""))
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("amy"))
	assert.True(t, ValidateUsername(strings.Repeat("a", 30)))
	assert.False(t, ValidateUsername("am"))
	assert.False(t, ValidateUsername(strings.Repeat("a", 31)))
	assert.False(t, ValidateUsername("am\xffy"))
	assert.False(t, ValidateUsername("am\x00y"))
}

func TestValidateDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain", "Coffee", true},
		{"blank", "   ", false},
		{"empty", "", false},
		{"at limit", strings.Repeat("x", MaxDescriptionLength), true},
		{"over limit", strings.Repeat("x", MaxDescriptionLength+1), false},
		{"multibyte at limit", strings.Repeat("ü", MaxDescriptionLength), true},
		{"invalid utf8", "Coffee \xff\xfe", false},
		{"nul byte", "Cof\x00fee", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDescription(tt.in))
		})
	}
}

func TestValidateGoalName(t *testing.T) {
	assert.True(t, ValidateGoalName("Trip"))
	assert.False(t, ValidateGoalName(""))
	assert.False(t, ValidateGoalName(strings.Repeat("g", MaxGoalNameLength+1)))
	assert.False(t, ValidateGoalName("Trip \xc3"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "üü", Truncate("üüü", 2))
}
