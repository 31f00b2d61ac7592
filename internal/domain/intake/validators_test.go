package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"(012) 345-6789", "0123456789"},
		{"012345678901", "0123456789"},
		{"+1 555 123 4567 ext 89", "1555123456"},
		{"abc", ""},
		{"", ""},
		{"٣٤٥", ""}, // non-ASCII digits are not kept
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizePhone(tt.raw), "SanitizePhone(%q)", tt.raw)
	}
}

func TestSanitizePhone_Idempotent(t *testing.T) {
	for _, raw := range []string{"(012) 345-6789", "99-88-77-66-55-44", "x"} {
		once := SanitizePhone(raw)
		assert.Equal(t, once, SanitizePhone(once))
		assert.LessOrEqual(t, len(once), MaxPhoneDigits)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"", "jane@example.com", "j.doe+intake@mail.example.org", "a_b%c@x-y.io"}
	for _, e := range valid {
		assert.True(t, IsValidEmail(e), "expected %q to be valid", e)
	}

	invalid := []string{"jane", "jane@", "@example.com", "jane@example", "jane@example.c", "jane doe@example.com"}
	for _, e := range invalid {
		assert.False(t, IsValidEmail(e), "expected %q to be invalid", e)
	}
}

func TestClampNumeric(t *testing.T) {
	tests := []struct {
		raw    string
		r      Range
		want   float64
		wantOK bool
	}{
		{"120", SystolicRange, 120, true},
		{"70", SystolicRange, 70, true},
		{"200", SystolicRange, 200, true},
		{"69.9", SystolicRange, 0, false},
		{"201", SystolicRange, 0, false},
		{" 37.5 ", TemperatureRange, 37.5, true},
		{"abc", HeartRateRange, 0, false},
		{"", RespiratoryRateRange, 0, false},
		{"NaN", DiastolicRange, 0, false},
		{"Inf", DiastolicRange, 0, false},
	}
	for _, tt := range tests {
		got, ok := ClampNumeric(tt.raw, tt.r)
		assert.Equal(t, tt.wantOK, ok, "ClampNumeric(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "ClampNumeric(%q)", tt.raw)
	}
}

func TestRange_Contains(t *testing.T) {
	r := Range{Min: 8, Max: 40}
	assert.True(t, r.Contains(8))
	assert.True(t, r.Contains(40))
	assert.False(t, r.Contains(7.99))
	assert.False(t, r.Contains(40.01))
}
