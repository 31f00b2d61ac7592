package intake

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxPhoneDigits is the number of digits kept by SanitizePhone.
const MaxPhoneDigits = 10

// Range is an inclusive numeric interval for a vital sign.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Accepted ranges for captured vital signs.
var (
	SystolicRange        = Range{Min: 70, Max: 200}
	DiastolicRange       = Range{Min: 40, Max: 130}
	HeartRateRange       = Range{Min: 40, Max: 200}
	RespiratoryRateRange = Range{Min: 8, Max: 40}
	TemperatureRange     = Range{Min: 35, Max: 42}
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SanitizePhone strips every non-digit and truncates to MaxPhoneDigits.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == MaxPhoneDigits {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidEmail reports whether raw looks like local@domain.tld. The empty
// string is valid because the field is optional at the widget level.
func IsValidEmail(raw string) bool {
	if raw == "" {
		return true
	}
	return emailPattern.MatchString(raw)
}

// ClampNumeric parses raw as a real number and returns it when it lies in r.
// Unparseable or out-of-range input yields false; the value is never pulled
// to the nearest boundary.
func ClampNumeric(raw string, r Range) (float64, bool) {
	v, ok := parseReal(raw)
	if !ok || !r.Contains(v) {
		return 0, false
	}
	return v, true
}

// parsePositive accepts strictly positive reals, used for height and weight.
func parsePositive(raw string) (float64, bool) {
	v, ok := parseReal(raw)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseReal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
