package intake

import (
	"strconv"
	"strings"
)

// BMICategory is the weight classification derived from a BMI value.
type BMICategory string

const (
	BMIUnderweight BMICategory = "Underweight"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Overweight"
	BMIObese       BMICategory = "Obese"
)

// BMICategories lists the categories in ascending BMI order.
var BMICategories = []BMICategory{BMIUnderweight, BMINormal, BMIOverweight, BMIObese}

var bmiCategoryLabels = map[BMICategory]string{
	BMIUnderweight: "Underweight (<18.5)",
	BMINormal:      "Normal (18.5-24.9)",
	BMIOverweight:  "Overweight (25-29.9)",
	BMIObese:       "Obese (≥30)",
}

var representativeBMI = map[BMICategory]float64{
	BMIUnderweight: 18.0,
	BMINormal:      22.0,
	BMIOverweight:  27.0,
	BMIObese:       32.0,
}

// BMICategoryColors is the display color for each category.
var BMICategoryColors = map[BMICategory]string{
	BMIUnderweight: "blue",
	BMINormal:      "green",
	BMIOverweight:  "orange",
	BMIObese:       "red",
}

// Label returns the category with its range, e.g. "Normal (18.5-24.9)".
func (c BMICategory) Label() string {
	return bmiCategoryLabels[c]
}

// Color returns the display color, or "" for an unknown category.
func (c BMICategory) Color() string {
	return BMICategoryColors[c]
}

// ParseBMICategory accepts either the bare category name or its label.
func ParseBMICategory(raw string) (BMICategory, bool) {
	s := strings.TrimSpace(raw)
	for _, c := range BMICategories {
		if strings.EqualFold(s, string(c)) || s == c.Label() {
			return c, true
		}
	}
	return "", false
}

// ComputeBMI returns weight / (height/100)^2 at full precision. Both inputs
// must parse as reals greater than zero.
func ComputeBMI(heightCm, weightKg string) (float64, bool) {
	h, ok := parsePositive(heightCm)
	if !ok {
		return 0, false
	}
	w, ok := parsePositive(weightKg)
	if !ok {
		return 0, false
	}
	m := h / 100
	return w / (m * m), true
}

// FormatBMI renders a BMI rounded to one decimal place.
func FormatBMI(bmi float64) string {
	return strconv.FormatFloat(bmi, 'f', 1, 64)
}

// CategorizeBMI classifies bmi. Each boundary (18.5, 25, 30) belongs to the
// higher category.
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// CategoryToRepresentativeBMI returns the fixed BMI used when a category is
// picked directly instead of measured.
func CategoryToRepresentativeBMI(c BMICategory) (float64, bool) {
	v, ok := representativeBMI[c]
	return v, ok
}

// HeartRateStatus classifies a resting heart rate.
type HeartRateStatus string

const (
	HeartRateBradycardia HeartRateStatus = "Bradycardia"
	HeartRateNormal      HeartRateStatus = "Normal"
	HeartRateTachycardia HeartRateStatus = "Tachycardia"
)

// HeartRateColors is the display color for each status.
var HeartRateColors = map[HeartRateStatus]string{
	HeartRateBradycardia: "blue",
	HeartRateNormal:      "green",
	HeartRateTachycardia: "red",
}

// Color returns the display color, or "" for an unknown status.
func (s HeartRateStatus) Color() string {
	return HeartRateColors[s]
}

// ClassifyHeartRate returns the status for a reading inside HeartRateRange.
// Anything else is absent, and callers discard the raw value.
func ClassifyHeartRate(raw string) (HeartRateStatus, bool) {
	bpm, ok := ClampNumeric(raw, HeartRateRange)
	if !ok {
		return "", false
	}
	return classifyBPM(bpm), true
}

func classifyBPM(bpm float64) HeartRateStatus {
	switch {
	case bpm < 60:
		return HeartRateBradycardia
	case bpm > 100:
		return HeartRateTachycardia
	default:
		return HeartRateNormal
	}
}

// Indicator scales drawn by the presentation layer.
var (
	BMIScale       = Range{Min: 0, Max: 40}
	HeartRateScale = Range{Min: 40, Max: 200}
	// NormalHeartRateBand is highlighted on the heart-rate scale.
	NormalHeartRateBand = Range{Min: 60, Max: 100}
)

// IndicatorPosition maps v onto scale as a fraction in [0, 1].
func IndicatorPosition(v float64, scale Range) float64 {
	span := scale.Max - scale.Min
	if span <= 0 {
		return 0
	}
	p := (v - scale.Min) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
