package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBMI(t *testing.T) {
	bmi, ok := ComputeBMI("170", "65")
	require.True(t, ok)
	assert.InDelta(t, 22.4913, bmi, 0.0001)
	assert.Equal(t, "22.5", FormatBMI(bmi))
}

func TestComputeBMI_InvalidInputs(t *testing.T) {
	cases := [][2]string{
		{"", "65"},
		{"170", ""},
		{"0", "65"},
		{"170", "-1"},
		{"tall", "65"},
	}
	for _, c := range cases {
		_, ok := ComputeBMI(c[0], c[1])
		assert.False(t, ok, "ComputeBMI(%q, %q)", c[0], c[1])
	}
}

func TestCategorizeBMI_Boundaries(t *testing.T) {
	tests := []struct {
		bmi  float64
		want BMICategory
	}{
		{10, BMIUnderweight},
		{18.49, BMIUnderweight},
		{18.5, BMINormal},
		{24.99, BMINormal},
		{25, BMIOverweight},
		{29.99, BMIOverweight},
		{30, BMIObese},
		{45, BMIObese},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeBMI(tt.bmi), "CategorizeBMI(%v)", tt.bmi)
	}
}

func TestCategoryToRepresentativeBMI(t *testing.T) {
	want := map[BMICategory]float64{
		BMIUnderweight: 18,
		BMINormal:      22,
		BMIOverweight:  27,
		BMIObese:       32,
	}
	for c, v := range want {
		got, ok := CategoryToRepresentativeBMI(c)
		require.True(t, ok)
		assert.Equal(t, v, got)
		// Representative values categorize back to their own category.
		assert.Equal(t, c, CategorizeBMI(got))
	}

	_, ok := CategoryToRepresentativeBMI("Huge")
	assert.False(t, ok)
}

func TestParseBMICategory(t *testing.T) {
	c, ok := ParseBMICategory("Normal (18.5-24.9)")
	require.True(t, ok)
	assert.Equal(t, BMINormal, c)

	c, ok = ParseBMICategory("obese")
	require.True(t, ok)
	assert.Equal(t, BMIObese, c)

	_, ok = ParseBMICategory("Skinny")
	assert.False(t, ok)
}

func TestBMICategory_LabelAndColor(t *testing.T) {
	assert.Equal(t, "Underweight (<18.5)", BMIUnderweight.Label())
	assert.Equal(t, "Obese (≥30)", BMIObese.Label())
	assert.Equal(t, "orange", BMIOverweight.Color())
	assert.Equal(t, "", BMICategory("x").Color())
}

func TestClassifyHeartRate(t *testing.T) {
	tests := []struct {
		raw    string
		want   HeartRateStatus
		wantOK bool
	}{
		{"40", HeartRateBradycardia, true},
		{"59", HeartRateBradycardia, true},
		{"60", HeartRateNormal, true},
		{"100", HeartRateNormal, true},
		{"101", HeartRateTachycardia, true},
		{"200", HeartRateTachycardia, true},
		{"39", "", false},
		{"250", "", false},
		{"fast", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ClassifyHeartRate(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "ClassifyHeartRate(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "ClassifyHeartRate(%q)", tt.raw)
	}
}

func TestIndicatorPosition(t *testing.T) {
	assert.Equal(t, 0.5, IndicatorPosition(20, BMIScale))
	assert.Equal(t, 0.0, IndicatorPosition(-3, BMIScale))
	assert.Equal(t, 1.0, IndicatorPosition(55, BMIScale))
	assert.Equal(t, 0.125, IndicatorPosition(60, HeartRateScale))
	assert.Equal(t, 0.0, IndicatorPosition(5, Range{Min: 1, Max: 1}))
}
