package intake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormInput_Replay(t *testing.T) {
	in, err := ParseFormInput([]byte(`{
		"fields": {
			"weight": "65",
			"bmi_category": "Obese",
			"height": "170",
			"heart_rate": "300",
			"email": "not-an-email"
		},
		"tests": {
			"imaging_studies": [{"type": "X-ray", "body_part": "Chest", "date": "2024-02-21", "findings": "Clear"}],
			"lab_tests": [{"type": "Urinalysis", "date": "2024-02-20"}, {"type": "Lipid Panel", "date": "2024-02-22"}]
		}
	}`))
	require.NoError(t, err)

	s, outcomes, err := in.Replay(NewFormState())
	require.NoError(t, err)

	assert.Equal(t, "22.5", s.Value(FieldBMI), "measured values win over a chosen category")
	assert.Equal(t, "Normal", s.Value(FieldBMICategory))
	assert.Equal(t, "", s.Value(FieldHeartRate))
	assert.Equal(t, "not-an-email", s.Value(FieldEmail))
	assert.Equal(t, 2, s.Tests().Len(KindLabTests))
	assert.Equal(t, 1, s.Tests().Len(KindImagingStudies))

	invalid := map[FieldID]bool{}
	for _, o := range outcomes {
		if !o.Valid {
			invalid[o.Field] = true
		}
	}
	assert.Equal(t, map[FieldID]bool{FieldHeartRate: true, FieldEmail: true}, invalid)
}

func TestFormInput_ReplayRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown field", `{"fields": {"blood_type": "O+"}}`, ErrUnknownField},
		{"derived field", `{"fields": {"bmi": "22"}}`, ErrReadOnlyField},
		{"unknown collection", `{"tests": {"xrays": [{}]}}`, ErrUnknownCollection},
		{"incomplete entry", `{"tests": {"biopsies": [{"type": "Needle Biopsy"}]}}`, ErrIncompleteEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseFormInput([]byte(tt.doc))
			require.NoError(t, err)
			_, _, err = in.Replay(NewFormState())
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseFormInput_Malformed(t *testing.T) {
	_, err := ParseFormInput([]byte(`{"fields": [`))
	assert.Error(t, err)
}
