package intake

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func change(t *testing.T, s FormState, id FieldID, raw string) (FormState, ValidationOutcome) {
	t.Helper()
	next, out, err := s.OnFieldChange(id, raw)
	require.NoError(t, err)
	return next, out
}

func TestOnFieldChange_TextStoredVerbatim(t *testing.T) {
	s, out := change(t, NewFormState(), FieldNotes, "  Patient anxious  ")
	assert.True(t, out.Valid)
	assert.Equal(t, "  Patient anxious  ", s.Value(FieldNotes))
}

func TestOnFieldChange_DoesNotMutateReceiver(t *testing.T) {
	before, _ := change(t, NewFormState(), FieldName, "Jane")
	after, _ := change(t, before, FieldName, "John")
	assert.Equal(t, "Jane", before.Value(FieldName))
	assert.Equal(t, "John", after.Value(FieldName))
}

func TestOnFieldChange_PhoneSanitized(t *testing.T) {
	s, out := change(t, NewFormState(), FieldPhone, "(012) 345-6789 x12")
	assert.Equal(t, "0123456789", out.Value)
	assert.Equal(t, "0123456789", s.Value(FieldPhone))

	s, _ = change(t, s, FieldEmergencyPhone, "555.111.2222")
	assert.Equal(t, "5551112222", s.Value(FieldEmergencyPhone))
}

func TestOnFieldChange_InvalidEmailFlaggedButKept(t *testing.T) {
	s, out := change(t, NewFormState(), FieldEmail, "jane@example")
	assert.False(t, out.Valid)
	assert.False(t, out.Cleared)
	assert.NotEmpty(t, out.Message)
	assert.Equal(t, "jane@example", s.Value(FieldEmail))
}

func TestOnFieldChange_EnumOutsideCatalogCleared(t *testing.T) {
	s, _ := change(t, NewFormState(), FieldGender, "Female")
	assert.Equal(t, "Female", s.Value(FieldGender))

	s, out := change(t, s, FieldGender, "Unknown")
	assert.False(t, out.Valid)
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldGender))
}

func TestOnFieldChange_VitalOutOfRangeCleared(t *testing.T) {
	s, _ := change(t, NewFormState(), FieldSystolic, "120")
	assert.Equal(t, "120", s.Value(FieldSystolic))

	s, out := change(t, s, FieldSystolic, "250")
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldSystolic))

	s, out = change(t, s, FieldTemperature, "abc")
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldTemperature))
}

func TestOnFieldChange_HeartRateStatus(t *testing.T) {
	s, out := change(t, NewFormState(), FieldHeartRate, "110")
	assert.Equal(t, HeartRateTachycardia, s.HeartRateStatus())
	require.NotNil(t, out.Derived)
	assert.Equal(t, "red", out.Derived.HeartRateColor)
	require.NotNil(t, out.Derived.HeartRatePosition)
	assert.InDelta(t, 0.4375, *out.Derived.HeartRatePosition, 1e-9)

	s, out = change(t, s, FieldHeartRate, "250")
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldHeartRate))
	assert.Equal(t, HeartRateStatus(""), s.HeartRateStatus())

	s, _ = change(t, s, FieldHeartRate, "55")
	assert.Equal(t, HeartRateBradycardia, s.HeartRateStatus())
	s, out = change(t, s, FieldHeartRate, "")
	assert.True(t, out.Valid)
	assert.Equal(t, HeartRateStatus(""), s.HeartRateStatus())
}

func TestOnFieldChange_BMIFromMeasurements(t *testing.T) {
	s, out := change(t, NewFormState(), FieldHeight, "170")
	assert.Equal(t, "", s.Value(FieldBMI))
	require.NotNil(t, out.Derived)
	assert.Equal(t, "", out.Derived.BMI)

	s, out = change(t, s, FieldWeight, "65")
	assert.Equal(t, "22.5", s.Value(FieldBMI))
	assert.Equal(t, "Normal", s.Value(FieldBMICategory))
	assert.Equal(t, "Normal (18.5-24.9)", out.Derived.BMICategoryLabel)
	assert.Equal(t, "green", out.Derived.BMIColor)

	// Clearing a measurement clears both derived values.
	s, _ = change(t, s, FieldWeight, "")
	assert.Equal(t, "", s.Value(FieldBMI))
	assert.Equal(t, "", s.Value(FieldBMICategory))
}

func TestOnFieldChange_NonPositiveMeasurementCleared(t *testing.T) {
	s, _ := change(t, NewFormState(), FieldHeight, "170")
	s, out := change(t, s, FieldWeight, "0")
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldWeight))
	assert.Equal(t, "", s.Value(FieldBMI))
}

func TestOnFieldChange_BMICategorySelection(t *testing.T) {
	s, out := change(t, NewFormState(), FieldBMICategory, "Overweight (25-29.9)")
	assert.Equal(t, "Overweight", out.Value)
	assert.Equal(t, "Overweight", s.Value(FieldBMICategory))
	assert.Equal(t, "27.0", s.Value(FieldBMI))

	s, out = change(t, s, FieldBMICategory, "Gigantic")
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldBMICategory))
	assert.Equal(t, "27.0", s.Value(FieldBMI))

	s, _ = change(t, s, FieldBMICategory, "Obese")
	s, _ = change(t, s, FieldBMICategory, "")
	assert.Equal(t, "", s.Value(FieldBMICategory))
	assert.Equal(t, "", s.Value(FieldBMI))
}

func TestOnFieldChange_MeasurementOverridesCategory(t *testing.T) {
	s, _ := change(t, NewFormState(), FieldBMICategory, "Obese")
	s, _ = change(t, s, FieldHeight, "180")
	assert.Equal(t, "", s.Value(FieldBMI), "incomplete measurements clear a chosen category")
	assert.Equal(t, "", s.Value(FieldBMICategory))

	s, _ = change(t, s, FieldWeight, "60")
	assert.Equal(t, "18.5", s.Value(FieldBMI))
	assert.Equal(t, "Normal", s.Value(FieldBMICategory))
}

func TestOnFieldChange_DateOfBirth(t *testing.T) {
	fixClock(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	s, out := change(t, NewFormState(), FieldDOB, "1990-05-14")
	assert.True(t, out.Valid)
	assert.Equal(t, "1990-05-14", s.Value(FieldDOB))

	s, out = change(t, s, FieldDOB, "2024-06-01")
	assert.True(t, out.Valid, "today is accepted")

	s, out = change(t, s, FieldDOB, "2024-06-02")
	assert.True(t, out.Cleared)
	assert.Equal(t, "", s.Value(FieldDOB))

	_, out = change(t, s, FieldDOB, "14/05/1990")
	assert.True(t, out.Cleared)
}

func TestOnFieldChange_UnknownAndDerivedFields(t *testing.T) {
	s := NewFormState()
	_, _, err := s.OnFieldChange("shoe_size", "42")
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, _, err = s.OnFieldChange(FieldBMI, "22")
	assert.True(t, errors.Is(err, ErrReadOnlyField))
}

func TestParseFieldID(t *testing.T) {
	id, err := ParseFieldID("emergency_phone")
	require.NoError(t, err)
	assert.Equal(t, FieldEmergencyPhone, id)

	_, err = ParseFieldID("ssn")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestFormState_TestsAndClear(t *testing.T) {
	s, _ := change(t, NewFormState(), FieldName, "Jane Doe")
	s, err := s.AppendTest(LabTest{Type: "Complete Blood Count (CBC)", Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Tests().Len(KindLabTests))
	assert.False(t, s.IsEmpty())

	_, err = s.AppendTest(LabTest{Type: "Lipid Panel"})
	assert.True(t, errors.Is(err, ErrIncompleteEntry))

	cleared := s.Clear()
	assert.True(t, cleared.IsEmpty())
	for _, k := range CollectionKinds {
		assert.Equal(t, 0, cleared.Tests().Len(k))
	}
	assert.Equal(t, "Jane Doe", s.Value(FieldName), "Clear leaves the receiver untouched")

	s, err = s.RemoveLastTest(KindLabTests)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Tests().Len(KindLabTests))
}

func TestFormState_Snapshot(t *testing.T) {
	s, _ := change(t, NewFormState(), FieldHeight, "170")
	s, _ = change(t, s, FieldWeight, "65")

	snap := s.Snapshot()
	assert.Len(t, snap.Fields, len(fieldSpecs))
	assert.Equal(t, "170", snap.Fields[FieldHeight])
	assert.Equal(t, "", snap.Fields[FieldName])
	assert.Equal(t, "22.5", snap.Derived.BMI)
	assert.NotNil(t, snap.Tests.LabTests)
	assert.Empty(t, snap.Tests.LabTests)
}
