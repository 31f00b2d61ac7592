package intake

import (
	"encoding/json"
	"fmt"
	"sort"
)

// replayOrder is the order in which scripted field values are applied. The
// BMI category goes before height and weight so measured values win.
var replayOrder = []FieldID{
	FieldName, FieldDOB, FieldGender, FieldPhone, FieldEmail,
	FieldEmergencyName, FieldEmergencyPhone, FieldEmergencyRelationship,
	FieldInsuranceProvider, FieldInsuranceID, FieldCoverageNotes,

	FieldChronicConditions, FieldSurgeries, FieldHospitalizations,
	FieldFamilyHistory, FieldSmoking, FieldAlcohol, FieldDrugUse,
	FieldOccupation, FieldLifestyle, FieldAllergies, FieldImmunizations,
	FieldMedications,

	FieldSystolic, FieldDiastolic, FieldHeartRate, FieldRespiratoryRate,
	FieldTemperature, FieldBMICategory, FieldHeight, FieldWeight,

	FieldGeneralAppearance, FieldHead, FieldEyes, FieldEars, FieldNose,
	FieldThroat, FieldCardiovascular, FieldRespiratoryExam, FieldAbdomen,
	FieldMusculoskeletal, FieldNeurological,

	FieldNotes,
}

// FormInput is a scripted intake session: raw field values as a user would
// type them and the test entries they would add.
type FormInput struct {
	Fields map[string]string                    `json:"fields"`
	Tests  map[CollectionKind][]json.RawMessage `json:"tests"`
}

// ParseFormInput decodes a FormInput document.
func ParseFormInput(data []byte) (FormInput, error) {
	var in FormInput
	if err := json.Unmarshal(data, &in); err != nil {
		return FormInput{}, fmt.Errorf("decode form input: %w", err)
	}
	return in, nil
}

// Replay applies the input to s through the same reducers the interactive
// form uses and returns the outcome of every field change. Unknown field
// names, the derived bmi field and incomplete test entries are errors.
func (in FormInput) Replay(s FormState) (FormState, []ValidationOutcome, error) {
	for name := range in.Fields {
		id, err := ParseFieldID(name)
		if err != nil {
			return s, nil, err
		}
		if fieldSpecs[id].kind == kindDerived {
			return s, nil, fmt.Errorf("%w: %q", ErrReadOnlyField, id)
		}
	}

	var outcomes []ValidationOutcome
	for _, id := range replayOrder {
		raw, ok := in.Fields[string(id)]
		if !ok {
			continue
		}
		next, out, err := s.OnFieldChange(id, raw)
		if err != nil {
			return s, outcomes, err
		}
		s = next
		outcomes = append(outcomes, out)
	}

	kinds := make([]CollectionKind, 0, len(in.Tests))
	for k := range in.Tests {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		if _, err := ParseCollectionKind(string(kind)); err != nil {
			return s, outcomes, err
		}
		for i, raw := range in.Tests[kind] {
			e, err := DecodeTestEntry(kind, raw)
			if err != nil {
				return s, outcomes, err
			}
			next, err := s.AppendTest(e)
			if err != nil {
				return s, outcomes, fmt.Errorf("%s[%d]: %w", kind, i, err)
			}
			s = next
		}
	}
	return s, outcomes, nil
}
