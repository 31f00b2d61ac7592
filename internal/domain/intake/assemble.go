package intake

import (
	"fmt"
	"strings"
	"time"
)

// RequiredField pairs a form field with the label shown when it is missing.
type RequiredField struct {
	ID    FieldID
	Label string
}

// RequiredFields is the canonical order in which missing fields are reported.
var RequiredFields = []RequiredField{
	{FieldName, "Full Name"},
	{FieldDOB, "Date of Birth"},
	{FieldGender, "Gender"},
	{FieldPhone, "Phone"},
	{FieldEmail, "Email"},
	{FieldEmergencyName, "Emergency Contact Name"},
	{FieldEmergencyPhone, "Emergency Contact Phone"},
	{FieldEmergencyRelationship, "Emergency Contact Relationship"},
	{FieldInsuranceProvider, "Insurance Provider"},
	{FieldInsuranceID, "Insurance ID"},
}

// MissingRequiredFieldsError lists the labels of every empty required field
// in RequiredFields order.
type MissingRequiredFieldsError struct {
	Fields []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// MissingFields returns the labels of required fields that are empty or
// whitespace-only.
func MissingFields(s FormState) []string {
	var missing []string
	for _, f := range RequiredFields {
		if strings.TrimSpace(s.Value(f.ID)) == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// Assemble builds the record from the form. It fails with
// *MissingRequiredFieldsError when a required field is empty. Every
// free-text value is trimmed. Assemble neither writes nor clears anything.
func Assemble(s FormState, createdAt time.Time) (PatientRecord, error) {
	if missing := MissingFields(s); len(missing) > 0 {
		return PatientRecord{}, &MissingRequiredFieldsError{Fields: missing}
	}

	v := func(id FieldID) string {
		return strings.TrimSpace(s.Value(id))
	}

	return PatientRecord{
		PersonalInfo: PersonalInfo{
			Name:   v(FieldName),
			DOB:    v(FieldDOB),
			Gender: v(FieldGender),
			Phone:  v(FieldPhone),
			Email:  v(FieldEmail),
			EmergencyContact: EmergencyContact{
				Name:         v(FieldEmergencyName),
				Phone:        v(FieldEmergencyPhone),
				Relationship: v(FieldEmergencyRelationship),
			},
			Insurance: Insurance{
				Provider:      v(FieldInsuranceProvider),
				ID:            v(FieldInsuranceID),
				CoverageNotes: v(FieldCoverageNotes),
			},
		},
		MedicalInfo: MedicalInfo{
			PastMedical: PastMedical{
				ChronicConditions: v(FieldChronicConditions),
				Surgeries:         v(FieldSurgeries),
				Hospitalizations:  v(FieldHospitalizations),
			},
			FamilyHistory: v(FieldFamilyHistory),
			SocialHistory: SocialHistory{
				Smoking:    v(FieldSmoking),
				Alcohol:    v(FieldAlcohol),
				DrugUse:    v(FieldDrugUse),
				Occupation: v(FieldOccupation),
				Lifestyle:  v(FieldLifestyle),
			},
			Allergies:     v(FieldAllergies),
			Immunizations: v(FieldImmunizations),
			Medications:   v(FieldMedications),
		},
		VitalSigns: VitalSigns{
			BloodPressure: BloodPressure{
				Systolic:  v(FieldSystolic),
				Diastolic: v(FieldDiastolic),
			},
			HeartRate:       v(FieldHeartRate),
			RespiratoryRate: v(FieldRespiratoryRate),
			Temperature:     v(FieldTemperature),
			Height:          v(FieldHeight),
			Weight:          v(FieldWeight),
			BMI:             v(FieldBMI),
			BMICategory:     v(FieldBMICategory),
		},
		PhysicalExamination: PhysicalExamination{
			GeneralAppearance: v(FieldGeneralAppearance),
			HEENT: HEENT{
				Head:   v(FieldHead),
				Eyes:   v(FieldEyes),
				Ears:   v(FieldEars),
				Nose:   v(FieldNose),
				Throat: v(FieldThroat),
			},
			Cardiovascular:  v(FieldCardiovascular),
			Respiratory:     v(FieldRespiratoryExam),
			Abdomen:         v(FieldAbdomen),
			Musculoskeletal: v(FieldMusculoskeletal),
			Neurological:    v(FieldNeurological),
		},
		DiagnosticTests: s.tests.document(),
		Notes:           v(FieldNotes),
		DateCreated:     createdAt.Format(DateCreatedLayout),
	}, nil
}
