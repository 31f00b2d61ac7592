package intake

// PatientRecord is the document produced by one save. Field order matches
// the on-disk key order.
type PatientRecord struct {
	PersonalInfo        PersonalInfo        `json:"personal_info"`
	MedicalInfo         MedicalInfo         `json:"medical_info"`
	VitalSigns          VitalSigns          `json:"vital_signs"`
	PhysicalExamination PhysicalExamination `json:"physical_examination"`
	DiagnosticTests     DiagnosticTests     `json:"diagnostic_tests"`
	Notes               string              `json:"notes"`
	DateCreated         string              `json:"date_created"`
}

// DateCreatedLayout formats PatientRecord.DateCreated in local time.
const DateCreatedLayout = "2006-01-02 15:04:05"

type PersonalInfo struct {
	Name             string           `json:"name"`
	DOB              string           `json:"dob"`
	Gender           string           `json:"gender"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Insurance        Insurance        `json:"insurance"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Insurance keeps coverage notes under "group_number", the key existing
// intake documents use.
type Insurance struct {
	Provider      string `json:"provider"`
	ID            string `json:"id"`
	CoverageNotes string `json:"group_number"`
}

type MedicalInfo struct {
	PastMedical   PastMedical   `json:"past_medical"`
	FamilyHistory string        `json:"family_history"`
	SocialHistory SocialHistory `json:"social_history"`
	Allergies     string        `json:"allergies"`
	Immunizations string        `json:"immunizations"`
	Medications   string        `json:"medications"`
}

type PastMedical struct {
	ChronicConditions string `json:"chronic_conditions"`
	Surgeries         string `json:"surgeries"`
	Hospitalizations  string `json:"hospitalizations"`
}

type SocialHistory struct {
	Smoking    string `json:"smoking"`
	Alcohol    string `json:"alcohol"`
	DrugUse    string `json:"drug_use"`
	Occupation string `json:"occupation"`
	Lifestyle  string `json:"lifestyle"`
}

// VitalSigns holds measurements as captured text. An absent or rejected
// value is "".
type VitalSigns struct {
	BloodPressure   BloodPressure `json:"blood_pressure"`
	HeartRate       string        `json:"heart_rate"`
	RespiratoryRate string        `json:"respiratory_rate"`
	Temperature     string        `json:"temperature"`
	Height          string        `json:"height"`
	Weight          string        `json:"weight"`
	BMI             string        `json:"bmi"`
	BMICategory     string        `json:"bmi_category"`
}

type BloodPressure struct {
	Systolic  string `json:"systolic"`
	Diastolic string `json:"diastolic"`
}

type PhysicalExamination struct {
	GeneralAppearance string `json:"general_appearance"`
	HEENT             HEENT  `json:"heent"`
	Cardiovascular    string `json:"cardiovascular"`
	Respiratory       string `json:"respiratory"`
	Abdomen           string `json:"abdomen"`
	Musculoskeletal   string `json:"musculoskeletal"`
	Neurological      string `json:"neurological"`
}

type HEENT struct {
	Head   string `json:"head"`
	Eyes   string `json:"eyes"`
	Ears   string `json:"ears"`
	Nose   string `json:"nose"`
	Throat string `json:"throat"`
}

// DiagnosticTests holds the five collections. Empty collections serialize
// as [] rather than null.
type DiagnosticTests struct {
	LabTests       []LabTest      `json:"lab_tests"`
	ImagingStudies []ImagingStudy `json:"imaging_studies"`
	Biopsies       []Biopsy       `json:"biopsies"`
	ECGResults     []ECGResult    `json:"ecg_results"`
	OtherTests     []OtherTest    `json:"other_tests"`
}

func (t Tests) document() DiagnosticTests {
	return DiagnosticTests{
		LabTests:       t.LabTests.Items(),
		ImagingStudies: t.ImagingStudies.Items(),
		Biopsies:       t.Biopsies.Items(),
		ECGResults:     t.ECGResults.Items(),
		OtherTests:     t.OtherTests.Items(),
	}
}
