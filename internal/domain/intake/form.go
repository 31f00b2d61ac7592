package intake

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field is derived and cannot be set")
)

// timeNow is replaced in tests.
var timeNow = time.Now

// FieldID identifies one input of the intake form.
type FieldID string

const (
	FieldName                  FieldID = "name"
	FieldDOB                   FieldID = "dob"
	FieldGender                FieldID = "gender"
	FieldPhone                 FieldID = "phone"
	FieldEmail                 FieldID = "email"
	FieldEmergencyName         FieldID = "emergency_name"
	FieldEmergencyPhone        FieldID = "emergency_phone"
	FieldEmergencyRelationship FieldID = "emergency_relationship"
	FieldInsuranceProvider     FieldID = "insurance_provider"
	FieldInsuranceID           FieldID = "insurance_id"
	FieldCoverageNotes         FieldID = "coverage_notes"

	FieldChronicConditions FieldID = "chronic_conditions"
	FieldSurgeries         FieldID = "surgeries"
	FieldHospitalizations  FieldID = "hospitalizations"
	FieldFamilyHistory     FieldID = "family_history"
	FieldSmoking           FieldID = "smoking"
	FieldAlcohol           FieldID = "alcohol"
	FieldDrugUse           FieldID = "drug_use"
	FieldOccupation        FieldID = "occupation"
	FieldLifestyle         FieldID = "lifestyle"
	FieldAllergies         FieldID = "allergies"
	FieldImmunizations     FieldID = "immunizations"
	FieldMedications       FieldID = "medications"

	FieldSystolic        FieldID = "bp_systolic"
	FieldDiastolic       FieldID = "bp_diastolic"
	FieldHeartRate       FieldID = "heart_rate"
	FieldRespiratoryRate FieldID = "respiratory_rate"
	FieldTemperature     FieldID = "temperature"
	FieldHeight          FieldID = "height"
	FieldWeight          FieldID = "weight"
	FieldBMI             FieldID = "bmi"
	FieldBMICategory     FieldID = "bmi_category"

	FieldGeneralAppearance FieldID = "general_appearance"
	FieldHead              FieldID = "head"
	FieldEyes              FieldID = "eyes"
	FieldEars              FieldID = "ears"
	FieldNose              FieldID = "nose"
	FieldThroat            FieldID = "throat"
	FieldCardiovascular    FieldID = "cardiovascular"
	FieldRespiratoryExam   FieldID = "respiratory_exam"
	FieldAbdomen           FieldID = "abdomen"
	FieldMusculoskeletal   FieldID = "musculoskeletal"
	FieldNeurological      FieldID = "neurological"

	FieldNotes FieldID = "notes"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindEnum
	kindPhone
	kindEmail
	kindDate
	kindRange
	kindHeartRate
	kindMeasure
	kindBMICategory
	kindDerived
)

type fieldSpec struct {
	kind    fieldKind
	options []string
	rng     Range
}

var fieldSpecs = map[FieldID]fieldSpec{
	FieldName:                  {kind: kindText},
	FieldDOB:                   {kind: kindDate},
	FieldGender:                {kind: kindEnum, options: GenderOptions},
	FieldPhone:                 {kind: kindPhone},
	FieldEmail:                 {kind: kindEmail},
	FieldEmergencyName:         {kind: kindText},
	FieldEmergencyPhone:        {kind: kindPhone},
	FieldEmergencyRelationship: {kind: kindText},
	FieldInsuranceProvider:     {kind: kindText},
	FieldInsuranceID:           {kind: kindText},
	FieldCoverageNotes:         {kind: kindText},

	FieldChronicConditions: {kind: kindText},
	FieldSurgeries:         {kind: kindText},
	FieldHospitalizations:  {kind: kindText},
	FieldFamilyHistory:     {kind: kindText},
	FieldSmoking:           {kind: kindEnum, options: SmokingOptions},
	FieldAlcohol:           {kind: kindEnum, options: AlcoholOptions},
	FieldDrugUse:           {kind: kindEnum, options: DrugUseOptions},
	FieldOccupation:        {kind: kindText},
	FieldLifestyle:         {kind: kindText},
	FieldAllergies:         {kind: kindText},
	FieldImmunizations:     {kind: kindText},
	FieldMedications:       {kind: kindText},

	FieldSystolic:        {kind: kindRange, rng: SystolicRange},
	FieldDiastolic:       {kind: kindRange, rng: DiastolicRange},
	FieldHeartRate:       {kind: kindHeartRate, rng: HeartRateRange},
	FieldRespiratoryRate: {kind: kindRange, rng: RespiratoryRateRange},
	FieldTemperature:     {kind: kindRange, rng: TemperatureRange},
	FieldHeight:          {kind: kindMeasure},
	FieldWeight:          {kind: kindMeasure},
	FieldBMI:             {kind: kindDerived},
	FieldBMICategory:     {kind: kindBMICategory},

	FieldGeneralAppearance: {kind: kindText},
	FieldHead:              {kind: kindText},
	FieldEyes:              {kind: kindText},
	FieldEars:              {kind: kindText},
	FieldNose:              {kind: kindText},
	FieldThroat:            {kind: kindText},
	FieldCardiovascular:    {kind: kindText},
	FieldRespiratoryExam:   {kind: kindText},
	FieldAbdomen:           {kind: kindText},
	FieldMusculoskeletal:   {kind: kindText},
	FieldNeurological:      {kind: kindText},

	FieldNotes: {kind: kindText},
}

// ParseFieldID validates a field name.
func ParseFieldID(s string) (FieldID, error) {
	id := FieldID(s)
	if _, ok := fieldSpecs[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return id, nil
}

// Derived carries the computed display values for live feedback.
type Derived struct {
	BMI               string          `json:"bmi"`
	BMICategory       string          `json:"bmi_category"`
	BMICategoryLabel  string          `json:"bmi_category_label,omitempty"`
	BMIColor          string          `json:"bmi_color,omitempty"`
	BMIPosition       *float64        `json:"bmi_position,omitempty"`
	HeartRateStatus   HeartRateStatus `json:"heart_rate_status"`
	HeartRateColor    string          `json:"heart_rate_color,omitempty"`
	HeartRatePosition *float64        `json:"heart_rate_position,omitempty"`
}

// ValidationOutcome reports what happened to one field change. An invalid
// numeric or enumerated value is cleared (Cleared is true); an invalid email
// is kept and only flagged.
type ValidationOutcome struct {
	Field   FieldID  `json:"field"`
	Value   string   `json:"value"`
	Valid   bool     `json:"valid"`
	Cleared bool     `json:"cleared,omitempty"`
	Message string   `json:"message,omitempty"`
	Derived *Derived `json:"derived,omitempty"`
}

// FormState is the editing state of one intake session. It is a value: every
// reducer returns a new FormState and never mutates the receiver. The zero
// value is an empty form.
type FormState struct {
	values   map[FieldID]string
	hrStatus HeartRateStatus
	tests    Tests
}

// NewFormState returns an empty form.
func NewFormState() FormState {
	return FormState{}
}

// Value returns the stored value of a field, "" when unset.
func (s FormState) Value(id FieldID) string {
	return s.values[id]
}

// HeartRateStatus returns the current classification, "" when absent.
func (s FormState) HeartRateStatus() HeartRateStatus {
	return s.hrStatus
}

// Tests returns the diagnostic collections.
func (s FormState) Tests() Tests {
	return s.tests
}

// IsEmpty reports whether no field and no collection holds data.
func (s FormState) IsEmpty() bool {
	for _, v := range s.values {
		if v != "" {
			return false
		}
	}
	for _, k := range CollectionKinds {
		if s.tests.Len(k) > 0 {
			return false
		}
	}
	return true
}

func (s FormState) with(updates map[FieldID]string) FormState {
	values := make(map[FieldID]string, len(s.values)+len(updates))
	for k, v := range s.values {
		values[k] = v
	}
	for k, v := range updates {
		values[k] = v
	}
	s.values = values
	return s
}

// OnFieldChange applies a raw input value to the form and returns the new
// state with the outcome for live feedback.
func (s FormState) OnFieldChange(id FieldID, raw string) (FormState, ValidationOutcome, error) {
	fs, ok := fieldSpecs[id]
	if !ok {
		return s, ValidationOutcome{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	out := ValidationOutcome{Field: id, Valid: true}

	switch fs.kind {
	case kindDerived:
		return s, ValidationOutcome{}, fmt.Errorf("%w: %q", ErrReadOnlyField, id)

	case kindText:
		s = s.with(map[FieldID]string{id: raw})
		out.Value = raw

	case kindEnum:
		v := strings.TrimSpace(raw)
		if v != "" && !oneOf(v, fs.options) {
			v = ""
			out.Valid, out.Cleared = false, true
			out.Message = fmt.Sprintf("must be one of %s", strings.Join(fs.options, ", "))
		}
		s = s.with(map[FieldID]string{id: v})
		out.Value = v

	case kindPhone:
		v := SanitizePhone(raw)
		s = s.with(map[FieldID]string{id: v})
		out.Value = v

	case kindEmail:
		s = s.with(map[FieldID]string{id: raw})
		out.Value = raw
		if !IsValidEmail(strings.TrimSpace(raw)) {
			out.Valid = false
			out.Message = "enter a valid email address (e.g., example@domain.com)"
		}

	case kindDate:
		v := strings.TrimSpace(raw)
		if v != "" && !validBirthDate(v) {
			v = ""
			out.Valid, out.Cleared = false, true
			out.Message = "date must be YYYY-MM-DD and not in the future"
		}
		s = s.with(map[FieldID]string{id: v})
		out.Value = v

	case kindRange:
		v := strings.TrimSpace(raw)
		if v != "" {
			if _, ok := ClampNumeric(v, fs.rng); !ok {
				v = ""
				out.Valid, out.Cleared = false, true
				out.Message = rangeMessage(fs.rng)
			}
		}
		s = s.with(map[FieldID]string{id: v})
		out.Value = v

	case kindHeartRate:
		v := strings.TrimSpace(raw)
		status, ok := ClassifyHeartRate(v)
		if !ok {
			if v != "" {
				out.Valid, out.Cleared = false, true
				out.Message = rangeMessage(fs.rng)
			}
			v, status = "", ""
		}
		s = s.with(map[FieldID]string{id: v})
		s.hrStatus = status
		out.Value = v
		out.Derived = s.derived()

	case kindMeasure:
		v := strings.TrimSpace(raw)
		if v != "" {
			if _, ok := parsePositive(v); !ok {
				v = ""
				out.Valid, out.Cleared = false, true
				out.Message = "must be a number greater than 0"
			}
		}
		s = s.with(map[FieldID]string{id: v})
		s = s.recomputeBMI()
		out.Value = v
		out.Derived = s.derived()

	case kindBMICategory:
		v := strings.TrimSpace(raw)
		if v == "" {
			s = s.with(map[FieldID]string{FieldBMICategory: "", FieldBMI: ""})
		} else if c, ok := ParseBMICategory(v); ok {
			bmi, _ := CategoryToRepresentativeBMI(c)
			v = string(c)
			s = s.with(map[FieldID]string{FieldBMICategory: v, FieldBMI: FormatBMI(bmi)})
		} else {
			v = ""
			out.Valid, out.Cleared = false, true
			out.Message = "unknown BMI category"
			s = s.with(map[FieldID]string{FieldBMICategory: ""})
		}
		out.Value = v
		out.Derived = s.derived()
	}

	return s, out, nil
}

// recomputeBMI derives bmi and its category from height and weight. Missing
// or invalid measurements clear both, including a manually chosen category.
func (s FormState) recomputeBMI() FormState {
	bmi, ok := ComputeBMI(s.Value(FieldHeight), s.Value(FieldWeight))
	if !ok {
		return s.with(map[FieldID]string{FieldBMI: "", FieldBMICategory: ""})
	}
	return s.with(map[FieldID]string{
		FieldBMI:         FormatBMI(bmi),
		FieldBMICategory: string(CategorizeBMI(bmi)),
	})
}

func (s FormState) derived() *Derived {
	d := &Derived{
		BMI:             s.Value(FieldBMI),
		BMICategory:     s.Value(FieldBMICategory),
		HeartRateStatus: s.hrStatus,
		HeartRateColor:  s.hrStatus.Color(),
	}
	if c := BMICategory(d.BMICategory); c != "" {
		d.BMICategoryLabel = c.Label()
		d.BMIColor = c.Color()
	}
	if bmi, ok := parseReal(d.BMI); ok {
		p := IndicatorPosition(bmi, BMIScale)
		d.BMIPosition = &p
	}
	if bpm, ok := ClampNumeric(s.Value(FieldHeartRate), HeartRateRange); ok {
		p := IndicatorPosition(bpm, HeartRateScale)
		d.HeartRatePosition = &p
	}
	return d
}

// AppendTest adds a complete entry to its collection.
func (s FormState) AppendTest(e TestEntry) (FormState, error) {
	tests, err := s.tests.Append(e)
	if err != nil {
		return s, err
	}
	s.tests = tests
	return s, nil
}

// RemoveLastTest drops the newest entry of the named collection.
func (s FormState) RemoveLastTest(kind CollectionKind) (FormState, error) {
	tests, err := s.tests.RemoveLast(kind)
	if err != nil {
		return s, err
	}
	s.tests = tests
	return s, nil
}

// Clear returns an empty form: every field reverts to "" and all five
// collections are empty.
func (s FormState) Clear() FormState {
	return FormState{}
}

// Snapshot is the full form content handed to the presentation layer.
type Snapshot struct {
	Fields  map[FieldID]string `json:"fields"`
	Derived Derived            `json:"derived"`
	Tests   DiagnosticTests    `json:"tests"`
}

// Snapshot returns a copy of every field value, the derived display values
// and the collections.
func (s FormState) Snapshot() Snapshot {
	fields := make(map[FieldID]string, len(fieldSpecs))
	for id := range fieldSpecs {
		fields[id] = s.values[id]
	}
	return Snapshot{
		Fields:  fields,
		Derived: *s.derived(),
		Tests:   s.tests.document(),
	}
}

func validBirthDate(v string) bool {
	now := timeNow()
	d, err := time.ParseInLocation(DateLayout, v, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.After(today)
}

func rangeMessage(r Range) string {
	return fmt.Sprintf("must be a number between %g and %g", r.Min, r.Max)
}
