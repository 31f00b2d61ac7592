package intake

// Selection lists offered by the intake form. Personal and social-history
// enumerations are closed; diagnostic test types are suggestions only.
var (
	GenderOptions  = []string{"Male", "Female", "Other"}
	SmokingOptions = []string{"Never", "Former", "Current"}
	AlcoholOptions = []string{"None", "Occasional", "Regular"}
	DrugUseOptions = []string{"None", "Past", "Current"}

	LabTestTypes = []string{
		"Complete Blood Count (CBC)",
		"Basic Metabolic Panel (BMP)",
		"Comprehensive Metabolic Panel (CMP)",
		"Lipid Panel",
		"Thyroid Function Tests",
		"Urinalysis",
		"Other",
	}
	ImagingTypes   = []string{"X-ray", "MRI", "CT Scan", "Ultrasound", "Other"}
	BiopsyTypes    = []string{"Needle Biopsy", "Surgical Biopsy", "Endoscopic Biopsy", "Other"}
	ECGTypes       = []string{"Resting ECG", "Stress Test ECG", "Holter Monitor", "Event Monitor"}
	OtherTestTypes = []string{"Pulmonary Function Test", "Sleep Study", "Allergy Test", "Genetic Test", "Other"}
)

// QuickPicks are the preset values offered next to each vital-sign input.
var QuickPicks = map[FieldID][]string{
	FieldSystolic:        {"90", "100", "110", "120", "130", "140", "150", "160", "170", "180"},
	FieldDiastolic:       {"50", "60", "70", "80", "90", "100", "110", "120"},
	FieldHeartRate:       {"60", "65", "70", "75", "80", "85", "90", "95", "100", "105", "110", "115", "120"},
	FieldRespiratoryRate: {"12", "14", "16", "18", "20", "22", "24"},
	FieldTemperature:     {"36.5", "37.0", "37.5", "38.0", "38.5", "39.0"},
	FieldHeight:          {"150", "155", "160", "165", "170", "175", "180", "185", "190"},
	FieldWeight:          {"50", "55", "60", "65", "70", "75", "80", "85", "90"},
}

// Catalog is the option data handed to the presentation layer.
type Catalog struct {
	Gender         []string             `json:"gender"`
	Smoking        []string             `json:"smoking"`
	Alcohol        []string             `json:"alcohol"`
	DrugUse        []string             `json:"drug_use"`
	LabTests       []string             `json:"lab_tests"`
	ImagingStudies []string             `json:"imaging_studies"`
	Biopsies       []string             `json:"biopsies"`
	ECGResults     []string             `json:"ecg_results"`
	OtherTests     []string             `json:"other_tests"`
	BMICategories  []string             `json:"bmi_categories"`
	QuickPicks     map[FieldID][]string `json:"quick_picks"`
}

// DefaultCatalog returns the option lists.
func DefaultCatalog() Catalog {
	labels := make([]string, 0, len(BMICategories))
	for _, c := range BMICategories {
		labels = append(labels, c.Label())
	}
	return Catalog{
		Gender:         GenderOptions,
		Smoking:        SmokingOptions,
		Alcohol:        AlcoholOptions,
		DrugUse:        DrugUseOptions,
		LabTests:       LabTestTypes,
		ImagingStudies: ImagingTypes,
		Biopsies:       BiopsyTypes,
		ECGResults:     ECGTypes,
		OtherTests:     OtherTestTypes,
		BMICategories:  labels,
		QuickPicks:     QuickPicks,
	}
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
