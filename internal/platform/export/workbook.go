// Package export renders saved intake records as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ehr/intake/internal/domain/intake"
)

const (
	RecordSheet = "Record"
	TestsSheet  = "Diagnostic Tests"
)

// RecordHeader is the header row of the record sheet.
var RecordHeader = []string{"Section", "Field", "Value"}

// TestsHeader is the header row of the diagnostic tests sheet. Imaging body
// part and biopsy site share the Location column; imaging findings share the
// Results column.
var TestsHeader = []string{"Collection", "Type", "Location", "Date", "Results"}

// RecordWorkbook renders rec as an .xlsx workbook with one sheet for the
// record fields and one for the diagnostic tests.
func RecordWorkbook(rec intake.PatientRecord) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; every return path closes it explicitly.

	index, err := f.NewSheet(RecordSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(TestsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name   string
		header []string
		widths []float64
		rows   [][]string
	}{
		{RecordSheet, RecordHeader, []float64{22, 32, 60}, RecordRows(rec)},
		{TestsSheet, TestsHeader, []float64{18, 34, 20, 14, 60}, TestRows(rec.DiagnosticTests)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.widths, s.rows, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, widths []float64, rows [][]string, headerStyle int) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			// Values stay text so "22.5" and phone numbers are not reformatted.
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// RecordRows flattens rec into (section, field, value) rows in document
// order. Diagnostic tests are not included.
func RecordRows(rec intake.PatientRecord) [][]string {
	p, m, v, x := rec.PersonalInfo, rec.MedicalInfo, rec.VitalSigns, rec.PhysicalExamination
	return [][]string{
		{"Personal Information", "Full Name", p.Name},
		{"Personal Information", "Date of Birth", p.DOB},
		{"Personal Information", "Gender", p.Gender},
		{"Personal Information", "Phone", p.Phone},
		{"Personal Information", "Email", p.Email},
		{"Emergency Contact", "Name", p.EmergencyContact.Name},
		{"Emergency Contact", "Phone", p.EmergencyContact.Phone},
		{"Emergency Contact", "Relationship", p.EmergencyContact.Relationship},
		{"Insurance", "Provider", p.Insurance.Provider},
		{"Insurance", "ID", p.Insurance.ID},
		{"Insurance", "Coverage Notes", p.Insurance.CoverageNotes},

		{"Medical History", "Chronic Conditions", m.PastMedical.ChronicConditions},
		{"Medical History", "Surgeries", m.PastMedical.Surgeries},
		{"Medical History", "Hospitalizations", m.PastMedical.Hospitalizations},
		{"Medical History", "Family History", m.FamilyHistory},
		{"Social History", "Smoking", m.SocialHistory.Smoking},
		{"Social History", "Alcohol", m.SocialHistory.Alcohol},
		{"Social History", "Drug Use", m.SocialHistory.DrugUse},
		{"Social History", "Occupation", m.SocialHistory.Occupation},
		{"Social History", "Lifestyle", m.SocialHistory.Lifestyle},
		{"Medical History", "Allergies", m.Allergies},
		{"Medical History", "Immunizations", m.Immunizations},
		{"Medical History", "Medications", m.Medications},

		{"Vital Signs", "Systolic BP", v.BloodPressure.Systolic},
		{"Vital Signs", "Diastolic BP", v.BloodPressure.Diastolic},
		{"Vital Signs", "Heart Rate", v.HeartRate},
		{"Vital Signs", "Respiratory Rate", v.RespiratoryRate},
		{"Vital Signs", "Temperature", v.Temperature},
		{"Vital Signs", "Height", v.Height},
		{"Vital Signs", "Weight", v.Weight},
		{"Vital Signs", "BMI", v.BMI},
		{"Vital Signs", "BMI Category", v.BMICategory},

		{"Physical Examination", "General Appearance", x.GeneralAppearance},
		{"Physical Examination", "Head", x.HEENT.Head},
		{"Physical Examination", "Eyes", x.HEENT.Eyes},
		{"Physical Examination", "Ears", x.HEENT.Ears},
		{"Physical Examination", "Nose", x.HEENT.Nose},
		{"Physical Examination", "Throat", x.HEENT.Throat},
		{"Physical Examination", "Cardiovascular", x.Cardiovascular},
		{"Physical Examination", "Respiratory", x.Respiratory},
		{"Physical Examination", "Abdomen", x.Abdomen},
		{"Physical Examination", "Musculoskeletal", x.Musculoskeletal},
		{"Physical Examination", "Neurological", x.Neurological},

		{"Notes", "Notes", rec.Notes},
		{"Record", "Date Created", rec.DateCreated},
	}
}

// TestRows flattens the diagnostic collections into rows in document order.
func TestRows(t intake.DiagnosticTests) [][]string {
	var rows [][]string
	for _, e := range t.LabTests {
		rows = append(rows, []string{string(intake.KindLabTests), e.Type, "", e.Date, e.Results})
	}
	for _, e := range t.ImagingStudies {
		rows = append(rows, []string{string(intake.KindImagingStudies), e.Type, e.BodyPart, e.Date, e.Findings})
	}
	for _, e := range t.Biopsies {
		rows = append(rows, []string{string(intake.KindBiopsies), e.Type, e.Site, e.Date, e.Results})
	}
	for _, e := range t.ECGResults {
		rows = append(rows, []string{string(intake.KindECGResults), e.Type, "", e.Date, e.Results})
	}
	for _, e := range t.OtherTests {
		rows = append(rows, []string{string(intake.KindOtherTests), e.Type, "", e.Date, e.Results})
	}
	return rows
}
