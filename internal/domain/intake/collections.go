package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for dates of birth and test
// dates.
const DateLayout = "2006-01-02"

var (
	ErrIncompleteEntry   = errors.New("incomplete test entry")
	ErrUnknownCollection = errors.New("unknown test collection")
)

// CollectionKind names one of the five diagnostic test collections.
type CollectionKind string

const (
	KindLabTests       CollectionKind = "lab_tests"
	KindImagingStudies CollectionKind = "imaging_studies"
	KindBiopsies       CollectionKind = "biopsies"
	KindECGResults     CollectionKind = "ecg_results"
	KindOtherTests     CollectionKind = "other_tests"
)

// CollectionKinds lists the collections in document order.
var CollectionKinds = []CollectionKind{KindLabTests, KindImagingStudies, KindBiopsies, KindECGResults, KindOtherTests}

// ParseCollectionKind validates a collection name.
func ParseCollectionKind(s string) (CollectionKind, error) {
	for _, k := range CollectionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
}

// TestEntry is a diagnostic test result appended to one of the collections.
type TestEntry interface {
	Kind() CollectionKind
}

type LabTest struct {
	Type    string `json:"type"`
	Date    string `json:"date"`
	Results string `json:"results"`
}

type ImagingStudy struct {
	Type     string `json:"type"`
	BodyPart string `json:"body_part"`
	Date     string `json:"date"`
	Findings string `json:"findings"`
}

type Biopsy struct {
	Type    string `json:"type"`
	Site    string `json:"site"`
	Date    string `json:"date"`
	Results string `json:"results"`
}

type ECGResult struct {
	Type    string `json:"type"`
	Date    string `json:"date"`
	Results string `json:"results"`
}

type OtherTest struct {
	Type    string `json:"type"`
	Date    string `json:"date"`
	Results string `json:"results"`
}

func (LabTest) Kind() CollectionKind      { return KindLabTests }
func (ImagingStudy) Kind() CollectionKind { return KindImagingStudies }
func (Biopsy) Kind() CollectionKind       { return KindBiopsies }
func (ECGResult) Kind() CollectionKind    { return KindECGResults }
func (OtherTest) Kind() CollectionKind    { return KindOtherTests }

func (e LabTest) normalized() (LabTest, error) {
	t, d, err := checkTypeAndDate(e.Type, e.Date)
	if err != nil {
		return LabTest{}, err
	}
	return LabTest{Type: t, Date: d, Results: strings.TrimSpace(e.Results)}, nil
}

func (e ImagingStudy) normalized() (ImagingStudy, error) {
	t, d, err := checkTypeAndDate(e.Type, e.Date)
	if err != nil {
		return ImagingStudy{}, err
	}
	return ImagingStudy{
		Type:     t,
		BodyPart: strings.TrimSpace(e.BodyPart),
		Date:     d,
		Findings: strings.TrimSpace(e.Findings),
	}, nil
}

func (e Biopsy) normalized() (Biopsy, error) {
	t, d, err := checkTypeAndDate(e.Type, e.Date)
	if err != nil {
		return Biopsy{}, err
	}
	return Biopsy{
		Type:    t,
		Site:    strings.TrimSpace(e.Site),
		Date:    d,
		Results: strings.TrimSpace(e.Results),
	}, nil
}

func (e ECGResult) normalized() (ECGResult, error) {
	t, d, err := checkTypeAndDate(e.Type, e.Date)
	if err != nil {
		return ECGResult{}, err
	}
	return ECGResult{Type: t, Date: d, Results: strings.TrimSpace(e.Results)}, nil
}

func (e OtherTest) normalized() (OtherTest, error) {
	t, d, err := checkTypeAndDate(e.Type, e.Date)
	if err != nil {
		return OtherTest{}, err
	}
	return OtherTest{Type: t, Date: d, Results: strings.TrimSpace(e.Results)}, nil
}

func checkTypeAndDate(typ, date string) (string, string, error) {
	t := strings.TrimSpace(typ)
	if t == "" {
		return "", "", fmt.Errorf("%w: type is required", ErrIncompleteEntry)
	}
	d := strings.TrimSpace(date)
	if d == "" {
		return "", "", fmt.Errorf("%w: date is required", ErrIncompleteEntry)
	}
	if _, err := time.Parse(DateLayout, d); err != nil {
		return "", "", fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrIncompleteEntry, d)
	}
	return t, d, nil
}

type entry[T any] interface {
	TestEntry
	normalized() (T, error)
}

// Collection is an append-only, remove-last-only sequence of entries. It is a
// value: Append and RemoveLast return a new Collection and leave the
// receiver untouched.
type Collection[T entry[T]] struct {
	items []T
}

// Append adds e to the end after trimming its text. An entry without a type
// or a valid date is rejected and the collection is returned unchanged.
func (c Collection[T]) Append(e T) (Collection[T], error) {
	n, err := e.normalized()
	if err != nil {
		return c, err
	}
	items := make([]T, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Collection[T]{items: append(items, n)}, nil
}

// RemoveLast drops the most recently appended entry. On an empty collection
// it is a no-op.
func (c Collection[T]) RemoveLast() Collection[T] {
	if len(c.items) == 0 {
		return c
	}
	return Collection[T]{items: c.items[:len(c.items)-1:len(c.items)-1]}
}

// Len returns the number of entries.
func (c Collection[T]) Len() int {
	return len(c.items)
}

// Items returns a copy of the entries in append order. It never returns nil.
func (c Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Last returns the most recent entry.
func (c Collection[T]) Last() (T, bool) {
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	return c.items[len(c.items)-1], true
}

// Tests holds the five diagnostic collections.
type Tests struct {
	LabTests       Collection[LabTest]
	ImagingStudies Collection[ImagingStudy]
	Biopsies       Collection[Biopsy]
	ECGResults     Collection[ECGResult]
	OtherTests     Collection[OtherTest]
}

// Append routes e to its collection.
func (t Tests) Append(e TestEntry) (Tests, error) {
	var err error
	switch v := e.(type) {
	case LabTest:
		t.LabTests, err = t.LabTests.Append(v)
	case ImagingStudy:
		t.ImagingStudies, err = t.ImagingStudies.Append(v)
	case Biopsy:
		t.Biopsies, err = t.Biopsies.Append(v)
	case ECGResult:
		t.ECGResults, err = t.ECGResults.Append(v)
	case OtherTest:
		t.OtherTests, err = t.OtherTests.Append(v)
	default:
		return t, fmt.Errorf("%w: %T", ErrUnknownCollection, e)
	}
	return t, err
}

// RemoveLast drops the newest entry of the named collection.
func (t Tests) RemoveLast(kind CollectionKind) (Tests, error) {
	switch kind {
	case KindLabTests:
		t.LabTests = t.LabTests.RemoveLast()
	case KindImagingStudies:
		t.ImagingStudies = t.ImagingStudies.RemoveLast()
	case KindBiopsies:
		t.Biopsies = t.Biopsies.RemoveLast()
	case KindECGResults:
		t.ECGResults = t.ECGResults.RemoveLast()
	case KindOtherTests:
		t.OtherTests = t.OtherTests.RemoveLast()
	default:
		return t, fmt.Errorf("%w: %q", ErrUnknownCollection, kind)
	}
	return t, nil
}

// Len returns the size of the named collection, or 0 for an unknown kind.
func (t Tests) Len(kind CollectionKind) int {
	switch kind {
	case KindLabTests:
		return t.LabTests.Len()
	case KindImagingStudies:
		return t.ImagingStudies.Len()
	case KindBiopsies:
		return t.Biopsies.Len()
	case KindECGResults:
		return t.ECGResults.Len()
	case KindOtherTests:
		return t.OtherTests.Len()
	}
	return 0
}

// DecodeTestEntry parses a JSON object into the entry type of kind.
func DecodeTestEntry(kind CollectionKind, data []byte) (TestEntry, error) {
	var (
		e   TestEntry
		err error
	)
	switch kind {
	case KindLabTests:
		var v LabTest
		err = json.Unmarshal(data, &v)
		e = v
	case KindImagingStudies:
		var v ImagingStudy
		err = json.Unmarshal(data, &v)
		e = v
	case KindBiopsies:
		var v Biopsy
		err = json.Unmarshal(data, &v)
		e = v
	case KindECGResults:
		var v ECGResult
		err = json.Unmarshal(data, &v)
		e = v
	case KindOtherTests:
		var v OtherTest
		err = json.Unmarshal(data, &v)
		e = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s entry: %w", kind, err)
	}
	return e, nil
}
