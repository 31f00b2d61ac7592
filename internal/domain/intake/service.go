package intake

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrSaveCancelled is returned when the destination picker is dismissed. It
// is informational: the form is left exactly as it was.
var ErrSaveCancelled = errors.New("save cancelled")

// PersistenceError wraps the I/O failure that aborted a save.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save record to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Destination is where a record is written. An existing file at Path is
// only replaced when Overwrite is set.
type Destination struct {
	Path      string
	Overwrite bool
}

// DestinationFunc asks the caller where to write the record, given the
// proposed file name. Returning ErrSaveCancelled or an empty path cancels
// the save.
type DestinationFunc func(ctx context.Context, suggested string) (Destination, error)

// FixedDestination always answers path and refuses to replace an existing
// file. An empty path cancels.
func FixedDestination(path string) DestinationFunc {
	return func(context.Context, string) (Destination, error) {
		return Destination{Path: path}, nil
	}
}

// ReplaceDestination always answers path, replacing whatever is there.
func ReplaceDestination(path string) DestinationFunc {
	return func(context.Context, string) (Destination, error) {
		return Destination{Path: path, Overwrite: true}, nil
	}
}

// DirectoryDestination places the proposed file name inside dir.
func DirectoryDestination(dir string) DestinationFunc {
	return func(_ context.Context, suggested string) (Destination, error) {
		return Destination{Path: filepath.Join(dir, suggested)}, nil
	}
}

// CancelDestination dismisses the picker.
func CancelDestination(context.Context, string) (Destination, error) {
	return Destination{}, ErrSaveCancelled
}

// SaveResult describes a written record.
type SaveResult struct {
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"`
	DateCreated string `json:"date_created"`
}

// DefaultFilename proposes <Name_With_Underscores>_<YYYYMMDD>_<HHMMSS>.json.
// Path separators in the name are replaced as well so the proposal stays a
// single file name.
func DefaultFilename(name string, at time.Time) string {
	r := strings.NewReplacer(" ", "_", "/", "_", `\`, "_")
	return fmt.Sprintf("%s_%s.json", r.Replace(name), at.Format("20060102_150405"))
}

// Service runs the save pipeline: assemble, choose a destination, write,
// reset.
type Service struct {
	store  DocumentWriter
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(store DocumentWriter, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Save assembles the form into a record and writes it where choose says.
// On success the returned state is the cleared form. On any failure,
// including cancellation, the returned state is form itself.
func (s *Service) Save(ctx context.Context, form FormState, choose DestinationFunc) (SaveResult, FormState, error) {
	now := s.now()

	rec, err := Assemble(form, now)
	if err != nil {
		var missing *MissingRequiredFieldsError
		if errors.As(err, &missing) {
			s.logger.Warn().Int("missing", len(missing.Fields)).Msg("save rejected: required fields missing")
		}
		return SaveResult{}, form, err
	}

	suggested := DefaultFilename(rec.PersonalInfo.Name, now)
	dst, err := choose(ctx, suggested)
	if errors.Is(err, ErrSaveCancelled) || (err == nil && strings.TrimSpace(dst.Path) == "") {
		s.logger.Info().Msg("save cancelled")
		return SaveResult{}, form, ErrSaveCancelled
	}
	if err != nil {
		return SaveResult{}, form, fmt.Errorf("choose destination: %w", err)
	}

	res, err := s.Write(ctx, rec, dst)
	if err != nil {
		return SaveResult{}, form, err
	}
	return res, form.Clear(), nil
}

// Write serializes rec and stores it at dst. Unless dst.Overwrite is set an
// existing file is left alone and the error wraps docstore.ErrDocumentExists.
func (s *Service) Write(ctx context.Context, rec PatientRecord, dst Destination) (SaveResult, error) {
	data, err := MarshalRecord(rec)
	if err != nil {
		return SaveResult{}, err
	}

	path := dst.Path
	put := s.store.Create
	if dst.Overwrite {
		put = s.store.Put
	}
	meta, err := put(ctx, path, data)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write record")
		return SaveResult{}, &PersistenceError{Path: path, Err: err}
	}

	s.logger.Info().
		Str("path", meta.Path).
		Int64("size", meta.Size).
		Str("hash", meta.Hash).
		Msg("record saved")

	return SaveResult{
		Path:        meta.Path,
		Filename:    filepath.Base(meta.Path),
		Size:        meta.Size,
		Hash:        meta.Hash,
		DateCreated: rec.DateCreated,
	}, nil
}
