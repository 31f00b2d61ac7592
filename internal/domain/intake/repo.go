package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ehr/intake/internal/platform/docstore"
)

// DocumentWriter persists finished record documents. docstore.FileStore and
// docstore.MemoryStore satisfy it. Create must fail with
// docstore.ErrDocumentExists rather than replace an existing document.
type DocumentWriter interface {
	Put(ctx context.Context, path string, content []byte) (*docstore.DocumentMetadata, error)
	Create(ctx context.Context, path string, content []byte) (*docstore.DocumentMetadata, error)
}

// MarshalRecord renders rec as UTF-8 JSON indented with four spaces, keys in
// struct order.
func MarshalRecord(rec PatientRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeRecord parses a saved record document.
func DecodeRecord(data []byte) (PatientRecord, error) {
	var rec PatientRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return PatientRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
