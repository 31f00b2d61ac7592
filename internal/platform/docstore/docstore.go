// Package docstore writes finished documents to storage. Writes are atomic:
// a reader sees either the previous state or the complete new document,
// never a partially written file.
package docstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyPath        = errors.New("document path is required")
	ErrVerifyFailed     = errors.New("stored document does not match written content")
	ErrDocumentExists   = errors.New("document already exists")
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

// DocumentMetadata describes a stored document.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Hash      string    `json:"hash"`
	WrittenAt time.Time `json:"written_at"`
}

// DocumentStore defines the contract for document storage backends. Put
// replaces an existing document; Create refuses to.
type DocumentStore interface {
	Put(ctx context.Context, path string, content []byte) (*DocumentMetadata, error)
	Create(ctx context.Context, path string, content []byte) (*DocumentMetadata, error)
	Get(ctx context.Context, path string) ([]byte, *DocumentMetadata, error)
}

func hashOf(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ---------------------------------------------------------------------------
// Filesystem implementation
// ---------------------------------------------------------------------------

// FileStore writes documents to the local filesystem.
type FileStore struct {
	logger   zerolog.Logger
	dirMode  fs.FileMode
	fileMode fs.FileMode
	readFile func(string) ([]byte, error)
}

// NewFileStore returns a FileStore creating directories 0755 and files 0644.
func NewFileStore(logger zerolog.Logger) *FileStore {
	return &FileStore{
		logger:   logger,
		dirMode:  0o755,
		fileMode: 0o644,
		readFile: os.ReadFile,
	}
}

// Put creates any missing parent directories, writes content to a temporary
// file in the destination directory, syncs it and renames it over path. The
// result is read back and its SHA-256 compared with content; on a mismatch
// the previous document, if any, is put back.
func (s *FileStore) Put(ctx context.Context, path string, content []byte) (*DocumentMetadata, error) {
	return s.write(ctx, path, content, true)
}

// Create is Put without replacing: it fails with ErrDocumentExists when
// path already exists. The temporary file is hard-linked into place, so the
// existence check and the write are one atomic step.
func (s *FileStore) Create(ctx context.Context, path string, content []byte) (*DocumentMetadata, error) {
	return s.write(ctx, path, content, false)
}

func (s *FileStore) write(ctx context.Context, path string, content []byte, replace bool) (*DocumentMetadata, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		return nil, fmt.Errorf("chmod temp file: %w", err)
	}

	// rollback undoes the commit when the stored bytes cannot be verified.
	rollback := func() { _ = os.Remove(path) }
	if replace {
		backup, err := s.backup(path)
		if err != nil {
			return nil, err
		}
		if backup != "" {
			defer os.Remove(backup)
			rollback = func() { _ = os.Rename(backup, path) }
		}
		if err := os.Rename(tmpName, path); err != nil {
			return nil, fmt.Errorf("rename into place: %w", err)
		}
	} else {
		if err := os.Link(tmpName, path); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return nil, fmt.Errorf("%w: %s", ErrDocumentExists, path)
			}
			return nil, fmt.Errorf("link into place: %w", err)
		}
	}

	written, meta, err := s.Get(ctx, path)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("read back %s: %w", path, err)
	}
	if meta.Hash != hashOf(content) || !bytes.Equal(written, content) {
		rollback()
		return nil, ErrVerifyFailed
	}

	s.logger.Debug().
		Str("path", path).
		Int64("size", meta.Size).
		Str("hash", meta.Hash).
		Bool("replaced", replace).
		Msg("document written")

	return meta, nil
}

// backup hard-links an existing document next to itself so a failed
// replace can restore it. It returns "" when there is nothing to keep.
func (s *FileStore) backup(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	name := fmt.Sprintf("%s.%d.bak", filepath.Join(filepath.Dir(path), "."+filepath.Base(path)), time.Now().UnixNano())
	if err := os.Link(path, name); err != nil {
		return "", fmt.Errorf("keep previous %s: %w", path, err)
	}
	return name, nil
}

// Get reads a document and its metadata.
func (s *FileStore) Get(_ context.Context, path string) ([]byte, *DocumentMetadata, error) {
	if path == "" {
		return nil, nil, ErrEmptyPath
	}
	data, err := s.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	return data, &DocumentMetadata{
		Path:      path,
		Size:      int64(len(data)),
		Hash:      hashOf(data),
		WrittenAt: info.ModTime(),
	}, nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedDocument struct {
	metadata DocumentMetadata
	content  []byte
}

// MemoryStore is a thread-safe, in-memory DocumentStore for tests and dry
// runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*storedDocument
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*storedDocument)}
}

// Put stores a copy of content under path.
func (s *MemoryStore) Put(ctx context.Context, path string, content []byte) (*DocumentMetadata, error) {
	return s.store(ctx, path, content, true)
}

// Create stores content under path unless a document is already there.
func (s *MemoryStore) Create(ctx context.Context, path string, content []byte) (*DocumentMetadata, error) {
	return s.store(ctx, path, content, false)
}

func (s *MemoryStore) store(ctx context.Context, path string, content []byte, replace bool) (*DocumentMetadata, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := make([]byte, len(content))
	copy(data, content)
	meta := DocumentMetadata{
		Path:      path,
		Size:      int64(len(data)),
		Hash:      hashOf(data),
		WrittenAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[path]; exists && !replace {
		return nil, fmt.Errorf("%w: %s", ErrDocumentExists, path)
	}
	s.docs[path] = &storedDocument{metadata: meta, content: data}

	out := meta // copy
	return &out, nil
}

// Get returns a copy of the document stored under path.
func (s *MemoryStore) Get(_ context.Context, path string) ([]byte, *DocumentMetadata, error) {
	s.mu.RLock()
	doc, ok := s.docs[path]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrDocumentNotFound
	}
	data := make([]byte, len(doc.content))
	copy(data, doc.content)
	meta := doc.metadata // copy
	return data, &meta, nil
}

// Paths returns the stored paths.
func (s *MemoryStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.docs))
	for p := range s.docs {
		out = append(out, p)
	}
	return out
}
