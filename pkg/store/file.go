package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/arnavshah/shiftledger-api/pkg/models"
)

// document is the on-disk layout of a FileStore
type document struct {
	Shifts []models.Shift `json:"shifts"`
}

// FileStore keeps every shift in one JSON document
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// GetAll loads the document and returns its shifts ordered by start time
func (f *FileStore) GetAll(_ context.Context) ([]models.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	sortShifts(doc.Shifts)
	return doc.Shifts, nil
}

// GetByID returns ErrNotFound when the id is unknown
func (f *FileStore) GetByID(_ context.Context, id string) (*models.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	for _, s := range doc.Shifts {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// Upsert rewrites the document with the shift replaced or appended
func (f *FileStore) Upsert(_ context.Context, shift models.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	for i, s := range doc.Shifts {
		if s.ID == shift.ID {
			doc.Shifts[i] = shift
			return f.save(doc)
		}
	}
	doc.Shifts = append(doc.Shifts, shift)
	return f.save(doc)
}

func (f *FileStore) load() (document, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return document{Shifts: []models.Shift{}}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("storage error reading %s: %w", f.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		backupPath := f.path + ".corrupt"
		_ = os.Rename(f.path, backupPath)
		return document{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", f.path, backupPath, err)
	}
	if doc.Shifts == nil {
		doc.Shifts = []models.Shift{}
	}
	return doc, nil
}

// save writes to a temp file and renames it over the document
func (f *FileStore) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
