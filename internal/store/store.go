package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"festivalbot/internal/atomicfile"
	appLog "festivalbot/internal/log"
	"festivalbot/internal/model"
)

const filePerm = 0o644

// Store reads and writes the festival list as an indented JSON array.
type Store struct {
	path string
}

// New returns a Store backed by the file at path. The file does not need to
// exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// rawRecord mirrors model.Record with pointer fields so that absent keys can
// be told apart from empty strings.
type rawRecord struct {
	Name  *string `json:"name"`
	Date  *string `json:"date"`
	Notes *string `json:"notes"`
}

// Load returns the saved festivals.
//
// A missing file is not an error and yields an empty list. A file that cannot
// be read or decoded as a whole yields an empty list together with an error
// the caller is expected to surface as a warning. Individual entries that
// are not objects or lack a name or date are dropped; dates are not
// validated here.
func (s *Store) Load() ([]model.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Debug("store: no data file yet", "path", s.path)
			return []model.Record{}, nil
		}
		return []model.Record{}, fmt.Errorf("could not read %s: %w", s.path, err)
	}

	records, dropped, err := decode(data)
	if err != nil {
		return []model.Record{}, fmt.Errorf("could not read %s: %w", s.path, err)
	}
	if dropped > 0 {
		appLog.Warn("store: dropped incomplete entries", "path", s.path, "dropped", dropped)
	}
	appLog.Debug("store: loaded", "path", s.path, "count", len(records))
	return records, nil
}

// Save overwrites the data file with records.
func (s *Store) Save(records []model.Record) error {
	if err := Export(records, s.path); err != nil {
		return err
	}
	appLog.Debug("store: saved", "path", s.path, "count", len(records))
	return nil
}

// Export writes records to path in the same format as the data file. It does
// not touch the store's own file.
func Export(records []model.Record, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("export path is empty")
	}
	data, err := Encode(records)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data, filePerm)
}

// Encode renders records as a two-space indented JSON array. Non-ASCII text
// and HTML characters are written as-is.
func Encode(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) ([]model.Record, int, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, 0, err
	}

	records := make([]model.Record, 0, len(elems))
	dropped := 0
	for _, elem := range elems {
		// Entries that are not objects, or hold non-string fields, are
		// dropped like entries with missing keys.
		var r rawRecord
		if err := json.Unmarshal(elem, &r); err != nil {
			dropped++
			continue
		}
		if r.Name == nil || r.Date == nil || *r.Name == "" {
			dropped++
			continue
		}
		rec := model.Record{Name: *r.Name, Date: *r.Date}
		if r.Notes != nil {
			rec.Notes = *r.Notes
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}
