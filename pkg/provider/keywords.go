package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrIndexOutOfRange is returned when a keyword index does not exist.
var ErrIndexOutOfRange = errors.New("keyword index out of range")

// KeywordsFileName is the per-instance keyword document.
const KeywordsFileName = "keywords.json"

// KeywordStore persists a service instance's keywords and its opaque extras.
type KeywordStore interface {
	Keywords() ([]string, error)
	// AddKeyword appends keyword and replaces the extras in the same write.
	AddKeyword(keyword string, extras json.RawMessage) error
	// RemoveKeyword drops the keyword at index and, when extras is non-nil,
	// replaces the extras in the same write.
	RemoveKeyword(index int, extras json.RawMessage) (string, error)
	Extras() (json.RawMessage, error)
	SetExtras(extras json.RawMessage) error
}

type keywordDocument struct {
	Keywords []string        `json:"keywords"`
	Extras   json.RawMessage `json:"extras,omitempty"`
}

// FileKeywordStore keeps the whole document in one JSON file and rewrites it on
// every change.
type FileKeywordStore struct {
	mu   sync.Mutex
	path string
}

// NewFileKeywordStore stores the document at <dir>/keywords.json.
func NewFileKeywordStore(dir string) (*FileKeywordStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating keyword dir: %w", err)
	}
	return &FileKeywordStore{path: filepath.Join(dir, KeywordsFileName)}, nil
}

func (s *FileKeywordStore) load() (keywordDocument, error) {
	var doc keywordDocument
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileKeywordStore) save(doc keywordDocument) error {
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

func (s *FileKeywordStore) Keywords() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Keywords, nil
}

func (s *FileKeywordStore) AddKeyword(keyword string, extras json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Keywords = append(doc.Keywords, keyword)
	if extras != nil {
		doc.Extras = extras
	}
	return s.save(doc)
}

func (s *FileKeywordStore) RemoveKeyword(index int, extras json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(doc.Keywords) {
		return "", ErrIndexOutOfRange
	}
	removed := doc.Keywords[index]
	doc.Keywords = append(doc.Keywords[:index], doc.Keywords[index+1:]...)
	if extras != nil {
		doc.Extras = extras
	}
	return removed, s.save(doc)
}

func (s *FileKeywordStore) Extras() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Extras, nil
}

func (s *FileKeywordStore) SetExtras(extras json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Extras = extras
	return s.save(doc)
}
