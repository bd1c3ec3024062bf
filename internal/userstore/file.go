package userstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON document per user key under dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads the record for key. A missing or malformed file yields a
// fresh skeleton, so first logins and corrupted documents behave the same.
func (s *FileStore) Load(key string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return NewRecord(""), nil
	}
	var rec UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return NewRecord(""), nil
	}
	// Older or hand-edited documents may omit maps/slices entirely.
	if rec.MoodEntries == nil {
		rec.MoodEntries = []MoodEntry{}
	}
	if rec.ChatHistory == nil {
		rec.ChatHistory = []ChatMessage{}
	}
	if rec.JournalEntries == nil {
		rec.JournalEntries = []JournalEntry{}
	}
	if rec.GratitudeLogs == nil {
		rec.GratitudeLogs = map[string][]string{}
	}
	return &rec, nil
}

// Save writes a full snapshot atomically: temp file in the same directory,
// then rename, so a crash mid-write never leaves a partial document.
func (s *FileStore) Save(key string, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}
