package userstore

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MoodEntry is one scored emotional check-in, derived from a chat exchange.
type MoodEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Emotion   string    `json:"emotion"`
}

// ChatMessage is one message in the companion conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// JournalEntry is one dated free-text entry with its sentiment tag.
type JournalEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Sentiment string    `json:"sentiment"`
}

// UserRecord is the full persisted state for one user.
// Sequences are append-only within a session, except explicit journal
// deletes. GratitudeLogs maps a UTC date ("2006-01-02") to at most three
// items and is write-once per date.
type UserRecord struct {
	Email          string              `json:"email"`
	CreatedAt      time.Time           `json:"created_at"`
	MoodEntries    []MoodEntry         `json:"mood_entries"`
	ChatHistory    []ChatMessage       `json:"chat_history"`
	JournalEntries []JournalEntry      `json:"journal_entries"`
	GratitudeLogs  map[string][]string `json:"gratitude_logs"`
}

// NewRecord returns an empty-but-valid skeleton for a first login.
func NewRecord(email string) *UserRecord {
	return &UserRecord{
		Email:          email,
		CreatedAt:      time.Now().UTC(),
		MoodEntries:    []MoodEntry{},
		ChatHistory:    []ChatMessage{},
		JournalEntries: []JournalEntry{},
		GratitudeLogs:  map[string][]string{},
	}
}

// Store abstracts persistence of user records.
// Implementations can be file-based, database, etc.
// Load must return an empty skeleton for unknown keys, never an error.
// Save must replace the whole document without exposing partial writes.
type Store interface {
	Load(key string) (*UserRecord, error)
	Save(key string, rec *UserRecord) error
}

// UserKey derives a deterministic filesystem-safe key from an email
// address: lowercased, non-alphanumerics mapped to '_', plus a short
// sha256 suffix so distinct addresses never collide after sanitizing.
func UserKey(email string) string {
	lower := strings.ToLower(strings.TrimSpace(email))
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sum := sha256.Sum256([]byte(lower))
	b.WriteByte('_')
	b.WriteString(hex.EncodeToString(sum[:4]))
	return b.String()
}
