package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindwell/internal/userstore"
)

var (
	ErrGratitudeExists = errors.New("gratitude log already recorded for this date")
	ErrTooManyItems    = errors.New("gratitude log holds at most 3 items")
	ErrEmptyText       = errors.New("text is empty")
	ErrEntryNotFound   = errors.New("journal entry not found")
	ErrInvalidDate     = errors.New("date must be formatted 2006-01-02")
)

const maxGratitudeItems = 3

// DateKey formats t as the UTC calendar date used to key gratitude logs
// and streaks. Date boundaries are UTC everywhere.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Session binds an authenticated email to its loaded UserRecord for the
// lifetime of one login. Mutations are applied in order under the lock and
// flushed to the store as a full snapshot. A failed flush is logged as a
// warning; the in-memory record stays authoritative until the next
// successful save.
type Session struct {
	mu     sync.Mutex
	email  string
	key    string
	rec    *userstore.UserRecord
	store  userstore.Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

// flush persists the current record. Callers must hold s.mu.
func (s *Session) flush() {
	if err := s.store.Save(s.key, s.rec); err != nil {
		s.logger.Warnw("failed to persist user record, keeping in-memory state",
			"key", s.key, "error", err)
	}
}

func (s *Session) Email() string { return s.email }

// AppendExchange records one full chat turn: the user message, the mood
// entry classified from it, and the assistant reply. The three mutations
// are coalesced into a single save.
func (s *Session) AppendExchange(userMsg, assistantMsg string, mood userstore.MoodEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.rec.ChatHistory = append(s.rec.ChatHistory,
		userstore.ChatMessage{Role: "user", Message: userMsg, Timestamp: now})
	s.rec.MoodEntries = append(s.rec.MoodEntries, mood)
	s.rec.ChatHistory = append(s.rec.ChatHistory,
		userstore.ChatMessage{Role: "assistant", Message: assistantMsg, Timestamp: s.now()})
	s.flush()
}

// ChatHistory returns a copy of the conversation in chronological order.
func (s *Session) ChatHistory() []userstore.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]userstore.ChatMessage, len(s.rec.ChatHistory))
	copy(out, s.rec.ChatHistory)
	return out
}

// MoodEntries returns a copy of the mood history in chronological order.
func (s *Session) MoodEntries() []userstore.MoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]userstore.MoodEntry, len(s.rec.MoodEntries))
	copy(out, s.rec.MoodEntries)
	return out
}

// AddJournal appends a new journal entry and returns it with its
// generated ID.
func (s *Session) AddJournal(text, sentiment string) (userstore.JournalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return userstore.JournalEntry{}, ErrEmptyText
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := userstore.JournalEntry{
		ID:        uuid.New().String(),
		Timestamp: s.now(),
		Text:      text,
		Sentiment: sentiment,
	}
	s.rec.JournalEntries = append(s.rec.JournalEntries, entry)
	s.flush()
	return entry, nil
}

// Journal returns journal entries newest first.
func (s *Session) Journal() []userstore.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]userstore.JournalEntry, len(s.rec.JournalEntries))
	copy(out, s.rec.JournalEntries)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SearchJournal returns entries whose text contains q, case-insensitively,
// newest first.
func (s *Session) SearchJournal(q string) []userstore.JournalEntry {
	needle := strings.ToLower(strings.TrimSpace(q))
	all := s.Journal()
	if needle == "" {
		return all
	}
	out := make([]userstore.JournalEntry, 0, len(all))
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Text), needle) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Session) DeleteJournal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.rec.JournalEntries {
		if e.ID == id {
			s.rec.JournalEntries = append(s.rec.JournalEntries[:i], s.rec.JournalEntries[i+1:]...)
			s.flush()
			return nil
		}
	}
	return ErrEntryNotFound
}

// ExportJournal renders all entries as plain text for download, oldest
// first, matching the on-screen journal format.
func (s *Session) ExportJournal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, e := range s.rec.JournalEntries {
		fmt.Fprintf(&b, "%s [%s]\n%s\n\n", e.Timestamp.UTC().Format("2006-01-02 15:04"), e.Sentiment, e.Text)
	}
	return b.String()
}

// AddGratitude records up to three gratitude items for the given UTC date.
// A log for a date is write-once: a second submission for the same day is
// rejected with ErrGratitudeExists.
func (s *Session) AddGratitude(date string, items []string) error {
	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return ErrEmptyText
	}
	if len(cleaned) > maxGratitudeItems {
		return ErrTooManyItems
	}
	// Only well-formed UTC dates may become map keys; junk would inflate
	// the gratitude-day count in analytics.
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return ErrInvalidDate
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if date == "" {
		date = DateKey(s.now())
	}
	if _, ok := s.rec.GratitudeLogs[date]; ok {
		return ErrGratitudeExists
	}
	s.rec.GratitudeLogs[date] = cleaned
	s.flush()
	return nil
}

// Gratitude returns the log as a date-sorted list, newest first.
func (s *Session) Gratitude() []GratitudeDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GratitudeDay, 0, len(s.rec.GratitudeLogs))
	for date, items := range s.rec.GratitudeLogs {
		day := GratitudeDay{Date: date, Items: make([]string, len(items))}
		copy(day.Items, items)
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

type GratitudeDay struct {
	Date  string   `json:"date"`
	Items []string `json:"items"`
}

// Snapshot returns a deep copy of the record for read-only consumers
// (analytics, charts).
func (s *Session) Snapshot() *userstore.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := &userstore.UserRecord{
		Email:          s.rec.Email,
		CreatedAt:      s.rec.CreatedAt,
		MoodEntries:    append([]userstore.MoodEntry{}, s.rec.MoodEntries...),
		ChatHistory:    append([]userstore.ChatMessage{}, s.rec.ChatHistory...),
		JournalEntries: append([]userstore.JournalEntry{}, s.rec.JournalEntries...),
		GratitudeLogs:  make(map[string][]string, len(s.rec.GratitudeLogs)),
	}
	for date, items := range s.rec.GratitudeLogs {
		cp.GratitudeLogs[date] = append([]string{}, items...)
	}
	return cp
}
