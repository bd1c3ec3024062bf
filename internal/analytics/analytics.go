package analytics

import (
	"time"

	"mindwell/internal/userstore"
)

// Summary aggregates a user's record for the home and analytics panels.
type Summary struct {
	MoodEntries     int            `json:"mood_entries"`
	AverageScore    float64        `json:"average_score"`
	Distribution    map[string]int `json:"distribution"`
	GratitudeStreak int            `json:"gratitude_streak"`
	GratitudeDays   int            `json:"gratitude_days"`
	JournalEntries  int            `json:"journal_entries"`
	ChatMessages    int            `json:"chat_messages"`
	LastCheckIn     *time.Time     `json:"last_check_in,omitempty"`
}

// Summarize derives all aggregates from one record. now anchors the
// streak calculation; date boundaries are UTC.
func Summarize(rec *userstore.UserRecord, now time.Time) Summary {
	s := Summary{
		MoodEntries:     len(rec.MoodEntries),
		AverageScore:    AverageScore(rec.MoodEntries),
		Distribution:    Distribution(rec.MoodEntries),
		GratitudeStreak: GratitudeStreak(rec.GratitudeLogs, now),
		GratitudeDays:   len(rec.GratitudeLogs),
		JournalEntries:  len(rec.JournalEntries),
		ChatMessages:    len(rec.ChatHistory),
	}
	if n := len(rec.MoodEntries); n > 0 {
		last := rec.MoodEntries[n-1].Timestamp
		s.LastCheckIn = &last
	}
	return s
}

// Scores returns the ordered mood scores as floats for charting.
func Scores(entries []userstore.MoodEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = float64(e.Score)
	}
	return out
}

func AverageScore(entries []userstore.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Score
	}
	return float64(sum) / float64(len(entries))
}

// Distribution counts mood entries per emotion label.
func Distribution(entries []userstore.MoodEntry) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		out[e.Emotion]++
	}
	return out
}

// GratitudeStreak counts consecutive UTC days with a gratitude log,
// ending today or yesterday. A streak is not broken until a full day has
// passed without a log.
func GratitudeStreak(logs map[string][]string, now time.Time) int {
	day := now.UTC().Truncate(24 * time.Hour)
	if _, ok := logs[day.Format("2006-01-02")]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := logs[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
