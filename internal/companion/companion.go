package companion

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mindwell/internal/llm"
	"mindwell/internal/session"
	"mindwell/internal/userstore"
)

// DefaultSystemPrompt is used when no prompt file is configured.
const DefaultSystemPrompt = "You are a compassionate mental health support assistant. " +
	"Provide empathetic, safe, and supportive responses."

// FallbackReply is returned whenever the LLM collaborator fails; the
// session must never crash on an external error.
const FallbackReply = "AI service is temporarily unavailable. Please try again."

// InsightUnavailable replaces a failed mood insight generation.
const InsightUnavailable = "Mood insight unavailable."

// CrisisResponse is returned verbatim when a message trips the crisis
// keyword check. Nothing is sent to the LLM and nothing is persisted.
const CrisisResponse = `If you're in immediate danger:

- US: call or text 988
- UK: Samaritans, 116 123
- Or contact local emergency services`

var crisisWords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"self harm",
	"i want to die",
}

// IsCrisisMessage reports whether text contains a crisis keyword.
// Matching is a static case-insensitive substring check.
func IsCrisisMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range crisisWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Emotions the classifier may return; anything else maps to Neutral.
var emotionScores = map[string]int{
	"Anxiety":  -1,
	"Sadness":  -1,
	"Anger":    -1,
	"Burnout":  -1,
	"Positive": 1,
	"Neutral":  0,
}

const (
	chatMemoryLimit     = 20 // messages of history sent with each reply request
	emotionContextLimit = 6  // recent user messages used for classification

	chatTemperature    = 0.7
	chatMaxTokens      = 200
	emotionMaxTokens   = 10
	insightTemperature = 0.5
	insightMaxTokens   = 100
	tagMaxTokens       = 10
)

const emotionPrompt = "Based on the conversation, classify the user's overall emotional " +
	"state into one of these categories only: Anxiety, Sadness, Anger, Burnout, Positive, " +
	"Neutral. Respond with just one word."

const insightPrompt = "Analyze the user's mood trend and provide a short supportive " +
	"insight in 2-3 sentences."

const sentimentPrompt = "Classify the sentiment of this journal entry as one of: " +
	"Positive, Negative, Neutral. Respond with just one word."

// Service orchestrates the wellness features on top of the LLM client and
// the per-user session state.
type Service struct {
	llm          llm.Client
	systemPrompt string
	logger       *zap.SugaredLogger
}

func New(client llm.Client, systemPrompt string, logger *zap.SugaredLogger) *Service {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Service{llm: client, systemPrompt: systemPrompt, logger: logger}
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Reply   string `json:"reply"`
	Crisis  bool   `json:"crisis"`
	Emotion string `json:"emotion"`
	Score   int    `json:"score"`
}

// Chat runs one full turn: crisis check, emotion classification, reply
// generation, then a single coalesced persist of the exchange.
func (s *Service) Chat(ctx context.Context, sess *session.Session, text string) ChatResult {
	if IsCrisisMessage(text) {
		s.logger.Warnw("crisis keywords detected, short-circuiting LLM", "user", sess.Email())
		return ChatResult{Reply: CrisisResponse, Crisis: true}
	}

	history := sess.ChatHistory()
	emotion, score := s.detectEmotion(ctx, history, text)
	reply := s.generateReply(ctx, history, text)

	sess.AppendExchange(text, reply, userstore.MoodEntry{
		Timestamp: time.Now().UTC(),
		Score:     score,
		Emotion:   emotion,
	})

	return ChatResult{Reply: reply, Emotion: emotion, Score: score}
}

// detectEmotion classifies the user's state from their recent messages
// plus the incoming one. Any failure degrades to Neutral.
func (s *Service) detectEmotion(ctx context.Context, history []userstore.ChatMessage, text string) (string, int) {
	var recent []string
	for _, m := range history {
		if m.Role == "user" {
			recent = append(recent, m.Message)
		}
	}
	recent = append(recent, text)
	if len(recent) > emotionContextLimit {
		recent = recent[len(recent)-emotionContextLimit:]
	}

	resp, err := s.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: emotionPrompt},
		{Role: "user", Content: strings.Join(recent, "\n")},
	}, llm.Options{MaxTokens: emotionMaxTokens})
	if err != nil {
		s.logger.Warnw("emotion classification failed", "error", err)
		return "Neutral", 0
	}

	emotion := strings.TrimSpace(resp.Content)
	score, ok := emotionScores[emotion]
	if !ok {
		return "Neutral", 0
	}
	return emotion, score
}

// generateReply asks the LLM for a supportive response over the recent
// conversation window. Failure returns the fixed fallback string, which is
// still recorded as the assistant's reply.
func (s *Service) generateReply(ctx context.Context, history []userstore.ChatMessage, text string) string {
	msgs := []llm.Message{{Role: "system", Content: s.systemPrompt}}
	window := append(append([]userstore.ChatMessage{}, history...),
		userstore.ChatMessage{Role: "user", Message: text})
	if len(window) > chatMemoryLimit {
		window = window[len(window)-chatMemoryLimit:]
	}
	for _, m := range window {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Message})
	}

	resp, err := s.llm.Generate(ctx, msgs, llm.Options{
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		s.logger.Warnw("reply generation failed", "error", err)
		return FallbackReply
	}
	return resp.Content
}

// MoodInsight summarizes the user's mood history in a few sentences.
func (s *Service) MoodInsight(ctx context.Context, sess *session.Session) string {
	entries := sess.MoodEntries()
	if len(entries) == 0 {
		return "Not enough data yet."
	}
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Emotion)
	}

	resp, err := s.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: insightPrompt},
		{Role: "user", Content: "Mood history: " + strings.Join(labels, ", ")},
	}, llm.Options{Temperature: insightTemperature, MaxTokens: insightMaxTokens})
	if err != nil {
		s.logger.Warnw("mood insight failed", "error", err)
		return InsightUnavailable
	}
	return resp.Content
}

// TagSentiment labels journal text Positive/Negative/Neutral, degrading to
// Neutral on any failure.
func (s *Service) TagSentiment(ctx context.Context, text string) string {
	resp, err := s.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: sentimentPrompt},
		{Role: "user", Content: text},
	}, llm.Options{MaxTokens: tagMaxTokens})
	if err != nil {
		s.logger.Warnw("sentiment tagging failed", "error", err)
		return "Neutral"
	}
	switch tag := strings.TrimSpace(resp.Content); tag {
	case "Positive", "Negative", "Neutral":
		return tag
	default:
		return "Neutral"
	}
}

// AddJournal tags and stores a new journal entry.
func (s *Service) AddJournal(ctx context.Context, sess *session.Session, text string) (userstore.JournalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return userstore.JournalEntry{}, session.ErrEmptyText
	}
	sentiment := s.TagSentiment(ctx, text)
	return sess.AddJournal(text, sentiment)
}
