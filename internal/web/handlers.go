package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindwell/internal/analytics"
	"mindwell/internal/auth"
	"mindwell/internal/charts"
	"mindwell/internal/companion"
	"mindwell/internal/quotes"
	"mindwell/internal/session"
)

// Handlers wires the feature panels to the session layer and the
// collaborator clients.
type Handlers struct {
	sessions  *session.Manager
	companion *companion.Service
	auth      *auth.Service
	quotes    *quotes.Client
	logger    *zap.SugaredLogger
}

func NewHandlers(
	sessions *session.Manager,
	comp *companion.Service,
	authSvc *auth.Service,
	quoteClient *quotes.Client,
	logger *zap.SugaredLogger,
) *Handlers {
	return &Handlers{
		sessions:  sessions,
		companion: comp,
		auth:      authSvc,
		quotes:    quoteClient,
		logger:    logger,
	}
}

// sessionFrom resolves the live session for the authenticated request.
func (h *Handlers) sessionFrom(c *gin.Context) (*session.Session, bool) {
	email := c.GetString(emailContextKey)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return nil, false
	}
	sess, err := h.sessions.Get(email)
	if err != nil {
		h.logger.Errorw("failed to open session", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return nil, false
	}
	return sess, true
}

// GoogleLogin exchanges an OAuth authorization code for a session token
// and warms the user's record.
func (h *Handlers) GoogleLogin(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	email, err := h.auth.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.Warnw("oauth exchange failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
		return
	}

	if _, err := h.sessions.Get(email); err != nil {
		h.logger.Errorw("failed to open session after login", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	token, err := h.auth.IssueToken(email)
	if err != nil {
		h.logger.Errorw("failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "email": email})
}

// Logout drops the user's in-memory session. The persisted record is
// untouched; the next authenticated request reloads it.
func (h *Handlers) Logout(c *gin.Context) {
	email := c.GetString(emailContextKey)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	h.sessions.Evict(email)
	c.Status(http.StatusNoContent)
}

// Home serves the landing panel: quote of the day, streak and activity
// summary.
func (h *Handlers) Home(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	summary := analytics.Summarize(sess.Snapshot(), time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{
		"email":   sess.Email(),
		"quote":   h.quotes.Today(c.Request.Context()),
		"summary": summary,
	})
}

// Chat runs one companion chat turn.
func (h *Handlers) Chat(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	res := h.companion.Chat(c.Request.Context(), sess, req.Message)
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) ChatHistory(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": sess.ChatHistory()})
}

func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.Summarize(sess.Snapshot(), time.Now().UTC()))
}

func (h *Handlers) AnalyticsInsight(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": h.companion.MoodInsight(c.Request.Context(), sess)})
}

func (h *Handlers) MoodChart(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	png, err := charts.MoodTrendPNG(analytics.Scores(sess.MoodEntries()))
	if errors.Is(err, charts.ErrNoData) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.Errorw("mood chart render failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chart rendering failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handlers) EmotionChart(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	png, err := charts.EmotionPiePNG(analytics.Distribution(sess.MoodEntries()))
	if errors.Is(err, charts.ErrNoData) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.Errorw("emotion chart render failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chart rendering failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handlers) JournalAdd(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	entry, err := h.companion.AddJournal(c.Request.Context(), sess, req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handlers) JournalList(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": sess.Journal()})
}

func (h *Handlers) JournalSearch(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": sess.SearchJournal(c.Query("q"))})
}

func (h *Handlers) JournalDelete(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	err := sess.DeleteJournal(c.Param("id"))
	if errors.Is(err, session.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) JournalExport(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="journal.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sess.ExportJournal()))
}

func (h *Handlers) GratitudeAdd(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	var req struct {
		Date  string   `json:"date"`
		Items []string `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	err := sess.AddGratitude(req.Date, req.Items)
	switch {
	case errors.Is(err, session.ErrGratitudeExists):
		c.JSON(http.StatusConflict, gin.H{"error": "gratitude already logged for this date"})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusCreated)
	}
}

func (h *Handlers) GratitudeList(c *gin.Context) {
	sess, ok := h.sessionFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": sess.Gratitude()})
}

func (h *Handlers) QuoteToday(c *gin.Context) {
	c.JSON(http.StatusOK, h.quotes.Today(c.Request.Context()))
}

func (h *Handlers) WellnessTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": wellnessTools})
}
