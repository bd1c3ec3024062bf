package web

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindwell/internal/auth"
)

// NewRouter assembles the HTTP surface: the public login route, the
// JWT-protected feature panels, and a health check.
func NewRouter(h *Handlers, authSvc *auth.Service, logger *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(RequestLogger(logger))

	public := r.Group("/api/v1")
	{
		public.POST("/auth/google", h.GoogleLogin)
	}

	private := r.Group("/api/v1")
	private.Use(AuthMiddleware(authSvc))
	{
		private.POST("/auth/logout", h.Logout)

		private.GET("/home", h.Home)

		private.POST("/chat", h.Chat)
		private.GET("/chat/history", h.ChatHistory)

		private.GET("/analytics/summary", h.AnalyticsSummary)
		private.GET("/analytics/insight", h.AnalyticsInsight)
		private.GET("/analytics/mood.png", h.MoodChart)
		private.GET("/analytics/emotions.png", h.EmotionChart)

		private.POST("/journal", h.JournalAdd)
		private.GET("/journal", h.JournalList)
		private.GET("/journal/search", h.JournalSearch)
		private.GET("/journal/export", h.JournalExport)
		private.DELETE("/journal/:id", h.JournalDelete)

		private.POST("/gratitude", h.GratitudeAdd)
		private.GET("/gratitude", h.GratitudeList)

		private.GET("/quote", h.QuoteToday)
		private.GET("/wellness/tools", h.WellnessTools)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	return r
}
