package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/reelhire/reelhire/internal/api/handlers"
	"github.com/reelhire/reelhire/internal/api/middleware"
)

type Deps struct {
	Records    *handlers.RecordsHandler
	Recordings *handlers.RecordingsHandler
	Analyze    *handlers.AnalyzeHandler
	Updates    *handlers.UpdatesWSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	// whole-collection read/replace is the entire record store surface
	auth.GET("/api/jobs", d.Records.GetJobs)
	auth.POST("/api/jobs", middleware.RequireRole("recruiter", "kiosk"), d.Records.ReplaceJobs)
	auth.GET("/api/drafts", d.Records.GetDrafts)
	auth.POST("/api/drafts", middleware.RequireRole("recruiter", "kiosk"), d.Records.ReplaceDrafts)

	auth.POST("/api/recordings", d.Recordings.Upload)
	auth.GET("/api/recordings", middleware.RequireRole("recruiter"), d.Recordings.List)
	auth.POST("/api/analyze", d.Analyze.Analyze)

	// WebSocket change feed
	auth.GET("/ws/updates", d.Updates.Updates)
}
