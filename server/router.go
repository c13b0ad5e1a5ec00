package server

import (
	"strings"
	"time"

	httpHandler "watch-tracker/interfaces/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// isLocalOrigin allows any port on the loopback hosts the UI is served from.
func isLocalOrigin(origin string) bool {
	for _, prefix := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if origin == prefix || strings.HasPrefix(origin, prefix+":") {
			return true
		}
	}
	return false
}

func InitiateRouter(trackerHandler httpHandler.ITrackerHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc:  isLocalOrigin,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", trackerHandler.Healthz)

	api := router.Group("api")
	{
		api.GET("/videos", trackerHandler.ListVideos)
		api.POST("/videos", trackerHandler.AddVideo)
		api.DELETE("/videos/:id", trackerHandler.RemoveVideo)

		api.GET("/goal", trackerHandler.GetGoal)
		api.PUT("/goal", trackerHandler.SetGoal)

		api.GET("/progress", trackerHandler.GetProgress)
		api.GET("/progress/monthly", trackerHandler.GetMonthlyProgress)
		api.PUT("/progress/monthly/:month", trackerHandler.SetMonthlyGoal)
		api.POST("/progress/monthly/recompute", trackerHandler.RecomputeMonthly)
		api.GET("/progress/stream", trackerHandler.StreamProgress)
	}

	return router
}
