package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/sparkmetric/citewatch-backend/internal/handlers"
  "github.com/sparkmetric/citewatch-backend/internal/middleware"
)

type RouterConfig struct {
  SchedulerMiddleware    *middleware.SchedulerMiddleware
  MonitorHandler         *handlers.MonitorHandler
  StatsHandler           *handlers.StatsHandler
  NotificationHandler    *handlers.NotificationHandler
  MonitoringEntryHandler *handlers.MonitoringEntryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Scheduler-Token"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)

// ===============
// || Scheduler ||
// ===============
  internalGroup := router.Group("/internal")
  internalGroup.Use(cfg.SchedulerMiddleware.RequireSchedulerToken())
  internalGroup.POST("/monitoring/run", cfg.MonitorHandler.RunBatch)

// ===============
// || API       ||
// ===============
  api := router.Group("/api")
  {
    api.GET("/stats/dashboard", cfg.StatsHandler.GetDashboard)

    api.GET("/notifications", cfg.NotificationHandler.List)
    api.GET("/notifications/unread-count", cfg.NotificationHandler.UnreadCount)
    api.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
    api.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)

    api.GET("/monitoring/entries", cfg.MonitoringEntryHandler.List)
    api.POST("/monitoring/entries", cfg.MonitoringEntryHandler.Create)
    api.DELETE("/monitoring/entries/:id", cfg.MonitoringEntryHandler.Deactivate)
  }

  return router
}
