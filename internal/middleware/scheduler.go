package middleware

import (
  "crypto/subtle"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/sparkmetric/citewatch-backend/internal/logger"
)

// SchedulerMiddleware guards the internal batch trigger. The cron/scheduler
// that invokes it presents a shared token; user auth never reaches this path.
type SchedulerMiddleware struct {
  log   *logger.Logger
  token string
}

func NewSchedulerMiddleware(log *logger.Logger, token string) *SchedulerMiddleware {
  middlewareLog := log.With("Middleware", "SchedulerMiddleware")
  return &SchedulerMiddleware{log: middlewareLog, token: strings.TrimSpace(token)}
}

func (sm *SchedulerMiddleware) RequireSchedulerToken() gin.HandlerFunc {
  return func(c *gin.Context) {
    if sm.token == "" {
      sm.log.Error("SCHEDULER_TOKEN not configured, refusing trigger")
      c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler trigger not configured"})
      return
    }
    presented := strings.TrimSpace(c.GetHeader("X-Scheduler-Token"))
    if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(sm.token)) != 1 {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid scheduler token"})
      return
    }
    c.Next()
  }
}
