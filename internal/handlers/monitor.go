package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/sparkmetric/citewatch-backend/internal/clients/redis"
  "github.com/sparkmetric/citewatch-backend/internal/logger"
  "github.com/sparkmetric/citewatch-backend/internal/services"
)

type MonitorHandler struct {
  log            *logger.Logger
  monitorService services.MonitorService
  batchLock      redis.BatchLock
}

func NewMonitorHandler(log *logger.Logger, monitorService services.MonitorService, batchLock redis.BatchLock) *MonitorHandler {
  return &MonitorHandler{
    log:            log.With("handler", "MonitorHandler"),
    monitorService: monitorService,
    batchLock:      batchLock,
  }
}

// RunBatch is the externally scheduled trigger. It takes the advisory lock
// first: the batch loop itself has no internal mutual exclusion, so two
// overlapping scheduler invocations must be fenced off here.
func (mh *MonitorHandler) RunBatch(c *gin.Context) {
  release, ok, err := mh.batchLock.Acquire(c.Request.Context())
  if err != nil {
    mh.log.Error("Could not acquire batch lock", "error", err)
    c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
    return
  }
  if !ok {
    c.JSON(http.StatusConflict, gin.H{"success": false, "message": "monitoring batch already running"})
    return
  }
  defer release()

  summary, err := mh.monitorService.RunBatch(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
    return
  }

  c.JSON(http.StatusOK, gin.H{
    "success": true,
    "message": "monitoring batch completed",
    "stats":   summary,
  })
}
