package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/sparkmetric/citewatch-backend/internal/services"
)

type StatsHandler struct {
  statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
  return &StatsHandler{statsService: statsService}
}

func (sh *StatsHandler) GetDashboard(c *gin.Context) {
  userID, err := uuid.Parse(c.Query("user_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
    return
  }

  stats, err := sh.statsService.GetDashboard(c.Request.Context(), userID)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"stats": stats})
}
