package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/sparkmetric/citewatch-backend/internal/services"
  "github.com/sparkmetric/citewatch-backend/internal/types"
)

type MonitoringEntryHandler struct {
  entryService services.MonitoringEntryService
}

func NewMonitoringEntryHandler(entryService services.MonitoringEntryService) *MonitoringEntryHandler {
  return &MonitoringEntryHandler{entryService: entryService}
}

func (mh *MonitoringEntryHandler) List(c *gin.Context) {
  userID, err := uuid.Parse(c.Query("user_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
    return
  }

  entries, err := mh.entryService.List(c.Request.Context(), userID)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (mh *MonitoringEntryHandler) Create(c *gin.Context) {
  var body struct {
    UserID         string `json:"user_id"`
    Query          string `json:"query"`
    Domain         string `json:"domain"`
    CheckFrequency string `json:"check_frequency"`
    AlertOnChange  *bool  `json:"alert_on_change"`
  }
  if err := c.ShouldBindJSON(&body); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  userID, err := uuid.Parse(body.UserID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
    return
  }

  alert := true
  if body.AlertOnChange != nil {
    alert = *body.AlertOnChange
  }

  entry, err := mh.entryService.Create(c.Request.Context(), services.CreateEntryInput{
    UserID:         userID,
    Query:          body.Query,
    Domain:         body.Domain,
    CheckFrequency: types.CheckFrequency(body.CheckFrequency),
    AlertOnChange:  alert,
  })
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (mh *MonitoringEntryHandler) Deactivate(c *gin.Context) {
  userID, err := uuid.Parse(c.Query("user_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
    return
  }
  entryID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
    return
  }

  if err := mh.entryService.Deactivate(c.Request.Context(), userID, entryID); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
}
