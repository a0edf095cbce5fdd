package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/repos"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

// CitationNotifier turns a citation status transition into a persisted,
// user-visible notification. It never propagates failures: a notification
// that cannot be written must not block the monitoring run.
type CitationNotifier interface {
	StatusChanged(ctx context.Context, entry *types.MonitoringEntry, result *CheckResult)
}

type citationNotifier struct {
	db               *gorm.DB
	log              *logger.Logger
	userRepo         repos.UserRepo
	notificationRepo repos.NotificationRepo
}

func NewCitationNotifier(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, notificationRepo repos.NotificationRepo) CitationNotifier {
	return &citationNotifier{
		db:               db,
		log:              baseLog.With("service", "CitationNotifier"),
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

func (n *citationNotifier) StatusChanged(ctx context.Context, entry *types.MonitoringEntry, result *CheckResult) {
	if n == nil || entry == nil || result == nil {
		return
	}

	// Contact identity lives with the auth service; failure to resolve it is
	// logged and swallowed so the status write is never blocked.
	user, err := n.userRepo.GetByID(ctx, nil, entry.UserID)
	if err != nil {
		n.log.Warn("Could not resolve user for citation alert",
			"user_id", entry.UserID,
			"entry_id", entry.ID,
			"error", err,
		)
	}

	statusText := "not cited"
	title := "Citation lost"
	if result.IsCited {
		statusText = "cited"
		title = "New citation detected"
	}
	message := fmt.Sprintf("Citation status changed for query '%s': %s is now %s", entry.Query, entry.Domain, statusText)

	payload, err := json.Marshal(map[string]interface{}{
		"entry_id": entry.ID,
		"query":    entry.Query,
		"domain":   entry.Domain,
		"engine":   result.Engine,
		"is_cited": result.IsCited,
	})
	if err != nil {
		n.log.Warn("Could not encode citation alert payload", "entry_id", entry.ID, "error", err)
		payload = nil
	}

	notification := &types.Notification{
		UserID:  entry.UserID,
		Type:    types.NotificationTypeCitationChange,
		Title:   title,
		Message: message,
		Data:    datatypes.JSON(payload),
	}

	if _, err := n.notificationRepo.Create(ctx, nil, []*types.Notification{notification}); err != nil {
		n.log.Warn("Could not persist citation alert",
			"user_id", entry.UserID,
			"entry_id", entry.ID,
			"error", err,
		)
		return
	}

	email := ""
	if user != nil {
		email = user.Email
	}
	n.log.Info("Citation alert recorded",
		"user_id", entry.UserID,
		"entry_id", entry.ID,
		"query", entry.Query,
		"is_cited", result.IsCited,
		"contact", email,
	)
}
