package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/sparkmetric/citewatch-backend/internal/types"
)

func TestNotificationRepoReadFlow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	userRepo := NewUserRepo(db, testLogger(t))
	repo := NewNotificationRepo(db, testLogger(t))
	user := seedUser(t, ctx, userRepo)

	created, err := repo.Create(ctx, nil, []*types.Notification{
		{
			UserID:  user.ID,
			Type:    types.NotificationTypeCitationChange,
			Title:   "New citation detected",
			Message: "Citation status changed for query 'best crm': example.com is now cited",
			Data:    datatypes.JSON([]byte(`{"query":"best crm","is_cited":true}`)),
		},
		{
			UserID:  user.ID,
			Type:    types.NotificationTypeCitationChange,
			Title:   "Citation lost",
			Message: "Citation status changed for query 'email tool': example.com is now not cited",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := repo.UnreadCount(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("unread = %d, want 2", count)
	}

	if err := repo.MarkRead(ctx, nil, user.ID, created[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	count, _ = repo.UnreadCount(ctx, nil, user.ID)
	if count != 1 {
		t.Fatalf("unread after MarkRead = %d, want 1", count)
	}

	if err := repo.MarkAllRead(ctx, nil, user.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	count, _ = repo.UnreadCount(ctx, nil, user.ID)
	if count != 0 {
		t.Fatalf("unread after MarkAllRead = %d, want 0", count)
	}

	list, err := repo.GetByUserID(ctx, nil, user.ID, 10, 0)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
}
