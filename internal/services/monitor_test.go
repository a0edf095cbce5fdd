package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

// ---- in-memory fakes over the repo interfaces ----

type fakeEntryRepo struct {
	entries []*types.MonitoringEntry
}

func (f *fakeEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.MonitoringEntry) ([]*types.MonitoringEntry, error) {
	f.entries = append(f.entries, entries...)
	return entries, nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MonitoringEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEntryRepo) GetActive(ctx context.Context, tx *gorm.DB) ([]*types.MonitoringEntry, error) {
	var out []*types.MonitoringEntry
	for _, e := range f.entries {
		if e.IsActive {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MonitoringEntry, error) {
	var out []*types.MonitoringEntry
	for _, e := range f.entries {
		if e.UserID == userID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) UpdateCheckResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, checkedAt time.Time, status types.CitationStatus) error {
	for _, e := range f.entries {
		if e.ID == id {
			ts := checkedAt
			e.LastCheckedAt = &ts
			e.LastCitationStatus = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeEntryRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	for _, e := range f.entries {
		if e.ID == id {
			e.IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeCheckRepo struct {
	records []*types.CitationCheckRecord
}

func (f *fakeCheckRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.CitationCheckRecord) ([]*types.CitationCheckRecord, error) {
	f.records = append(f.records, records...)
	return records, nil
}

func (f *fakeCheckRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.CitationCheckRecord, error) {
	var out []*types.CitationCheckRecord
	for _, r := range f.records {
		if r.UserID == userID && !r.CheckedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCheckRepo) GetRecentCited(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CitationCheckRecord, error) {
	var out []*types.CitationCheckRecord
	for _, r := range f.records {
		if r.UserID == userID && r.IsCited {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeNotificationRepo struct {
	notifications []*types.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notifications []*types.Notification) ([]*types.Notification, error) {
	f.notifications = append(f.notifications, notifications...)
	return notifications, nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.Notification, error) {
	return f.notifications, nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, userID, notificationID uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		f.users[u.ID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// scriptedChecker answers each engine call via respond and records every call.
type scriptedChecker struct {
	calls   []CheckRequest
	respond func(req CheckRequest) (*CheckResult, error)
}

func (s *scriptedChecker) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	s.calls = append(s.calls, req)
	return s.respond(req)
}

// ---- helpers ----

type monitorFixture struct {
	service   *monitorService
	entryRepo *fakeEntryRepo
	checkRepo *fakeCheckRepo
	notifRepo *fakeNotificationRepo
	checker   *scriptedChecker
}

func newMonitorFixture(t *testing.T, respond func(req CheckRequest) (*CheckResult, error)) *monitorFixture {
	t.Helper()
	log := logger.NewNop()
	entryRepo := &fakeEntryRepo{}
	checkRepo := &fakeCheckRepo{}
	notifRepo := &fakeNotificationRepo{}
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
	checker := &scriptedChecker{respond: respond}
	notifier := NewCitationNotifier(nil, log, userRepo, notifRepo)
	svc := NewMonitorService(nil, log, entryRepo, checkRepo, checker, notifier, NewNopPacer()).(*monitorService)
	return &monitorFixture{
		service:   svc,
		entryRepo: entryRepo,
		checkRepo: checkRepo,
		notifRepo: notifRepo,
		checker:   checker,
	}
}

func citedResult(req CheckRequest, cited bool) *CheckResult {
	return &CheckResult{
		IsCited:    cited,
		AnswerText: "some answer",
		Engine:     req.Engine,
		CitedSources: []types.CitedSource{
			{Title: "Example", Link: "https://example.com"},
		},
	}
}

func seedEntry(f *monitorFixture, frequency types.CheckFrequency, lastChecked *time.Time, status types.CitationStatus, alert bool) *types.MonitoringEntry {
	entry := &types.MonitoringEntry{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		Query:              "best crm software",
		Domain:             "example.com",
		CheckFrequency:     frequency,
		AlertOnChange:      alert,
		IsActive:           true,
		LastCheckedAt:      lastChecked,
		LastCitationStatus: status,
	}
	f.entryRepo.entries = append(f.entryRepo.entries, entry)
	return entry
}

// ---- tests ----

func TestRunBatchFirstCheckIsBaselineNotTransition(t *testing.T) {
	f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
		return citedResult(req, true), nil
	})
	entry := seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)

	summary, err := f.service.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if summary.TotalEntries != 1 || summary.CheckedCount != 1 {
		t.Fatalf("summary = %+v, want 1 total / 1 checked", summary)
	}
	if summary.StatusChanges != 0 {
		t.Fatalf("first successful check must not count as a status change, got %d", summary.StatusChanges)
	}
	if len(f.notifRepo.notifications) != 0 {
		t.Fatalf("first successful check must not notify, got %d notifications", len(f.notifRepo.notifications))
	}

	stored, _ := f.entryRepo.GetByID(context.Background(), nil, entry.ID)
	if stored.LastCitationStatus != types.StatusCited {
		t.Fatalf("status = %s, want cited", stored.LastCitationStatus)
	}
	if stored.LastCheckedAt == nil {
		t.Fatal("last_checked_at must be set after a successful check")
	}
	if len(f.checkRepo.records) != len(MonitoredEngines) {
		t.Fatalf("got %d check records, want one per engine (%d)", len(f.checkRepo.records), len(MonitoredEngines))
	}
}

func TestRunBatchTransitionNotifiesOnce(t *testing.T) {
	for _, alert := range []bool{true, false} {
		t.Run(fmt.Sprintf("alert_on_change_%v", alert), func(t *testing.T) {
			f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
				return citedResult(req, true), nil
			})
			tenDaysAgo := time.Now().AddDate(0, 0, -10)
			entry := seedEntry(f, types.FrequencyWeekly, &tenDaysAgo, types.StatusNotCited, alert)

			summary, err := f.service.RunBatch(context.Background())
			if err != nil {
				t.Fatalf("RunBatch: %v", err)
			}

			if summary.CheckedCount != 1 || summary.StatusChanges != 1 {
				t.Fatalf("summary = %+v, want checked=1 changes=1", summary)
			}

			wantNotifications := 0
			if alert {
				wantNotifications = 1
			}
			if len(f.notifRepo.notifications) != wantNotifications {
				t.Fatalf("got %d notifications, want %d", len(f.notifRepo.notifications), wantNotifications)
			}

			stored, _ := f.entryRepo.GetByID(context.Background(), nil, entry.ID)
			if stored.LastCitationStatus != types.StatusCited {
				t.Fatalf("status = %s, want cited regardless of alert flag", stored.LastCitationStatus)
			}
		})
	}
}

func TestRunBatchIdempotentWithinWindow(t *testing.T) {
	f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
		return citedResult(req, false), nil
	})
	seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)

	if _, err := f.service.RunBatch(context.Background()); err != nil {
		t.Fatalf("first RunBatch: %v", err)
	}
	callsAfterFirst := len(f.checker.calls)
	if callsAfterFirst == 0 {
		t.Fatal("first run must invoke the checker")
	}

	summary, err := f.service.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("second RunBatch: %v", err)
	}
	if len(f.checker.calls) != callsAfterFirst {
		t.Fatalf("second immediate run made %d extra checker calls, want 0", len(f.checker.calls)-callsAfterFirst)
	}
	if summary.CheckedCount != 0 {
		t.Fatalf("second run checkedCount = %d, want 0", summary.CheckedCount)
	}
	if summary.TotalEntries != 1 {
		t.Fatalf("second run totalEntries = %d, want 1", summary.TotalEntries)
	}
}

func TestRunBatchAllEnginesFailLeavesEntryUntouched(t *testing.T) {
	f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
		return nil, fmt.Errorf("engine unavailable")
	})
	entry := seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)

	summary, err := f.service.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if summary.TotalEntries != 1 || summary.CheckedCount != 0 || summary.StatusChanges != 0 {
		t.Fatalf("summary = %+v, want total=1 checked=0 changes=0", summary)
	}

	stored, _ := f.entryRepo.GetByID(context.Background(), nil, entry.ID)
	if stored.LastCheckedAt != nil {
		t.Fatal("entry must stay untouched when every engine fails")
	}
	if stored.LastCitationStatus != types.StatusNeverChecked {
		t.Fatalf("status = %s, want never_checked", stored.LastCitationStatus)
	}
	if len(f.checkRepo.records) != 0 {
		t.Fatalf("no check records expected, got %d", len(f.checkRepo.records))
	}
}

func TestRunBatchFirstSuccessfulEngineWins(t *testing.T) {
	// engine one answers not-cited, engine two answers cited; the first
	// success is the representative outcome, later ones only add records.
	f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
		return citedResult(req, req.Engine != MonitoredEngines[0]), nil
	})
	entry := seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)

	if _, err := f.service.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	stored, _ := f.entryRepo.GetByID(context.Background(), nil, entry.ID)
	if stored.LastCitationStatus != types.StatusNotCited {
		t.Fatalf("status = %s, want not_cited from the first successful engine", stored.LastCitationStatus)
	}
	if len(f.checkRepo.records) != 2 {
		t.Fatalf("both engine observations must be recorded, got %d", len(f.checkRepo.records))
	}
}

func TestRunBatchFirstEngineFailureFallsThrough(t *testing.T) {
	f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
		if req.Engine == MonitoredEngines[0] {
			return nil, fmt.Errorf("rate limited")
		}
		return citedResult(req, true), nil
	})
	entry := seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)

	summary, err := f.service.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.CheckedCount != 1 {
		t.Fatalf("checkedCount = %d, want 1", summary.CheckedCount)
	}

	stored, _ := f.entryRepo.GetByID(context.Background(), nil, entry.ID)
	if stored.LastCitationStatus != types.StatusCited {
		t.Fatalf("status = %s, want cited from the surviving engine", stored.LastCitationStatus)
	}
	if len(f.checkRepo.records) != 1 {
		t.Fatalf("only the completed check persists a record, got %d", len(f.checkRepo.records))
	}
}

func TestRunBatchIsolatesPanickingEntry(t *testing.T) {
	f := newMonitorFixture(t, nil)
	bad := seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)
	good := seedEntry(f, types.FrequencyDaily, nil, types.StatusNeverChecked, true)

	f.checker.respond = func(req CheckRequest) (*CheckResult, error) {
		if req.UserID == bad.UserID {
			panic("checker blew up")
		}
		return citedResult(req, true), nil
	}

	summary, err := f.service.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.TotalEntries != 2 {
		t.Fatalf("totalEntries = %d, want 2", summary.TotalEntries)
	}
	if summary.CheckedCount != 1 {
		t.Fatalf("checkedCount = %d, want the non-panicking entry only", summary.CheckedCount)
	}

	stored, _ := f.entryRepo.GetByID(context.Background(), nil, good.ID)
	if stored.LastCitationStatus != types.StatusCited {
		t.Fatalf("good entry status = %s, want cited", stored.LastCitationStatus)
	}
}

func TestRunBatchWeeklyScenario(t *testing.T) {
	// Entry: weekly frequency, checked 10 days ago, previously not cited,
	// alerts on. First engine reports cited.
	f := newMonitorFixture(t, func(req CheckRequest) (*CheckResult, error) {
		if req.Engine == MonitoredEngines[0] {
			return citedResult(req, true), nil
		}
		return nil, fmt.Errorf("secondary engine down")
	})
	tenDaysAgo := time.Now().AddDate(0, 0, -10)
	entry := seedEntry(f, types.FrequencyWeekly, &tenDaysAgo, types.StatusNotCited, true)

	summary, err := f.service.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if summary.CheckedCount != 1 || summary.StatusChanges != 1 {
		t.Fatalf("summary = %+v, want checked=1 changes=1", summary)
	}
	if len(f.checkRepo.records) != 1 {
		t.Fatalf("got %d check records, want 1", len(f.checkRepo.records))
	}
	if len(f.notifRepo.notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(f.notifRepo.notifications))
	}

	stored, _ := f.entryRepo.GetByID(context.Background(), nil, entry.ID)
	if stored.LastCitationStatus != types.StatusCited {
		t.Fatalf("status = %s, want cited", stored.LastCitationStatus)
	}
	if stored.LastCheckedAt == nil || !stored.LastCheckedAt.After(tenDaysAgo) {
		t.Fatal("last_checked_at must move forward")
	}
}
