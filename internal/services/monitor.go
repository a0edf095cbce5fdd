package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/repos"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

// MonitoredEngines is the fixed, ordered list of answer engines every due
// entry is checked against.
var MonitoredEngines = []types.AnswerEngine{types.EngineChatGPT, types.EnginePerplexity}

// reductionPolicy names how per-engine results collapse into one
// representative outcome for the entry. Only firstSuccess is implemented;
// the name exists so a majority or all-required policy has somewhere to go.
type reductionPolicy string

const reduceFirstSuccess reductionPolicy = "first_success"

type BatchSummary struct {
	TotalEntries  int `json:"totalEntries"`
	CheckedCount  int `json:"checkedCount"`
	StatusChanges int `json:"statusChanges"`
}

type MonitorService interface {
	RunBatch(ctx context.Context) (*BatchSummary, error)
}

type monitorService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.MonitoringEntryRepo
	checkRepo repos.CitationCheckRepo
	checker   CitationChecker
	notifier  CitationNotifier
	pacer     Pacer
	engines   []types.AnswerEngine
	policy    reductionPolicy
	now       func() time.Time
}

func NewMonitorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	entryRepo repos.MonitoringEntryRepo,
	checkRepo repos.CitationCheckRepo,
	checker CitationChecker,
	notifier CitationNotifier,
	pacer Pacer,
) MonitorService {
	return &monitorService{
		db:        db,
		log:       baseLog.With("service", "MonitorService"),
		entryRepo: entryRepo,
		checkRepo: checkRepo,
		checker:   checker,
		notifier:  notifier,
		pacer:     pacer,
		engines:   MonitoredEngines,
		policy:    reduceFirstSuccess,
		now:       time.Now,
	}
}

// RunBatch walks every active monitoring entry once, sequentially. The engine
// holds no state between runs; eligibility is re-derived from last_checked_at,
// so an interrupted run self-heals on the next invocation. Callers are
// responsible for not running two batches at once (see clients/redis.BatchLock).
func (s *monitorService) RunBatch(ctx context.Context) (*BatchSummary, error) {
	entries, err := s.entryRepo.GetActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("monitoring: could not load active entries: %w", err)
	}

	summary := &BatchSummary{TotalEntries: len(entries)}
	now := s.now()
	s.log.Info("Monitoring batch started", "total_entries", len(entries))

	processedAny := false
	for _, entry := range entries {
		if !EntryDueForCheck(entry, now) {
			continue
		}
		if processedAny {
			s.pacer.BetweenEntries(ctx)
		}
		processedAny = true

		checked, changed := s.processEntry(ctx, entry, s.now())
		if checked {
			summary.CheckedCount++
		}
		if changed {
			summary.StatusChanges++
		}
	}

	s.log.Info("Monitoring batch finished",
		"total_entries", summary.TotalEntries,
		"checked", summary.CheckedCount,
		"status_changes", summary.StatusChanges,
	)
	return summary, nil
}

// processEntry runs one entry end to end behind a recovery boundary: no
// single entry, however broken, may stop the rest of the batch.
func (s *monitorService) processEntry(ctx context.Context, entry *types.MonitoringEntry, now time.Time) (checked, changed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic while processing monitoring entry",
				"entry_id", entry.ID,
				"query", entry.Query,
				"panic", r,
			)
			checked, changed = false, false
		}
	}()

	representative := s.checkEngines(ctx, entry, now)
	if representative == nil {
		// every engine failed; leave the entry untouched for the next cycle
		s.log.Warn("All engine checks failed for entry", "entry_id", entry.ID, "query", entry.Query)
		return false, false
	}

	newStatus := types.StatusFromCited(representative.IsCited)
	transitioned := entry.LastCitationStatus != types.StatusNeverChecked &&
		entry.LastCitationStatus != newStatus

	// The status write happens exactly once per checked entry and never
	// depends on whether the notification below succeeds.
	if err := s.entryRepo.UpdateCheckResult(ctx, nil, entry.ID, now, newStatus); err != nil {
		s.log.Error("Could not persist check result; entry stays eligible",
			"entry_id", entry.ID,
			"error", err,
		)
	}

	if transitioned && entry.AlertOnChange {
		s.notifier.StatusChanged(ctx, entry, representative)
	}

	entry.LastCheckedAt = &now
	entry.LastCitationStatus = newStatus
	return true, transitioned
}

// checkEngines invokes the check capability once per configured engine, in
// order, persisting one immutable record per completed check. The entry's
// representative outcome follows the reduction policy: with firstSuccess the
// first engine that answers wins and later results do not overwrite it.
func (s *monitorService) checkEngines(ctx context.Context, entry *types.MonitoringEntry, now time.Time) *CheckResult {
	var representative *CheckResult

	for i, engine := range s.engines {
		if i > 0 {
			s.pacer.BetweenEngines(ctx)
		}

		result, err := s.checker.Check(ctx, CheckRequest{
			Query:  entry.Query,
			Domain: entry.Domain,
			UserID: entry.UserID,
			Engine: engine,
		})
		if err != nil {
			s.log.Warn("Engine check failed",
				"entry_id", entry.ID,
				"engine", engine,
				"error", err,
			)
			continue
		}

		s.persistCheckRecord(ctx, entry, engine, result, now)

		if representative == nil {
			representative = result
		}
	}

	return representative
}

func (s *monitorService) persistCheckRecord(ctx context.Context, entry *types.MonitoringEntry, engine types.AnswerEngine, result *CheckResult, now time.Time) {
	sources, err := marshalSources(result.CitedSources)
	if err != nil {
		s.log.Warn("Could not encode cited sources", "entry_id", entry.ID, "error", err)
	}

	record := &types.CitationCheckRecord{
		UserID:          entry.UserID,
		Query:           entry.Query,
		Domain:          entry.Domain,
		Engine:          engine,
		IsCited:         result.IsCited,
		AnswerText:      result.AnswerText,
		CitedSources:    sources,
		Recommendations: result.Recommendations,
		CheckedAt:       now,
	}

	if _, err := s.checkRepo.Create(ctx, nil, []*types.CitationCheckRecord{record}); err != nil {
		s.log.Error("Could not persist citation check record",
			"entry_id", entry.ID,
			"engine", engine,
			"error", err,
		)
	}
}

func marshalSources(sources []types.CitedSource) (datatypes.JSON, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(sources)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
