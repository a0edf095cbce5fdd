package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/repos"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

const (
	statsLookbackDays = 30
	topQueryLimit     = 5
	recentCitedLimit  = 5
	dayKeyFormat      = "2006-01-02"
)

type EngineCount struct {
	Engine    types.AnswerEngine `json:"engine"`
	Citations int                `json:"citations"`
}

type TopQuery struct {
	Query     string `json:"query"`
	Citations int    `json:"citations"`
	Trend     string `json:"trend"` // up, down or stable
}

type DailyPoint struct {
	Date      string `json:"date"`
	Citations int    `json:"citations"`
}

type Gamification struct {
	Points     int `json:"points"`
	Level      int `json:"level"`
	StreakDays int `json:"streak_days"`
}

type DashboardStats struct {
	TotalChecks     int                          `json:"total_checks"`
	TotalCitations  int                          `json:"total_citations"`
	ThisWeekCited   int                          `json:"this_week_cited"`
	LastWeekCited   int                          `json:"last_week_cited"`
	WeeklyGrowth    float64                      `json:"weekly_growth"`
	EngineBreakdown []EngineCount                `json:"engine_breakdown"`
	TopQueries      []TopQuery                   `json:"top_queries"`
	DailyTrend      []DailyPoint                 `json:"daily_trend"`
	Gamification    Gamification                 `json:"gamification"`
	Achievements    []Achievement                `json:"achievements"`
	RecentCitations []*types.CitationCheckRecord `json:"recent_citations"`
}

// StatsService derives rolling statistics from the citation check history.
// It is read only and safe to run concurrently with the monitoring batch.
type StatsService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}

type statsService struct {
	db        *gorm.DB
	log       *logger.Logger
	checkRepo repos.CitationCheckRepo
	now       func() time.Time
}

func NewStatsService(db *gorm.DB, baseLog *logger.Logger, checkRepo repos.CitationCheckRepo) StatsService {
	return &statsService{
		db:        db,
		log:       baseLog.With("service", "StatsService"),
		checkRepo: checkRepo,
		now:       time.Now,
	}
}

func (s *statsService) GetDashboard(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("stats: user id required")
	}

	now := s.now()
	since := now.AddDate(0, 0, -statsLookbackDays)

	records, err := s.checkRepo.GetByUserSince(ctx, nil, userID, since)
	if err != nil {
		return nil, fmt.Errorf("stats: could not load check history: %w", err)
	}

	var cited []*types.CitationCheckRecord
	for _, rec := range records {
		if rec.IsCited {
			cited = append(cited, rec)
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	thisWeekCited := 0
	lastWeekCited := 0
	for _, rec := range cited {
		switch {
		case !rec.CheckedAt.Before(weekAgo):
			thisWeekCited++
		case !rec.CheckedAt.Before(twoWeeksAgo):
			lastWeekCited++
		}
	}

	streak := citationStreak(records, now)
	points := len(cited)*10 + thisWeekCited*5
	level := points/100 + 1

	aggregates := Aggregates{
		TotalCitations: len(cited),
		StreakDays:     streak,
		Level:          level,
	}

	recent, err := s.checkRepo.GetRecentCited(ctx, nil, userID, recentCitedLimit)
	if err != nil {
		s.log.Warn("Could not load recent citations", "user_id", userID, "error", err)
	}

	return &DashboardStats{
		TotalChecks:     len(records),
		TotalCitations:  len(cited),
		ThisWeekCited:   thisWeekCited,
		LastWeekCited:   lastWeekCited,
		WeeklyGrowth:    weeklyGrowth(thisWeekCited, lastWeekCited),
		EngineBreakdown: engineBreakdown(cited),
		TopQueries:      topQueries(cited, weekAgo, twoWeeksAgo),
		DailyTrend:      dailyTrend(cited, now),
		Gamification: Gamification{
			Points:     points,
			Level:      level,
			StreakDays: streak,
		},
		Achievements:    EvaluateAchievements(aggregates),
		RecentCitations: recent,
	}, nil
}

func weeklyGrowth(thisWeek, lastWeek int) float64 {
	if lastWeek == 0 {
		if thisWeek == 0 {
			return 0
		}
		return 100
	}
	return float64(thisWeek-lastWeek) / float64(lastWeek) * 100
}

// engineBreakdown is a true per-engine tally over the stored records, not a
// proportional split of the total.
func engineBreakdown(cited []*types.CitationCheckRecord) []EngineCount {
	counts := map[types.AnswerEngine]int{}
	for _, rec := range cited {
		counts[rec.Engine]++
	}

	out := make([]EngineCount, 0, len(MonitoredEngines))
	for _, engine := range MonitoredEngines {
		out = append(out, EngineCount{Engine: engine, Citations: counts[engine]})
		delete(counts, engine)
	}

	// engines no longer configured but still present in history
	var extras []types.AnswerEngine
	for engine := range counts {
		extras = append(extras, engine)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, engine := range extras {
		out = append(out, EngineCount{Engine: engine, Citations: counts[engine]})
	}
	return out
}

// topQueries ranks cited queries by occurrence; the trend annotation compares
// the last 7 days against the 7 days before that for the same query.
func topQueries(cited []*types.CitationCheckRecord, weekAgo, twoWeeksAgo time.Time) []TopQuery {
	totals := map[string]int{}
	current := map[string]int{}
	prior := map[string]int{}

	for _, rec := range cited {
		totals[rec.Query]++
		switch {
		case !rec.CheckedAt.Before(weekAgo):
			current[rec.Query]++
		case !rec.CheckedAt.Before(twoWeeksAgo):
			prior[rec.Query]++
		}
	}

	queries := make([]string, 0, len(totals))
	for q := range totals {
		queries = append(queries, q)
	}
	sort.Slice(queries, func(i, j int) bool {
		if totals[queries[i]] != totals[queries[j]] {
			return totals[queries[i]] > totals[queries[j]]
		}
		return queries[i] < queries[j]
	})

	if len(queries) > topQueryLimit {
		queries = queries[:topQueryLimit]
	}

	out := make([]TopQuery, 0, len(queries))
	for _, q := range queries {
		trend := "stable"
		switch {
		case current[q] > prior[q]:
			trend = "up"
		case current[q] < prior[q]:
			trend = "down"
		}
		out = append(out, TopQuery{Query: q, Citations: totals[q], Trend: trend})
	}
	return out
}

// dailyTrend always emits one point per calendar day over the lookback
// window, oldest first, with zero-count days filled in.
func dailyTrend(cited []*types.CitationCheckRecord, now time.Time) []DailyPoint {
	perDay := map[string]int{}
	for _, rec := range cited {
		perDay[rec.CheckedAt.In(now.Location()).Format(dayKeyFormat)]++
	}

	out := make([]DailyPoint, 0, statsLookbackDays)
	for i := statsLookbackDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(dayKeyFormat)
		out = append(out, DailyPoint{Date: day, Citations: perDay[day]})
	}
	return out
}

// citationStreak counts consecutive calendar days, walking backward from
// today, with at least one check record of any outcome, stopping at the
// first gap.
func citationStreak(records []*types.CitationCheckRecord, now time.Time) int {
	days := map[string]bool{}
	for _, rec := range records {
		days[rec.CheckedAt.In(now.Location()).Format(dayKeyFormat)] = true
	}

	streak := 0
	for i := 0; ; i++ {
		day := now.AddDate(0, 0, -i).Format(dayKeyFormat)
		if !days[day] {
			break
		}
		streak++
	}
	return streak
}
