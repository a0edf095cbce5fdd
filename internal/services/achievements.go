package services

// Aggregates are the cumulative user metrics achievement predicates see.
type Aggregates struct {
	TotalCitations int
	StreakDays     int
	Level          int
}

type AchievementMetric string

const (
	MetricTotalCitations AchievementMetric = "total_citations"
	MetricStreakDays     AchievementMetric = "streak_days"
	MetricLevel          AchievementMetric = "level"
)

type AchievementDefinition struct {
	ID          string
	Title       string
	Description string
	Metric      AchievementMetric
	MaxProgress int
	Unlock      func(a Aggregates) bool
}

// Achievement is derived per-user state. It is recomputed from current
// aggregates on every stats request and never persisted, so threshold changes
// in the catalog take effect without migrations.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
	MaxProgress int    `json:"max_progress"`
}

var achievementCatalog = []AchievementDefinition{
	{
		ID:          "first_citation",
		Title:       "First Citation",
		Description: "Your domain was cited by an AI answer engine for the first time",
		Metric:      MetricTotalCitations,
		MaxProgress: 1,
		Unlock:      func(a Aggregates) bool { return a.TotalCitations >= 1 },
	},
	{
		ID:          "cited_ten",
		Title:       "Double Digits",
		Description: "Collect 10 citations",
		Metric:      MetricTotalCitations,
		MaxProgress: 10,
		Unlock:      func(a Aggregates) bool { return a.TotalCitations >= 10 },
	},
	{
		ID:          "cited_fifty",
		Title:       "Citation Machine",
		Description: "Collect 50 citations",
		Metric:      MetricTotalCitations,
		MaxProgress: 50,
		Unlock:      func(a Aggregates) bool { return a.TotalCitations >= 50 },
	},
	{
		ID:          "streak_week",
		Title:       "Week Watcher",
		Description: "Keep a 7 day monitoring streak",
		Metric:      MetricStreakDays,
		MaxProgress: 7,
		Unlock:      func(a Aggregates) bool { return a.StreakDays >= 7 },
	},
	{
		ID:          "streak_month",
		Title:       "Always Watching",
		Description: "Keep a 30 day monitoring streak",
		Metric:      MetricStreakDays,
		MaxProgress: 30,
		Unlock:      func(a Aggregates) bool { return a.StreakDays >= 30 },
	},
	{
		ID:          "level_five",
		Title:       "Heavy Hitter",
		Description: "Reach level 5",
		Metric:      MetricLevel,
		MaxProgress: 5,
		Unlock:      func(a Aggregates) bool { return a.Level >= 5 },
	},
}

func (d AchievementDefinition) metricValue(a Aggregates) int {
	switch d.Metric {
	case MetricStreakDays:
		return a.StreakDays
	case MetricLevel:
		return a.Level
	default:
		return a.TotalCitations
	}
}

// EvaluateAchievements is a pure function of current aggregates.
func EvaluateAchievements(a Aggregates) []Achievement {
	out := make([]Achievement, 0, len(achievementCatalog))
	for _, def := range achievementCatalog {
		progress := def.metricValue(a)
		if progress > def.MaxProgress {
			progress = def.MaxProgress
		}
		out = append(out, Achievement{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Unlocked:    def.Unlock(a),
			Progress:    progress,
			MaxProgress: def.MaxProgress,
		})
	}
	return out
}
