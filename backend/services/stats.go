package services

import (
	"fmt"
	"quitcoach/backend/config"
	"quitcoach/backend/models"
	"time"

	"gorm.io/gorm"
)

type StatsService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewStatsService(db *gorm.DB, cfg *config.Config) *StatsService {
	return &StatsService{DB: db, Cfg: cfg}
}

// Chart series types.
const (
	SeriesCigarettes    = "cigarettes"
	SeriesHealth        = "health"
	SeriesFinancial     = "financial"
	SeriesComprehensive = "comprehensive"
)

// ProgressStats is the rolling-window dashboard summary for one plan.
// TotalReduction and ReductionPercentage compare the user's very first and
// most recent entries overall, so they ignore both the window and the plan.
type ProgressStats struct {
	TotalCheckins          int     `json:"total_checkins"`
	AvgCigarettes          float64 `json:"avg_cigarettes"`
	GoalsMet               int     `json:"goals_met"`
	SuccessRate            float64 `json:"success_rate"`
	BestDay                int     `json:"best_day"`
	WorstDay               int     `json:"worst_day"`
	MaxStreak              int     `json:"max_streak"`
	CurrentStreak          int     `json:"current_streak"`
	TotalCigarettesAvoided int     `json:"total_cigarettes_avoided"`
	TotalMoneySaved        float64 `json:"total_money_saved"`
	TotalReduction         int     `json:"total_reduction"`
	ReductionPercentage    float64 `json:"reduction_percentage"`
}

// ChartPoint is one day on a dashboard chart. Fields outside the requested
// series type stay nil and drop out of the JSON.
type ChartPoint struct {
	Date              string   `json:"date"`
	Actual            *int     `json:"actual,omitempty"`
	Target            *int     `json:"target,omitempty"`
	HealthScore       *int     `json:"health_score,omitempty"`
	CigarettesAvoided *int     `json:"cigarettes_avoided,omitempty"`
	MoneySaved        *float64 `json:"money_saved,omitempty"`
	StreakDays        *int     `json:"streak_days,omitempty"`
}

func (ss *StatsService) windowEntries(userID, planID uint, windowDays int) ([]models.DailyProgress, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	from := time.Now().AddDate(0, 0, -windowDays).Format(DateLayout)

	var entries []models.DailyProgress
	err := ss.DB.Where("user_id = ? AND plan_id = ? AND entry_date >= ?", userID, planID, from).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

// GetStats aggregates the plan's entries inside the window. An empty window
// returns a zeroed summary, never an error.
func (ss *StatsService) GetStats(userID, planID uint, windowDays int) (*ProgressStats, error) {
	if planID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}

	entries, err := ss.windowEntries(userID, planID, windowDays)
	if err != nil {
		return nil, err
	}

	stats := &ProgressStats{}
	if len(entries) > 0 {
		totalActual := 0
		stats.BestDay = entries[0].ActualCigarettes
		stats.WorstDay = entries[0].ActualCigarettes

		for _, e := range entries {
			totalActual += e.ActualCigarettes
			stats.TotalCigarettesAvoided += e.CigarettesAvoided
			stats.TotalMoneySaved += e.MoneySaved
			if e.ActualCigarettes <= e.TargetCigarettes {
				stats.GoalsMet++
			}
			if e.ActualCigarettes < stats.BestDay {
				stats.BestDay = e.ActualCigarettes
			}
			if e.ActualCigarettes > stats.WorstDay {
				stats.WorstDay = e.ActualCigarettes
			}
			if e.StreakCount > stats.MaxStreak {
				stats.MaxStreak = e.StreakCount
			}
		}

		stats.TotalCheckins = len(entries)
		stats.AvgCigarettes = float64(totalActual) / float64(len(entries))
		stats.SuccessRate = float64(stats.GoalsMet) / float64(len(entries)) * 100

		// Goal-met streak: walk newest to oldest until a day misses its
		// target. Distinct from the stored smoke-free streak.
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].ActualCigarettes > entries[i].TargetCigarettes {
				break
			}
			stats.CurrentStreak++
		}
	}

	var first, last models.DailyProgress
	errFirst := ss.DB.Where("user_id = ?", userID).Order("entry_date ASC").First(&first).Error
	errLast := ss.DB.Where("user_id = ?", userID).Order("entry_date DESC").First(&last).Error
	if errFirst == nil && errLast == nil {
		stats.TotalReduction = first.ActualCigarettes - last.ActualCigarettes
		if first.ActualCigarettes > 0 {
			stats.ReductionPercentage = float64(stats.TotalReduction) / float64(first.ActualCigarettes) * 100
		}
	}

	return stats, nil
}

// GetChartSeries produces the plan's entries as an ascending date series
// with the fields the requested chart type needs.
func (ss *StatsService) GetChartSeries(userID, planID uint, windowDays int, seriesType string) ([]ChartPoint, error) {
	if planID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}
	switch seriesType {
	case SeriesCigarettes, SeriesHealth, SeriesFinancial, SeriesComprehensive:
	default:
		return nil, fmt.Errorf("%w: unknown chart type %q", ErrValidation, seriesType)
	}

	entries, err := ss.windowEntries(userID, planID, windowDays)
	if err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 0, len(entries))
	for _, e := range entries {
		e := e
		point := ChartPoint{Date: e.EntryDate}

		if seriesType == SeriesCigarettes || seriesType == SeriesComprehensive {
			point.Actual = &e.ActualCigarettes
			point.Target = &e.TargetCigarettes
		}
		if seriesType == SeriesHealth || seriesType == SeriesComprehensive {
			point.HealthScore = &e.HealthScore
			point.StreakDays = &e.StreakCount
		}
		if seriesType == SeriesFinancial || seriesType == SeriesComprehensive {
			point.CigarettesAvoided = &e.CigarettesAvoided
			point.MoneySaved = &e.MoneySaved
		}

		points = append(points, point)
	}

	return points, nil
}
