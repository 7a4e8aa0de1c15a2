package services

import (
	"errors"
	"fmt"
	"quitcoach/backend/config"
	"quitcoach/backend/models"

	"gorm.io/gorm"
)

type ProgressService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressService(db *gorm.DB, cfg *config.Config) *ProgressService {
	return &ProgressService{DB: db, Cfg: cfg}
}

type CheckinInput struct {
	PlanID            uint    `json:"planId"`
	Date              string  `json:"date"`
	TargetCigarettes  int     `json:"targetCigarettes"`
	ActualCigarettes  int     `json:"actualCigarettes"`
	Notes             string  `json:"notes"`
	HealthScore       int     `json:"healthScore"`
	MoneySaved        float64 `json:"moneySaved"`
	CigarettesAvoided *int    `json:"cigarettesAvoided"`
}

// CheckinPatch carries the fields of an update; nil means "leave untouched".
type CheckinPatch struct {
	TargetCigarettes  *int     `json:"targetCigarettes"`
	ActualCigarettes  *int     `json:"actualCigarettes"`
	Notes             *string  `json:"notes"`
	HealthScore       *int     `json:"healthScore"`
	MoneySaved        *float64 `json:"moneySaved"`
	CigarettesAvoided *int     `json:"cigarettesAvoided"`
}

type ListQuery struct {
	PlanID    uint
	StartDate string
	EndDate   string
	Limit     int
}

// previousEntry finds the most recent check-in strictly before date. The
// lookback honors the configured streak policy: the historical behavior
// searches across all of the user's plans, per_plan scopes it to one.
func (ps *ProgressService) previousEntry(tx *gorm.DB, userID, planID uint, date string) (*models.DailyProgress, error) {
	query := tx.Where("user_id = ? AND entry_date < ?", userID, date)
	if ps.Cfg.StreakPolicy == config.StreakPolicyPerPlan {
		query = query.Where("plan_id = ?", planID)
	}

	var prev models.DailyProgress
	err := query.Order("entry_date DESC").First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

// computeStreak applies the smoke-free streak rule: a smoked day resets to
// zero, a smoke-free day extends the previous calendar day's smoke-free
// streak or starts a new one at 1 when the chain is broken.
func computeStreak(actual int, date string, prev *models.DailyProgress) int {
	if actual > 0 {
		return 0
	}
	if prev != nil && prev.ActualCigarettes == 0 && prev.EntryDate == prevDay(date) {
		return prev.StreakCount + 1
	}
	return 1
}

func avoided(target, actual int) int {
	if target > actual {
		return target - actual
	}
	return 0
}

// progressPercent measures reduction against the plan baseline, clamped to
// [0, 100]. A zero baseline yields zero.
func progressPercent(baseline, actual int) float64 {
	if baseline <= 0 {
		return 0
	}
	pct := float64(baseline-actual) / float64(baseline) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RecordCheckin inserts one day's entry for a plan with all derived fields.
// The previous-day read and the insert share one transaction so adjacent
// concurrent check-ins cannot compute inconsistent streaks.
func (ps *ProgressService) RecordCheckin(userID uint, input CheckinInput) (*models.DailyProgress, error) {
	if input.PlanID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}
	if _, err := parseDate(input.Date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, input.Date)
	}
	if input.TargetCigarettes < 0 || input.ActualCigarettes < 0 {
		return nil, fmt.Errorf("%w: cigarette counts must not be negative", ErrValidation)
	}

	var entry models.DailyProgress
	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		var plan models.QuitPlan
		if err := tx.First(&plan, input.PlanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plan %d", ErrNotFound, input.PlanID)
			}
			return err
		}
		if plan.UserID != userID {
			return fmt.Errorf("%w: plan %d belongs to another user", ErrForbidden, input.PlanID)
		}

		var count int64
		if err := tx.Model(&models.DailyProgress{}).
			Where("user_id = ? AND plan_id = ? AND entry_date = ?", userID, input.PlanID, input.Date).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: check-in already exists for %s", ErrConflict, input.Date)
		}

		prev, err := ps.previousEntry(tx, userID, input.PlanID, input.Date)
		if err != nil {
			return err
		}

		entry = models.DailyProgress{
			UserID:           userID,
			PlanID:           input.PlanID,
			EntryDate:        input.Date,
			TargetCigarettes: input.TargetCigarettes,
			ActualCigarettes: input.ActualCigarettes,
			StreakCount:      computeStreak(input.ActualCigarettes, input.Date, prev),
			ProgressPercent:  progressPercent(plan.InitialCigarettes, input.ActualCigarettes),
			HealthScore:      input.HealthScore,
			MoneySaved:       input.MoneySaved,
			Notes:            input.Notes,
		}
		if input.CigarettesAvoided != nil {
			entry.CigarettesAvoided = *input.CigarettesAvoided
		} else {
			entry.CigarettesAvoided = avoided(input.TargetCigarettes, input.ActualCigarettes)
		}

		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return ps.markMilestone(tx, &plan, input.Date, input.ActualCigarettes)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// markMilestone flips the plan's milestone for the check-in's week when the
// day meets the week's target.
func (ps *ProgressService) markMilestone(tx *gorm.DB, plan *models.QuitPlan, date string, actual int) error {
	start, err := parseDate(plan.StartDate)
	if err != nil {
		return nil
	}
	day, err := parseDate(date)
	if err != nil || day.Before(start) {
		return nil
	}
	week := int(day.Sub(start).Hours()/24)/7 + 1

	var milestone models.PlanMilestone
	err = tx.Where("plan_id = ? AND week_number = ?", plan.ID, week).First(&milestone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if milestone.Achieved || actual > milestone.TargetCigarettes {
		return nil
	}

	milestone.Achieved = true
	milestone.AchievedDate = date
	if err := tx.Save(&milestone).Error; err != nil {
		return err
	}

	return appendHistory(tx, plan.ID, models.EventMilestoneReached,
		fmt.Sprintf("Week %d milestone reached (%d or fewer cigarettes)", week, milestone.TargetCigarettes),
		map[string]interface{}{"week": week, "target": milestone.TargetCigarettes, "actual": actual})
}

// UpdateCheckin patches an existing entry. Only fields present in the patch
// are recomputed: actual flipping to zero re-derives the streak from the
// prior day, flipping away from zero forces it to 0.
func (ps *ProgressService) UpdateCheckin(userID, planID uint, date string, patch CheckinPatch) (*models.DailyProgress, error) {
	if planID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}
	if _, err := parseDate(date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}
	if patch.TargetCigarettes != nil && *patch.TargetCigarettes < 0 {
		return nil, fmt.Errorf("%w: target must not be negative", ErrValidation)
	}
	if patch.ActualCigarettes != nil && *patch.ActualCigarettes < 0 {
		return nil, fmt.Errorf("%w: actual must not be negative", ErrValidation)
	}

	var entry models.DailyProgress
	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND plan_id = ? AND entry_date = ?", userID, planID, date).
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no check-in for %s", ErrNotFound, date)
		}
		if err != nil {
			return err
		}

		if patch.TargetCigarettes != nil {
			entry.TargetCigarettes = *patch.TargetCigarettes
		}
		if patch.ActualCigarettes != nil {
			entry.ActualCigarettes = *patch.ActualCigarettes
			if entry.ActualCigarettes > 0 {
				entry.StreakCount = 0
			} else {
				prev, err := ps.previousEntry(tx, userID, planID, date)
				if err != nil {
					return err
				}
				entry.StreakCount = computeStreak(0, date, prev)
			}

			var plan models.QuitPlan
			if err := tx.First(&plan, planID).Error; err != nil {
				return err
			}
			entry.ProgressPercent = progressPercent(plan.InitialCigarettes, entry.ActualCigarettes)
		}
		switch {
		case patch.CigarettesAvoided != nil:
			entry.CigarettesAvoided = *patch.CigarettesAvoided
		case patch.TargetCigarettes != nil || patch.ActualCigarettes != nil:
			entry.CigarettesAvoided = avoided(entry.TargetCigarettes, entry.ActualCigarettes)
		}
		if patch.Notes != nil {
			entry.Notes = *patch.Notes
		}
		if patch.HealthScore != nil {
			entry.HealthScore = *patch.HealthScore
		}
		if patch.MoneySaved != nil {
			entry.MoneySaved = *patch.MoneySaved
		}

		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// DeleteCheckin removes one entry and returns the deleted snapshot. Streaks
// of later entries are not repaired here.
func (ps *ProgressService) DeleteCheckin(userID, planID uint, date string) (*models.DailyProgress, error) {
	if planID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}

	var entry models.DailyProgress
	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND plan_id = ? AND entry_date = ?", userID, planID, date).
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no check-in for %s", ErrNotFound, date)
		}
		if err != nil {
			return err
		}
		return tx.Unscoped().Delete(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// ClearAll bulk-deletes a user's entries, optionally scoped to one plan, and
// returns the number of rows removed.
func (ps *ProgressService) ClearAll(userID uint, planID *uint) (int64, error) {
	query := ps.DB.Unscoped().Where("user_id = ?", userID)
	if planID != nil {
		query = query.Where("plan_id = ?", *planID)
	}

	result := query.Delete(&models.DailyProgress{})
	return result.RowsAffected, result.Error
}

// ListCheckins returns a plan's entries, newest first, optionally bounded by
// a date range and a row limit.
func (ps *ProgressService) ListCheckins(userID uint, q ListQuery) ([]models.DailyProgress, error) {
	if q.PlanID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}

	query := ps.DB.Where("user_id = ? AND plan_id = ?", userID, q.PlanID)
	if q.StartDate != "" {
		query = query.Where("entry_date >= ?", q.StartDate)
	}
	if q.EndDate != "" {
		query = query.Where("entry_date <= ?", q.EndDate)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var entries []models.DailyProgress
	if err := query.Order("entry_date DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
