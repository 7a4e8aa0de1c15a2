package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"quitcoach/backend/config"
	"quitcoach/backend/models"
	"time"

	"gorm.io/gorm"
)

// ProgressClearer is the compensating action the registry invokes when a
// plan is deleted, so no orphaned check-ins survive the plan.
type ProgressClearer interface {
	ClearAll(userID uint, planID *uint) (int64, error)
}

type PlanService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Ledger ProgressClearer
}

func NewPlanService(db *gorm.DB, cfg *config.Config, ledger ProgressClearer) *PlanService {
	return &PlanService{DB: db, Cfg: cfg, Ledger: ledger}
}

type CreatePlanInput struct {
	PlanName          string `json:"planName"`
	Strategy          string `json:"strategy"`
	InitialCigarettes int    `json:"initialCigarettes"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	TotalWeeks        int    `json:"totalWeeks"`
	Weeks             []int  `json:"weeks"` // per-week cigarette targets
}

type CompletePlanInput struct {
	Status        string  `json:"status"`
	SuccessRate   float64 `json:"successRate"`
	EndDate       string  `json:"endDate"`
	FailureReason string  `json:"failureReason"`
}

func validStrategy(s string) bool {
	switch s {
	case models.StrategyGradual, models.StrategyAggressive, models.StrategyColdTurkey:
		return true
	}
	return false
}

// appendHistory writes one audit row for a plan transition. Rows are never
// updated or deleted afterward.
func appendHistory(tx *gorm.DB, planID uint, eventType, description string, payload interface{}) error {
	event := models.PlanHistory{
		PlanID:      planID,
		EventType:   eventType,
		Description: description,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		event.Payload = raw
	}
	return tx.Create(&event).Error
}

// CreatePlan validates the input, inserts the plan as ongoing and seeds one
// milestone row per supplied weekly target. It never touches activation;
// SetActivePlan is a separate explicit step.
func (ps *PlanService) CreatePlan(userID uint, input CreatePlanInput) (*models.QuitPlan, error) {
	if input.PlanName == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrValidation)
	}
	if !validStrategy(input.Strategy) {
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrValidation, input.Strategy)
	}
	if input.InitialCigarettes < 0 {
		return nil, fmt.Errorf("%w: initial cigarettes must not be negative", ErrValidation)
	}
	if _, err := parseDate(input.StartDate); err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrValidation, input.StartDate)
	}
	if input.EndDate != "" {
		if _, err := parseDate(input.EndDate); err != nil {
			return nil, fmt.Errorf("%w: invalid end date %q", ErrValidation, input.EndDate)
		}
	}

	plan := models.QuitPlan{
		UserID:            userID,
		PlanName:          input.PlanName,
		Strategy:          input.Strategy,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		InitialCigarettes: input.InitialCigarettes,
		TotalWeeks:        input.TotalWeeks,
		Status:            models.PlanStatusOngoing,
	}

	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}

		for i, target := range input.Weeks {
			milestone := models.PlanMilestone{
				PlanID:           plan.ID,
				WeekNumber:       i + 1,
				TargetCigarettes: target,
			}
			if err := tx.Create(&milestone).Error; err != nil {
				return err
			}
		}

		return appendHistory(tx, plan.ID, models.EventPlanCreated,
			fmt.Sprintf("Plan %q created with strategy %s", plan.PlanName, plan.Strategy), nil)
	})
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

// SetActivePlan clears is_active across the user's plans and sets it on the
// target, all in one transaction so at most one plan ends up active.
func (ps *PlanService) SetActivePlan(userID, planID uint) error {
	return ps.DB.Transaction(func(tx *gorm.DB) error {
		var plan models.QuitPlan
		if err := tx.First(&plan, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plan %d", ErrNotFound, planID)
			}
			return err
		}
		if plan.UserID != userID {
			return fmt.Errorf("%w: plan %d belongs to another user", ErrForbidden, planID)
		}

		if err := tx.Model(&models.QuitPlan{}).
			Where("user_id = ?", userID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.QuitPlan{}).
			Where("id = ?", planID).
			Update("is_active", true).Error; err != nil {
			return err
		}

		return appendHistory(tx, planID, models.EventPlanActivated, "Plan set as active", nil)
	})
}

// CompletePlan moves a plan into one of the terminal states and records the
// outcome in the history log.
func (ps *PlanService) CompletePlan(userID, planID uint, input CompletePlanInput) (*models.QuitPlan, error) {
	var eventType string
	switch input.Status {
	case models.PlanStatusSuccess:
		eventType = models.EventPlanCompleted
	case models.PlanStatusFailed:
		eventType = models.EventPlanFailed
	case models.PlanStatusCancelled:
		eventType = models.EventPlanCancelled
	default:
		return nil, fmt.Errorf("%w: unknown completion status %q", ErrValidation, input.Status)
	}
	if input.EndDate != "" {
		if _, err := parseDate(input.EndDate); err != nil {
			return nil, fmt.Errorf("%w: invalid end date %q", ErrValidation, input.EndDate)
		}
	}

	var plan models.QuitPlan
	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&plan, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plan %d", ErrNotFound, planID)
			}
			return err
		}
		if plan.UserID != userID {
			return fmt.Errorf("%w: plan %d belongs to another user", ErrForbidden, planID)
		}

		plan.Status = input.Status
		plan.SuccessRate = input.SuccessRate
		plan.FailureReason = input.FailureReason
		plan.IsActive = false
		if input.EndDate != "" {
			plan.EndDate = input.EndDate
		}
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		return appendHistory(tx, planID, eventType,
			fmt.Sprintf("Plan closed with status %s", input.Status),
			map[string]interface{}{
				"success_rate":   input.SuccessRate,
				"failure_reason": input.FailureReason,
			})
	})
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

// ListPlans returns the user's plans with milestone rollups. The success
// percentage is achieved/total milestones, zero when a plan has none.
func (ps *PlanService) ListPlans(userID uint) ([]models.PlanRollup, error) {
	var plans []models.QuitPlan
	if err := ps.DB.Where("user_id = ?", userID).Order("created_at").Find(&plans).Error; err != nil {
		return nil, err
	}

	rollups := make([]models.PlanRollup, 0, len(plans))
	for _, plan := range plans {
		var total, achieved int64
		if err := ps.DB.Model(&models.PlanMilestone{}).
			Where("plan_id = ?", plan.ID).Count(&total).Error; err != nil {
			return nil, err
		}
		if err := ps.DB.Model(&models.PlanMilestone{}).
			Where("plan_id = ? AND achieved = ?", plan.ID, true).Count(&achieved).Error; err != nil {
			return nil, err
		}

		rollup := models.PlanRollup{
			QuitPlan:           plan,
			MilestonesTotal:    int(total),
			MilestonesAchieved: int(achieved),
		}
		if total > 0 {
			rollup.SuccessPercentage = float64(achieved) / float64(total) * 100
		}
		rollups = append(rollups, rollup)
	}

	return rollups, nil
}

// DeletePlan removes a plan and its milestones, then clears the plan's
// check-ins through the ledger. A clear failure surfaces to the caller
// instead of leaving orphaned entries silently behind.
func (ps *PlanService) DeletePlan(userID, planID uint) error {
	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		var plan models.QuitPlan
		if err := tx.First(&plan, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plan %d", ErrNotFound, planID)
			}
			return err
		}
		if plan.UserID != userID {
			return fmt.Errorf("%w: plan %d belongs to another user", ErrForbidden, planID)
		}

		if err := appendHistory(tx, planID, models.EventPlanDeleted,
			fmt.Sprintf("Plan %q deleted at %s", plan.PlanName, time.Now().UTC().Format(time.RFC3339)), nil); err != nil {
			return err
		}

		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanMilestone{}).Error; err != nil {
			return err
		}
		return tx.Delete(&plan).Error
	})
	if err != nil {
		return err
	}

	_, err = ps.Ledger.ClearAll(userID, &planID)
	return err
}
