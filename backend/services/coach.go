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

type CoachService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoachService(db *gorm.DB, cfg *config.Config) *CoachService {
	return &CoachService{DB: db, Cfg: cfg}
}

type InteractionInput struct {
	PlanID  uint                   `json:"planId"`
	CoachID *uint                  `json:"coachId"`
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
	Summary string                 `json:"summary"`
}

func validInteractionType(t string) bool {
	switch t {
	case models.InteractionMessage, models.InteractionAppointment,
		models.InteractionFeedback, models.InteractionEncouragement:
		return true
	}
	return false
}

// RecordInteraction appends a coach touchpoint to a plan, bumps the plan's
// interaction counter and last-interaction time, and mirrors the event into
// the plan history, all in one transaction.
func (cs *CoachService) RecordInteraction(userID uint, input InteractionInput) (*models.CoachInteraction, error) {
	if input.PlanID == 0 {
		return nil, fmt.Errorf("%w: planId is required", ErrValidation)
	}
	if !validInteractionType(input.Type) {
		return nil, fmt.Errorf("%w: unknown interaction type %q", ErrValidation, input.Type)
	}

	interaction := models.CoachInteraction{
		PlanID:  input.PlanID,
		UserID:  userID,
		CoachID: input.CoachID,
		Type:    input.Type,
		Summary: input.Summary,
	}
	if input.Payload != nil {
		raw, err := json.Marshal(input.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: payload is not serializable", ErrValidation)
		}
		interaction.Payload = raw
	}

	err := cs.DB.Transaction(func(tx *gorm.DB) error {
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

		if err := tx.Create(&interaction).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&plan).Updates(map[string]interface{}{
			"interaction_count": gorm.Expr("interaction_count + 1"),
			"last_interaction":  now,
		}).Error; err != nil {
			return err
		}

		return appendHistory(tx, plan.ID, models.EventCoachInteraction,
			fmt.Sprintf("Coach interaction (%s): %s", input.Type, input.Summary),
			input.Payload)
	})
	if err != nil {
		return nil, err
	}

	return &interaction, nil
}

// PlanHistory returns a plan's audit trail, oldest first.
func (cs *CoachService) PlanHistory(userID, planID uint) ([]models.PlanHistory, error) {
	var plan models.QuitPlan
	if err := cs.DB.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan %d", ErrNotFound, planID)
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("%w: plan %d belongs to another user", ErrForbidden, planID)
	}

	var events []models.PlanHistory
	if err := cs.DB.Where("plan_id = ?", planID).Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
