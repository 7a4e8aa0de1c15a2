package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan history event types.
const (
	EventPlanCreated      = "created"
	EventPlanActivated    = "activated"
	EventPlanCompleted    = "completed"
	EventPlanFailed       = "failed"
	EventPlanCancelled    = "cancelled"
	EventPlanDeleted      = "deleted"
	EventCoachInteraction = "coach_interaction"
	EventMilestoneReached = "milestone_reached"
)

// Coach interaction types. Unknown types are rejected, not defaulted.
const (
	InteractionMessage       = "message"
	InteractionAppointment   = "appointment"
	InteractionFeedback      = "feedback"
	InteractionEncouragement = "encouragement"
)

// PlanHistory is the append-only audit trail of a plan. Rows are never
// updated or deleted.
type PlanHistory struct {
	gorm.Model
	PlanID      uint   `gorm:"not null;index"`
	EventType   string `gorm:"not null"`
	Description string
	Payload     datatypes.JSON
}

type CoachInteraction struct {
	gorm.Model
	PlanID  uint `gorm:"not null;index"`
	UserID  uint `gorm:"not null;index"`
	CoachID *uint
	Type    string `gorm:"not null"` // message, appointment, feedback, encouragement
	Payload datatypes.JSON
	Summary string
}
