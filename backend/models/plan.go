package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan strategies and statuses.
const (
	StrategyGradual    = "gradual"
	StrategyAggressive = "aggressive"
	StrategyColdTurkey = "cold_turkey"

	PlanStatusOngoing   = "ongoing"
	PlanStatusSuccess   = "completed_success"
	PlanStatusFailed    = "completed_failed"
	PlanStatusCancelled = "cancelled"
)

type QuitPlan struct {
	gorm.Model
	UserID            uint   `gorm:"not null;index"`
	PlanName          string `gorm:"not null"`
	Strategy          string `gorm:"not null"` // gradual, aggressive, cold_turkey
	StartDate         string `gorm:"not null"` // YYYY-MM-DD
	EndDate           string
	InitialCigarettes int    `gorm:"not null"`
	TotalWeeks        int    `gorm:"default:0"`
	Status            string `gorm:"default:ongoing"`
	IsActive          bool   `gorm:"default:false;index"`
	SuccessRate       float64
	FailureReason     string
	InteractionCount  int `gorm:"default:0"`
	LastInteraction   *time.Time
	Milestones        []PlanMilestone `gorm:"foreignKey:PlanID"`
}

// PlanMilestone is one week's target on the plan's reduction trajectory.
// Achieved flips when a check-in inside that week meets the target.
type PlanMilestone struct {
	gorm.Model
	PlanID           uint `gorm:"not null;index"`
	WeekNumber       int  `gorm:"not null"`
	TargetCigarettes int  `gorm:"not null"`
	Achieved         bool `gorm:"default:false"`
	AchievedDate     string
}

// PlanRollup is the list view of a plan with its aggregate counters.
type PlanRollup struct {
	QuitPlan
	MilestonesTotal    int     `json:"milestones_total"`
	MilestonesAchieved int     `json:"milestones_achieved"`
	SuccessPercentage  float64 `json:"success_percentage"`
}
