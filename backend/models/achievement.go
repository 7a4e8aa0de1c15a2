package models

import (
	"time"

	"gorm.io/gorm"
)

// Achievement rule categories.
const (
	CategoryTimeBased      = "time_based"      // threshold on smoke-free check-in days
	CategoryReductionBased = "reduction_based" // threshold on latest progress percentage
)

// Achievement is a catalog row. The catalog is seeded once at boot and is
// read-only afterward; Threshold is evaluated generically per Category
// instead of being parsed out of the name.
type Achievement struct {
	gorm.Model
	Code        string `gorm:"unique;not null"`
	Name        string `gorm:"not null"`
	Description string
	Category    string `gorm:"not null"` // time_based, reduction_based
	Threshold   int    `gorm:"not null"`
}

// UserAchievement records that a user earned an achievement. The unique
// index makes awarding idempotent under concurrent evaluation.
type UserAchievement struct {
	gorm.Model
	UserID        uint `gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint `gorm:"not null;uniqueIndex:idx_user_achievement"`
	AwardedAt     time.Time
}

// AchievementStatus is the user-facing catalog view with unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
