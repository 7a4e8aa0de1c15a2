package models

import "gorm.io/gorm"

// DailyProgress is one day's check-in for one plan. At most one row exists
// per (user, plan, date); the derived columns are computed on write.
type DailyProgress struct {
	gorm.Model
	UserID            uint   `gorm:"not null;uniqueIndex:idx_user_plan_date"`
	PlanID            uint   `gorm:"not null;uniqueIndex:idx_user_plan_date"`
	EntryDate         string `gorm:"not null;uniqueIndex:idx_user_plan_date"` // YYYY-MM-DD
	TargetCigarettes  int    `gorm:"not null"`
	ActualCigarettes  int    `gorm:"not null"`
	CigarettesAvoided int    `gorm:"default:0"`
	StreakCount       int    `gorm:"default:0"` // consecutive smoke-free days ending here
	ProgressPercent   float64
	HealthScore       int
	MoneySaved        float64
	Notes             string
}
