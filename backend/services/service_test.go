package services

import (
	"fmt"
	"quitcoach/backend/config"
	"quitcoach/backend/models"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.QuitPlan{},
		&models.PlanMilestone{},
		&models.DailyProgress{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.PlanHistory{},
		&models.CoachInteraction{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    "testsecret",
		StreakPolicy: config.StreakPolicyGlobal,
	}
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// createPlan inserts a plan starting daysAgo days in the past.
func createPlan(t *testing.T, db *gorm.DB, cfg *config.Config, userID uint, baseline, daysAgo int) *models.QuitPlan {
	t.Helper()

	svc := NewPlanService(db, cfg, NewProgressService(db, cfg))
	plan, err := svc.CreatePlan(userID, CreatePlanInput{
		PlanName:          "Test Plan",
		Strategy:          models.StrategyGradual,
		InitialCigarettes: baseline,
		StartDate:         daysFromNow(-daysAgo),
		TotalWeeks:        4,
	})
	require.NoError(t, err)
	return plan
}

// daysFromNow formats today+offset as a calendar date.
func daysFromNow(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format(DateLayout)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
