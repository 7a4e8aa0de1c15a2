package services

import (
	"errors"
	"fmt"
	"quitcoach/backend/config"
	"quitcoach/backend/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAchievementService(db *gorm.DB, cfg *config.Config) *AchievementService {
	return &AchievementService{DB: db, Cfg: cfg}
}

// The fixed rule catalog. Time-based thresholds count smoke-free check-in
// days; reduction-based thresholds test the latest entry's progress
// percentage.
var achievementCatalog = []models.Achievement{
	{Code: "first_day", Name: "First 24 Hours", Description: "One smoke-free day on record", Category: models.CategoryTimeBased, Threshold: 1},
	{Code: "three_days", Name: "Three Day Milestone", Description: "Three smoke-free days on record", Category: models.CategoryTimeBased, Threshold: 3},
	{Code: "one_week", Name: "One Week Strong", Description: "Seven smoke-free days on record", Category: models.CategoryTimeBased, Threshold: 7},
	{Code: "one_month", Name: "One Month Champion", Description: "Thirty smoke-free days on record", Category: models.CategoryTimeBased, Threshold: 30},
	{Code: "quarter_way", Name: "Quarter Way There", Description: "Reached 25% of the reduction goal", Category: models.CategoryReductionBased, Threshold: 25},
	{Code: "halfway", Name: "Halfway Point", Description: "Reached 50% of the reduction goal", Category: models.CategoryReductionBased, Threshold: 50},
	{Code: "three_quarters", Name: "Three Quarters Done", Description: "Reached 75% of the reduction goal", Category: models.CategoryReductionBased, Threshold: 75},
	{Code: "goal_reached", Name: "Goal Reached", Description: "Reached 100% of the reduction goal", Category: models.CategoryReductionBased, Threshold: 100},
}

// SeedAchievements inserts the catalog once; reruns leave existing rows
// untouched.
func (as *AchievementService) SeedAchievements() error {
	for _, a := range achievementCatalog {
		a := a
		if err := as.DB.Where("code = ?", a.Code).FirstOrCreate(&a).Error; err != nil {
			return err
		}
	}
	return nil
}

func (as *AchievementService) satisfied(rule models.Achievement, daysClean int64, latest *models.DailyProgress) bool {
	switch rule.Category {
	case models.CategoryTimeBased:
		return daysClean >= int64(rule.Threshold)
	case models.CategoryReductionBased:
		return latest.ProgressPercent >= float64(rule.Threshold)
	}
	return false
}

// EvaluateAndAward tests every not-yet-awarded rule against the user's
// latest entry and inserts one award row per satisfied rule. The unique
// (user, achievement) index is the only concurrency guard: a losing insert
// is ignored, so reruns and races never duplicate or fail.
func (as *AchievementService) EvaluateAndAward(userID uint) ([]models.Achievement, error) {
	var latest models.DailyProgress
	err := as.DB.Where("user_id = ?", userID).Order("entry_date DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Achievement{}, nil
	}
	if err != nil {
		return nil, err
	}

	var daysClean int64
	if err := as.DB.Model(&models.DailyProgress{}).
		Where("user_id = ? AND actual_cigarettes = 0", userID).
		Count(&daysClean).Error; err != nil {
		return nil, err
	}

	var rules []models.Achievement
	if err := as.DB.
		Where("id NOT IN (?)", as.DB.Model(&models.UserAchievement{}).
			Select("achievement_id").Where("user_id = ?", userID)).
		Find(&rules).Error; err != nil {
		return nil, err
	}

	awarded := []models.Achievement{}
	for _, rule := range rules {
		if !as.satisfied(rule, daysClean, &latest) {
			continue
		}

		award := models.UserAchievement{
			UserID:        userID,
			AchievementID: rule.ID,
			AwardedAt:     time.Now(),
		}
		result := as.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&award)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			awarded = append(awarded, rule)
		}
	}

	return awarded, nil
}

// AwardDirect grants an achievement outside rule evaluation. An existing
// award is returned as-is; awarding is never an error twice.
func (as *AchievementService) AwardDirect(userID, achievementID uint) (*models.UserAchievement, error) {
	var achievement models.Achievement
	if err := as.DB.First(&achievement, achievementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: achievement %d", ErrNotFound, achievementID)
		}
		return nil, err
	}

	award := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		AwardedAt:     time.Now(),
	}
	if err := as.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&award).Error; err != nil {
		return nil, err
	}

	var existing models.UserAchievement
	if err := as.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// ListForUser returns the catalog with the user's unlock state.
func (as *AchievementService) ListForUser(userID uint) ([]models.AchievementStatus, error) {
	var catalog []models.Achievement
	if err := as.DB.Order("id").Find(&catalog).Error; err != nil {
		return nil, err
	}

	var awards []models.UserAchievement
	if err := as.DB.Where("user_id = ?", userID).Find(&awards).Error; err != nil {
		return nil, err
	}
	awardedAt := make(map[uint]time.Time, len(awards))
	for _, award := range awards {
		awardedAt[award.AchievementID] = award.AwardedAt
	}

	statuses := make([]models.AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		status := models.AchievementStatus{Achievement: a}
		if at, ok := awardedAt[a.ID]; ok {
			at := at
			status.Unlocked = true
			status.UnlockedAt = &at
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}
