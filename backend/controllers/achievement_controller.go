package controllers

import (
	"quitcoach/backend/config"
	"quitcoach/backend/services"
	"quitcoach/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AchievementController struct {
	Svc *services.AchievementService
	Cfg *config.Config
}

func NewAchievementController(svc *services.AchievementService, cfg *config.Config) *AchievementController {
	return &AchievementController{Svc: svc, Cfg: cfg}
}

func (ac *AchievementController) ListAchievements(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	statuses, err := ac.Svc.ListForUser(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, statuses)
}

// Evaluate godoc
// @Summary Evaluate achievement rules
// @Description Awards every satisfied, not-yet-awarded rule; reruns are no-ops
// @Tags achievements
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /achievements/evaluate [post]
func (ac *AchievementController) Evaluate(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	awarded, err := ac.Svc.EvaluateAndAward(userID)
	if err != nil {
		return serviceError(c, err)
	}

	message := "No new achievements"
	if len(awarded) > 0 {
		message = "Congratulations on your new achievements!"
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"awarded": awarded,
		"message": message,
	})
}

// Award is the admin path: it bypasses rule evaluation but keeps the
// at-most-once guarantee.
func (ac *AchievementController) Award(c *fiber.Ctx) error {
	type AwardInput struct {
		UserID        uint `json:"userId"`
		AchievementID uint `json:"achievementId"`
	}

	var input AwardInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.UserID == 0 || input.AchievementID == 0 {
		return utils.BadRequest(c, "userId and achievementId are required")
	}

	award, err := ac.Svc.AwardDirect(input.UserID, input.AchievementID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, award)
}
