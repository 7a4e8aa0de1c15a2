package controllers

import (
	"quitcoach/backend/config"
	"quitcoach/backend/services"
	"quitcoach/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoachController struct {
	Svc *services.CoachService
	Cfg *config.Config
}

func NewCoachController(svc *services.CoachService, cfg *config.Config) *CoachController {
	return &CoachController{Svc: svc, Cfg: cfg}
}

func (cc *CoachController) RecordInteraction(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	planID, err := planIDParam(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input services.InteractionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.PlanID = planID

	interaction, err := cc.Svc.RecordInteraction(userID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Created(c, interaction)
}

func (cc *CoachController) PlanHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	planID, err := planIDParam(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	events, err := cc.Svc.PlanHistory(userID, planID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, events)
}
