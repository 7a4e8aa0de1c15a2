package controllers

import (
	"quitcoach/backend/config"
	"quitcoach/backend/services"
	"quitcoach/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type PlanController struct {
	Svc *services.PlanService
	Cfg *config.Config
}

func NewPlanController(svc *services.PlanService, cfg *config.Config) *PlanController {
	return &PlanController{Svc: svc, Cfg: cfg}
}

func planIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid plan ID")
	}
	return uint(id), nil
}

// CreatePlan godoc
// @Summary Create a quit plan
// @Description Creates a new plan with optional weekly milestone targets
// @Tags plans
// @Accept json
// @Produce json
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /plans [post]
func (pc *PlanController) CreatePlan(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input services.CreatePlanInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	plan, err := pc.Svc.CreatePlan(userID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Created(c, fiber.Map{"id": plan.ID})
}

func (pc *PlanController) ListPlans(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	rollups, err := pc.Svc.ListPlans(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, rollups)
}

func (pc *PlanController) ActivatePlan(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	planID, err := planIDParam(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := pc.Svc.SetActivePlan(userID, planID); err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"id": planID, "is_active": true})
}

func (pc *PlanController) CompletePlan(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	planID, err := planIDParam(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input services.CompletePlanInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	plan, err := pc.Svc.CompletePlan(userID, planID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, plan)
}

func (pc *PlanController) DeletePlan(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	planID, err := planIDParam(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := pc.Svc.DeletePlan(userID, planID); err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"id": planID, "deleted": true})
}
