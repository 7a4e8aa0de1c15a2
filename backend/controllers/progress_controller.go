package controllers

import (
	"quitcoach/backend/config"
	"quitcoach/backend/services"
	"quitcoach/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Svc   *services.ProgressService
	Stats *services.StatsService
	Cfg   *config.Config
}

func NewProgressController(svc *services.ProgressService, stats *services.StatsService, cfg *config.Config) *ProgressController {
	return &ProgressController{Svc: svc, Stats: stats, Cfg: cfg}
}

func planIDQuery(c *fiber.Ctx) uint {
	id, err := strconv.Atoi(c.Query("planId"))
	if err != nil || id <= 0 {
		return 0
	}
	return uint(id)
}

// RecordCheckin godoc
// @Summary Record a daily check-in
// @Description Creates one progress entry per plan per calendar day
// @Tags progress
// @Accept json
// @Produce json
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/checkin [post]
func (pc *ProgressController) RecordCheckin(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input services.CheckinInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	entry, err := pc.Svc.RecordCheckin(userID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Created(c, entry)
}

func (pc *ProgressController) ListCheckins(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := pc.Svc.ListCheckins(userID, services.ListQuery{
		PlanID:    planIDQuery(c),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Limit:     limit,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, entries)
}

func (pc *ProgressController) UpdateCheckin(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type UpdateInput struct {
		PlanID uint `json:"planId"`
		services.CheckinPatch
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	entry, err := pc.Svc.UpdateCheckin(userID, input.PlanID, c.Params("date"), input.CheckinPatch)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, entry)
}

func (pc *ProgressController) DeleteCheckin(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	entry, err := pc.Svc.DeleteCheckin(userID, planIDQuery(c), c.Params("date"))
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, entry)
}

func (pc *ProgressController) GetStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	days, _ := strconv.Atoi(c.Query("days"))
	stats, err := pc.Stats.GetStats(userID, planIDQuery(c), days)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, stats)
}

func (pc *ProgressController) GetChart(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	days, _ := strconv.Atoi(c.Query("days"))
	seriesType := c.Query("type", services.SeriesComprehensive)

	points, err := pc.Stats.GetChartSeries(userID, planIDQuery(c), days, seriesType)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"type":        seriesType,
		"period_days": days,
		"data":        points,
	})
}
