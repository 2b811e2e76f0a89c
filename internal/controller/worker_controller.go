package controller

import (
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type WorkerController struct {
	WorkerService *service.WorkerService
}

func NewWorkerController(workerService *service.WorkerService) *WorkerController {
	return &WorkerController{WorkerService: workerService}
}

// swagger:model CreateWorkerRequest
type CreateWorkerRequest struct {
	DocumentNumber string     `json:"documentNumber" binding:"required"`
	FirstName      string     `json:"firstName" binding:"required"`
	LastName       string     `json:"lastName" binding:"required"`
	Position       string     `json:"position"`
	Area           string     `json:"area"`
	HireDate       *time.Time `json:"hireDate"`
}

// Create godoc
// @Summary Register a worker
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateWorkerRequest true "Worker data"
// @Success 201 {object} util.Response{data=model.Worker}
// @Failure 400 {object} util.Response
// @Router /api/workers [post]
func (c *WorkerController) Create(ctx *gin.Context) {
	var req CreateWorkerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	worker := &model.Worker{
		DocumentNumber: req.DocumentNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Position:       req.Position,
		Area:           req.Area,
		HireDate:       req.HireDate,
		IsActive:       true,
	}
	if err := c.WorkerService.Create(worker); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, worker)
}

// List godoc
// @Summary List workers
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param active query bool false "Active only"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/workers [get]
func (c *WorkerController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	activeOnly := ctx.Query("active") == "true"
	workers, total, err := c.WorkerService.List(page, limit, activeOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: workers, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Worker detail
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Worker ID"
// @Success 200 {object} util.Response{data=model.Worker}
// @Failure 404 {object} util.Response
// @Router /api/workers/{id} [get]
func (c *WorkerController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	worker, err := c.WorkerService.GetByID(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, worker)
}

// swagger:model LinkUserRequest
type LinkUserRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// LinkUser godoc
// @Summary Link a worker to a user account
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Worker ID"
// @Param body body LinkUserRequest true "User to link"
// @Success 200 {object} util.Response{data=model.Worker}
// @Failure 400 {object} util.Response
// @Router /api/workers/{id}/link [post]
func (c *WorkerController) LinkUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req LinkUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	worker, err := c.WorkerService.LinkUser(id, req.UserID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, worker)
}

// UnlinkUser godoc
// @Summary Unlink a worker from its user account
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Worker ID"
// @Success 200 {object} util.Response{data=model.Worker}
// @Failure 400 {object} util.Response
// @Router /api/workers/{id}/link [delete]
func (c *WorkerController) UnlinkUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	worker, err := c.WorkerService.UnlinkUser(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, worker)
}

// swagger:model ScheduleReinductionRequest
type ScheduleReinductionRequest struct {
	Year    int       `json:"year" binding:"required"`
	DueDate time.Time `json:"dueDate" binding:"required"`
}

// ScheduleReinduction godoc
// @Summary Schedule a yearly reinduction
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Worker ID"
// @Param body body ScheduleReinductionRequest true "Year and due date"
// @Success 201 {object} util.Response{data=model.ReinductionRecord}
// @Failure 400 {object} util.Response
// @Router /api/workers/{id}/reinductions [post]
func (c *WorkerController) ScheduleReinduction(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req ScheduleReinductionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.WorkerService.ScheduleReinduction(id, req.Year, req.DueDate)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, record)
}

// Reinductions godoc
// @Summary Reinduction history of a worker
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Worker ID"
// @Success 200 {object} util.Response{data=[]model.ReinductionRecord}
// @Router /api/workers/{id}/reinductions [get]
func (c *WorkerController) Reinductions(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	records, err := c.WorkerService.ReinductionHistory(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, records)
}
