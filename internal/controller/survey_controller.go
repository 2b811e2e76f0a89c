package controller

import (
	"sst_backend/internal/model"
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService *service.SurveyService
}

func NewSurveyController(surveyService *service.SurveyService) *SurveyController {
	return &SurveyController{SurveyService: surveyService}
}

// swagger:model CreateSurveyRequest
type CreateSurveyRequest struct {
	Title                 string `json:"title" binding:"required"`
	Description           string `json:"description"`
	CourseID              *uint  `json:"courseId"`
	RequiredForCompletion bool   `json:"requiredForCompletion"`
	IsAnonymous           bool   `json:"isAnonymous"`
}

// Create godoc
// @Summary Create a survey
// @Tags surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSurveyRequest true "Survey data"
// @Success 201 {object} util.Response{data=model.Survey}
// @Router /api/surveys [post]
func (c *SurveyController) Create(ctx *gin.Context) {
	var req CreateSurveyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	survey := &model.Survey{
		Title:                 req.Title,
		Description:           req.Description,
		CourseID:              req.CourseID,
		RequiredForCompletion: req.RequiredForCompletion,
		IsAnonymous:           req.IsAnonymous,
		CreatedBy:             claims.UserID,
	}
	if err := c.SurveyService.Create(survey); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, survey)
}

// Get godoc
// @Summary Survey detail with questions
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Success 200 {object} util.Response{data=model.Survey}
// @Failure 404 {object} util.Response
// @Router /api/surveys/{id} [get]
func (c *SurveyController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	survey, err := c.SurveyService.GetByID(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, survey)
}

// List godoc
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/surveys [get]
func (c *SurveyController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	surveys, total, err := c.SurveyService.List(page, limit, ctx.Query("status"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: surveys, Total: total, Page: page, Limit: limit})
}

// Publish godoc
// @Summary Publish a survey
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Success 200 {object} util.Response{data=model.Survey}
// @Failure 400 {object} util.Response
// @Router /api/surveys/{id}/publish [post]
func (c *SurveyController) Publish(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	survey, err := c.SurveyService.Publish(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, survey)
}

// swagger:model SurveyResponseRequest
type SurveyResponseRequest struct {
	Responses map[string]interface{} `json:"responses" binding:"required"`
}

// Respond godoc
// @Summary Submit my survey response
// @Tags surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Param body body SurveyResponseRequest true "Responses keyed by question ID"
// @Success 200 {object} util.Response{data=model.UserSurvey}
// @Failure 400 {object} util.Response
// @Router /api/surveys/{id}/responses [post]
func (c *SurveyController) Respond(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req SurveyResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	us, err := c.SurveyService.SubmitResponse(claims.UserID, id, req.Responses)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, us)
}

// MyStatus godoc
// @Summary My status for a survey
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Success 200 {object} util.Response{data=model.UserSurvey}
// @Router /api/surveys/{id}/status [get]
func (c *SurveyController) MyStatus(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	us, err := c.SurveyService.GetUserStatus(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, us)
}

// Responses godoc
// @Summary Completed responses of a survey (staff)
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Survey ID"
// @Success 200 {object} util.Response{data=[]model.UserSurvey}
// @Router /api/surveys/{id}/responses [get]
func (c *SurveyController) Responses(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	responses, err := c.SurveyService.GetResponses(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, responses)
}
