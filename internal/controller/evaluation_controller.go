package controller

import (
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	EvaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// Get godoc
// @Summary Evaluation detail for taking (no correct answers)
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Success 200 {object} util.Response{data=model.Evaluation}
// @Failure 404 {object} util.Response
// @Router /api/evaluations/{id} [get]
func (c *EvaluationController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	evaluation, err := c.EvaluationService.GetForTaking(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, evaluation)
}

// StartAttempt godoc
// @Summary Start or resume an attempt
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Success 200 {object} util.Response{data=model.UserEvaluation}
// @Failure 429 {object} util.Response
// @Router /api/evaluations/{id}/attempts [post]
func (c *EvaluationController) StartAttempt(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	attempt, err := c.EvaluationService.StartAttempt(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// swagger:model SubmitAttemptRequest
type SubmitAttemptRequest struct {
	Answers []service.AnswerSubmission `json:"answers" binding:"required"`
}

// SubmitAttempt godoc
// @Summary Submit an attempt for grading
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "Attempt ID"
// @Param body body SubmitAttemptRequest true "Answers"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 400 {object} util.Response
// @Router /api/attempts/{attemptId}/submit [post]
func (c *EvaluationController) SubmitAttempt(ctx *gin.Context) {
	attemptID, ok := paramID(ctx, "attemptId")
	if !ok {
		return
	}
	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.EvaluationService.SubmitAttempt(claims.UserID, attemptID, req.Answers)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AttemptReview godoc
// @Summary Review a finished attempt with its recorded answers
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptReview}
// @Failure 404 {object} util.Response
// @Router /api/attempts/{attemptId} [get]
func (c *EvaluationController) AttemptReview(ctx *gin.Context) {
	attemptID, ok := paramID(ctx, "attemptId")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	review, err := c.EvaluationService.GetAttemptReview(claims.UserID, attemptID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// Results godoc
// @Summary All users' attempts at an evaluation (staff)
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/evaluations/{id}/results [get]
func (c *EvaluationController) Results(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	page, limit := pagination(ctx)
	attempts, total, err := c.EvaluationService.GetResults(id, page, limit)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// Attempts godoc
// @Summary My attempts at an evaluation
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Success 200 {object} util.Response{data=[]model.UserEvaluation}
// @Router /api/evaluations/{id}/attempts [get]
func (c *EvaluationController) Attempts(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	attempts, err := c.EvaluationService.GetAttempts(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
