package controller

import (
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// swagger:model EnrollRequest
type EnrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EnrollRequest true "Course to enroll in"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, req.CourseID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// Mine godoc
// @Summary My enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments/mine [get]
func (c *EnrollmentController) Mine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollments, err := c.EnrollmentService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// Start godoc
// @Summary Start a pending enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response
// @Router /api/enrollments/{id}/start [post]
func (c *EnrollmentController) Start(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.Start(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// swagger:model EnrollmentReasonRequest
type EnrollmentReasonRequest struct {
	Reason string `json:"reason"`
}

// Cancel godoc
// @Summary Cancel my enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param body body EnrollmentReasonRequest false "Reason"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /api/enrollments/{id}/cancel [post]
func (c *EnrollmentController) Cancel(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req EnrollmentReasonRequest
	ctx.ShouldBindJSON(&req)

	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.Cancel(claims.UserID, id, req.Reason)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// Suspend godoc
// @Summary Suspend an enrollment (staff)
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param body body EnrollmentReasonRequest false "Reason"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /api/enrollments/{id}/suspend [post]
func (c *EnrollmentController) Suspend(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req EnrollmentReasonRequest
	ctx.ShouldBindJSON(&req)

	enrollment, err := c.EnrollmentService.Suspend(id, req.Reason)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// Resume godoc
// @Summary Resume a suspended enrollment (staff)
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /api/enrollments/{id}/resume [post]
func (c *EnrollmentController) Resume(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	enrollment, err := c.EnrollmentService.Resume(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// swagger:model MarkCompletedRequest
type MarkCompletedRequest struct {
	Grade *float64 `json:"grade"`
}

// Complete godoc
// @Summary Mark an enrollment completed (staff, training/optional courses)
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param body body MarkCompletedRequest false "Final grade"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response
// @Router /api/enrollments/{id}/complete [post]
func (c *EnrollmentController) Complete(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req MarkCompletedRequest
	ctx.ShouldBindJSON(&req)

	enrollment, err := c.EnrollmentService.MarkCompleted(id, req.Grade)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// ByCourse godoc
// @Summary List enrollments of a course (staff)
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses/{id}/enrollments [get]
func (c *EnrollmentController) ByCourse(ctx *gin.Context) {
	courseID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	page, limit := pagination(ctx)
	enrollments, total, err := c.EnrollmentService.ListByCourse(courseID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: enrollments, Total: total, Page: page, Limit: limit})
}
