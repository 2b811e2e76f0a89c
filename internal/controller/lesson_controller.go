package controller

import (
	"sst_backend/internal/model"
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// swagger:model CreateLessonRequest
type CreateLessonRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Slides      []model.LessonSlide `json:"slides"`
}

// Create godoc
// @Summary Create a draft lesson in a module (staff)
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "Module ID"
// @Param body body CreateLessonRequest true "Lesson definition"
// @Success 201 {object} util.Response{data=model.InteractiveLesson}
// @Failure 400 {object} util.Response
// @Router /api/modules/{moduleId}/lessons [post]
func (c *LessonController) Create(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	var req CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson := &model.InteractiveLesson{
		ModuleID:    moduleID,
		Title:       req.Title,
		Description: req.Description,
		Slides:      req.Slides,
	}
	if err := c.LessonService.CreateLesson(lesson); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// Publish godoc
// @Summary Publish a draft lesson (staff)
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=model.InteractiveLesson}
// @Failure 400 {object} util.Response
// @Router /api/lessons/{id}/publish [post]
func (c *LessonController) Publish(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	lesson, err := c.LessonService.PublishLesson(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// Get godoc
// @Summary Lesson detail with slides and quizzes
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=model.InteractiveLesson}
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	lesson, err := c.LessonService.GetLessonForTaking(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// Start godoc
// @Summary Start a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=model.UserLessonProgress}
// @Router /api/lessons/{id}/start [post]
func (c *LessonController) Start(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.LessonService.StartLesson(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// ViewSlide godoc
// @Summary Mark a slide viewed
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param slideId path int true "Slide ID"
// @Success 200 {object} util.Response{data=model.UserSlideProgress}
// @Router /api/lessons/{id}/slides/{slideId}/view [post]
func (c *LessonController) ViewSlide(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	slideID, ok := paramID(ctx, "slideId")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.LessonService.ViewSlide(claims.UserID, id, slideID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// SubmitQuiz godoc
// @Summary Answer an inline quiz
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param slideId path int true "Slide ID"
// @Param body body service.QuizSubmission true "Answer"
// @Success 200 {object} util.Response{data=service.QuizFeedback}
// @Failure 429 {object} util.Response
// @Router /api/lessons/{id}/slides/{slideId}/quiz [post]
func (c *LessonController) SubmitQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	slideID, ok := paramID(ctx, "slideId")
	if !ok {
		return
	}
	var req service.QuizSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	feedback, err := c.LessonService.SubmitQuizAnswer(claims.UserID, id, slideID, req)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}

// Complete godoc
// @Summary Complete a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=model.UserLessonProgress}
// @Failure 400 {object} util.Response
// @Router /api/lessons/{id}/complete [post]
func (c *LessonController) Complete(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.LessonService.CompleteLesson(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
