package controller

import (
	"strconv"

	"sst_backend/internal/model"
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// swagger:model CreateCourseRequest
type CreateCourseRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	CourseType   string  `json:"courseType" binding:"omitempty,oneof=induction reinduction training optional"`
	PassingScore float64 `json:"passingScore"`
	DurationHrs  float64 `json:"durationHours"`
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCourseRequest true "Course data"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		CourseType:   model.CourseType(req.CourseType),
		PassingScore: req.PassingScore,
		DurationHrs:  req.DurationHrs,
		CreatedBy:    claims.UserID,
	}
	if course.CourseType == "" {
		course.CourseType = model.CourseTraining
	}

	if err := c.CourseService.Create(course); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// List godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param type query string false "Course type filter"
// @Param status query string false "Status filter"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	courses, total, err := c.CourseService.List(page, limit, ctx.Query("type"), ctx.Query("status"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Course detail with modules and materials
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.GetByID(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Publish godoc
// @Summary Publish a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/courses/{id}/publish [post]
func (c *CourseController) Publish(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Publish(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// swagger:model UpdateCourseRequest
type UpdateCourseRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	PassingScore *float64 `json:"passingScore"`
	DurationHrs  *float64 `json:"durationHours"`
}

// Update godoc
// @Summary Update course metadata
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body UpdateCourseRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.GetByID(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.PassingScore != nil {
		course.PassingScore = *req.PassingScore
	}
	if req.DurationHrs != nil {
		course.DurationHrs = *req.DurationHrs
	}

	if err := c.CourseService.Update(course); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Archive godoc
// @Summary Archive a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/{id}/archive [post]
func (c *CourseController) Archive(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Archive(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// swagger:model CreateModuleRequest
type CreateModuleRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	OrderIndex  int    `json:"orderIndex"`
}

// AddModule godoc
// @Summary Add a module to a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body CreateModuleRequest true "Module data"
// @Success 201 {object} util.Response{data=model.CourseModule}
// @Router /api/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module := &model.CourseModule{
		Title:       req.Title,
		Description: req.Description,
		OrderIndex:  req.OrderIndex,
	}
	if err := c.CourseService.AddModule(id, module); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// swagger:model CreateMaterialRequest
type CreateMaterialRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	MaterialType string `json:"materialType" binding:"required,oneof=pdf video link"`
	FileURL      string `json:"fileUrl"`
	OrderIndex   int    `json:"orderIndex"`
}

// AddMaterial godoc
// @Summary Add a material to a module
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "Module ID"
// @Param body body CreateMaterialRequest true "Material data"
// @Success 201 {object} util.Response{data=model.CourseMaterial}
// @Router /api/modules/{moduleId}/materials [post]
func (c *CourseController) AddMaterial(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	var req CreateMaterialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	material := &model.CourseMaterial{
		Title:        req.Title,
		Description:  req.Description,
		MaterialType: model.MaterialType(req.MaterialType),
		FileURL:      req.FileURL,
		OrderIndex:   req.OrderIndex,
	}
	if err := c.CourseService.AddMaterial(moduleID, material); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, material)
}

// UploadMaterialFile godoc
// @Summary Upload a material file
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param file formData file true "File"
// @Success 200 {object} util.Response{data=model.CourseMaterial}
// @Router /api/materials/{id}/file [post]
func (c *CourseController) UploadMaterialFile(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	material, err := c.CourseService.UploadMaterialFile(ctx.Request.Context(), id, header)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, material)
}

// DeleteMaterial godoc
// @Summary Delete a material
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/materials/{id} [delete]
func (c *CourseController) DeleteMaterial(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteMaterial(id); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
