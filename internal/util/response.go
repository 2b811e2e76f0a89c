package util

import (
	"errors"
	"net/http"
	"sst_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response is the shared API envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse wraps paginated list payloads.
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// DomainError maps the engine's error taxonomy onto HTTP responses. Limit
// and cooldown details ride along in the data field so clients can render
// countdowns instead of bare rejections.
func DomainError(c *gin.Context, err error) {
	var le *LimitExceededError
	if errors.As(err, &le) {
		c.JSON(http.StatusTooManyRequests, Response{
			Code:    http.StatusTooManyRequests,
			Message: le.Msg,
			Data: gin.H{
				"limit":                      le.Limit,
				"retry_available_in_seconds": le.RetryInSeconds,
			},
		})
		return
	}
	switch {
	case IsNotFound(err), errors.Is(err, gorm.ErrRecordNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case IsInvalidState(err), IsExpired(err):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotEnrolled), errors.Is(err, ErrPermissionDenied):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrMaterialNotFound), errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrModuleNotFound), errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrSlideNotFound), errors.Is(err, ErrSurveyNotFound),
		errors.Is(err, ErrEvaluationNotFound), errors.Is(err, ErrEnrollmentNotFound),
		errors.Is(err, ErrWorkerNotFound), errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error())
	default:
		LogInternalError(c, err)
	}
}
