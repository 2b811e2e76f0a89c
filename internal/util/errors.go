package util

import (
	"errors"
	"fmt"
)

var (
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSlideNotFound      = errors.New("slide not found")
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
)

// NotFoundError marks a progress record that was expected to pre-exist.
type NotFoundError struct {
	Resource string
	Hint     string
}

func (e *NotFoundError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s not found. %s", e.Resource, e.Hint)
	}
	return e.Resource + " not found"
}

// InvalidStateError reports an operation attempted against an entity whose
// current state forbids it.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string {
	return e.Msg
}

// LimitExceededError carries the concrete limit and, for cooldown-gated
// retries, the remaining wait so callers can render a countdown.
type LimitExceededError struct {
	Msg            string
	Limit          int
	RetryInSeconds int
}

func (e *LimitExceededError) Error() string {
	return e.Msg
}

// ExpiredError reports a time-limited attempt submitted past its deadline.
type ExpiredError struct {
	Msg string
}

func (e *ExpiredError) Error() string {
	return e.Msg
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}

func IsLimitExceeded(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}

func IsExpired(err error) bool {
	var ex *ExpiredError
	return errors.As(err, &ex)
}
