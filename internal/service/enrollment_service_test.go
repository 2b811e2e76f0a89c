package service

import (
	"testing"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollInPublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)

	enrollment, err := env.enrollments.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, enrollment.Status)
	assert.Equal(t, 0.0, enrollment.Progress)
	assert.False(t, enrollment.EnrolledAt.IsZero())
}

func TestEnrollRejectsDraftCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CourseDraft)

	_, err := env.enrollments.Enroll(user.ID, course.ID)
	assert.True(t, util.IsInvalidState(err))
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)

	_, err := env.enrollments.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollments.Enroll(user.ID, course.ID)
	assert.True(t, util.IsInvalidState(err))
}

func TestEnrollRevivesCancelledEnrollment(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	existing := env.enroll(t, user.ID, course.ID, model.EnrollmentCancelled)

	enrollment, err := env.enrollments.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, enrollment.ID)
	assert.Equal(t, model.EnrollmentPending, enrollment.Status)
}

func TestStartEnrollment(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentPending)

	started, err := env.enrollments.Start(user.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentActive, started.Status)
	assert.NotNil(t, started.StartedAt)

	_, err = env.enrollments.Start(user.ID, enrollment.ID)
	assert.True(t, util.IsInvalidState(err))
}

func TestCancelEnrollmentOwnershipAndState(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	other := env.createUser(t, "bob")
	course := env.createCourse(t, model.CoursePublished)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	_, err := env.enrollments.Cancel(other.ID, enrollment.ID, "")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	cancelled, err := env.enrollments.Cancel(user.ID, enrollment.ID, "left the company")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "left the company")
}

func TestCancelRejectsCompletedEnrollment(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentCompleted)

	_, err := env.enrollments.Cancel(user.ID, enrollment.ID, "")
	assert.True(t, util.IsInvalidState(err))
}

func TestSuspendAndResume(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	env.addModule(t, course.ID, 0)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	suspended, err := env.enrollments.Suspend(enrollment.ID, "audit")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentSuspended, suspended.Status)
	assert.Contains(t, suspended.Notes, "audit")

	// Suspending again is rejected.
	_, err = env.enrollments.Suspend(enrollment.ID, "")
	assert.True(t, util.IsInvalidState(err))

	resumed, err := env.enrollments.Resume(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentActive, resumed.Status)

	_, err = env.enrollments.Resume(enrollment.ID)
	assert.True(t, util.IsInvalidState(err))
}

func TestEnrollReinductionCourseBooksYearlyRecord(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	course := &model.Course{
		Title:      "Annual Safety Reinduction",
		CourseType: model.CourseReinduction,
		Status:     model.CoursePublished,
	}
	require.NoError(t, env.db.Create(course).Error)

	worker := &model.Worker{DocumentNumber: "DOC-9", FirstName: "Alice", LastName: "Ng", UserID: &user.ID}
	require.NoError(t, env.db.Create(worker).Error)

	enrollment, err := env.enrollments.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	var record model.ReinductionRecord
	require.NoError(t, env.db.Where("worker_id = ?", worker.ID).First(&record).Error)
	assert.Equal(t, time.Now().UTC().Year(), record.Year)
	assert.Equal(t, model.ReinductionScheduled, record.Status)
	require.NotNil(t, record.EnrollmentID)
	assert.Equal(t, enrollment.ID, *record.EnrollmentID)
}

func TestEnrollReinductionWithoutWorkerIsPlain(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	course := &model.Course{
		Title:      "Annual Safety Reinduction",
		CourseType: model.CourseReinduction,
		Status:     model.CoursePublished,
	}
	require.NoError(t, env.db.Create(course).Error)

	_, err := env.enrollments.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&model.ReinductionRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMarkCompletedForTrainingCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentPending)

	grade := 85.0
	completed, err := env.enrollments.MarkCompleted(enrollment.ID, &grade)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, completed.Status)
	assert.Equal(t, 100.0, completed.Progress)
	require.NotNil(t, completed.Grade)
	assert.Equal(t, 85.0, *completed.Grade)
	assert.NotNil(t, completed.CompletedAt)

	_, err = env.enrollments.MarkCompleted(enrollment.ID, nil)
	assert.True(t, util.IsInvalidState(err))
}

func TestMarkCompletedRejectsInductionCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	require.NoError(t, env.db.Model(course).Update("course_type", model.CourseInduction).Error)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	_, err := env.enrollments.MarkCompleted(enrollment.ID, nil)
	assert.True(t, util.IsInvalidState(err))

	assert.Equal(t, model.EnrollmentActive, env.reloadEnrollment(t, enrollment.ID).Status)
}
