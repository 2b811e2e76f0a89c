package service

import (
	"testing"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStartAttemptCreatesNumberedAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Equal(t, model.UserEvaluationInProgress, attempt.Status)
	assert.NotNil(t, attempt.StartedAt)
	// No time limit configured: no deadline.
	assert.Nil(t, attempt.ExpiresAt)
}

func TestStartAttemptResumesInProgress(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	first, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	second, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestStartAttemptEnforcesCeiling(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 2)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	for i := 1; i <= 2; i++ {
		attempt := &model.UserEvaluation{
			UserID:        user.ID,
			EvaluationID:  evaluation.ID,
			AttemptNumber: i,
			Status:        model.UserEvaluationCompleted,
		}
		require.NoError(t, env.db.Create(attempt).Error)
	}

	_, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.Error(t, err)
	assert.True(t, util.IsLimitExceeded(err))
}

func TestAttemptSlotIsUniquePerNumber(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	first := &model.UserEvaluation{
		UserID:        user.ID,
		EvaluationID:  evaluation.ID,
		AttemptNumber: 1,
		Status:        model.UserEvaluationCompleted,
	}
	require.NoError(t, env.db.Create(first).Error)

	// Two starts racing to the same attempt number: only one insert lands.
	duplicate := &model.UserEvaluation{
		UserID:        user.ID,
		EvaluationID:  evaluation.ID,
		AttemptNumber: 1,
		Status:        model.UserEvaluationInProgress,
	}
	assert.ErrorIs(t, env.db.Create(duplicate).Error, gorm.ErrDuplicatedKey)

	next := &model.UserEvaluation{
		UserID:        user.ID,
		EvaluationID:  evaluation.ID,
		AttemptNumber: 2,
		Status:        model.UserEvaluationInProgress,
	}
	assert.NoError(t, env.db.Create(next).Error)
}

func TestStartAttemptExpiresStaleAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	past := time.Now().UTC().Add(-time.Hour)
	stale := &model.UserEvaluation{
		UserID:        user.ID,
		EvaluationID:  evaluation.ID,
		EnrollmentID:  &enrollment.ID,
		AttemptNumber: 1,
		Status:        model.UserEvaluationInProgress,
		ExpiresAt:     &past,
	}
	require.NoError(t, env.db.Create(stale).Error)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.AttemptNumber)

	var reloaded model.UserEvaluation
	require.NoError(t, env.db.First(&reloaded, stale.ID).Error)
	assert.Equal(t, model.UserEvaluationExpired, reloaded.Status)
}

func TestSubmitAttemptScoresExactSets(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	mc := evaluation.Questions[0]
	tf := evaluation.Questions[1]

	// Partial selection on the multiple-choice question misses; only the
	// true/false point lands.
	result, err := env.evaluations.SubmitAttempt(user.ID, attempt.ID, []AnswerSubmission{
		{QuestionID: mc.ID, SelectedAnswerIDs: []uint{mc.Answers[0].ID}},
		{QuestionID: tf.ID, SelectedAnswerIDs: []uint{tf.Answers[0].ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 3.0, result.MaxPoints)
	assert.InDelta(t, 33.333, result.Percentage, 0.01)
	assert.False(t, result.Passed)
	assert.Equal(t, model.UserEvaluationCompleted, result.Attempt.Status)
}

func TestSubmitAttemptSelectingExtraOptionMisses(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	mc := evaluation.Questions[0]
	result, err := env.evaluations.SubmitAttempt(user.ID, attempt.ID, []AnswerSubmission{
		// All three options, including the wrong one.
		{QuestionID: mc.ID, SelectedAnswerIDs: []uint{mc.Answers[0].ID, mc.Answers[1].ID, mc.Answers[2].ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}

func TestSubmitAttemptPassingMarksAndCertifies(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	result, err := env.evaluations.SubmitAttempt(user.ID, attempt.ID, correctAnswersFor(evaluation))
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.Passed)
	assert.True(t, result.Attempt.IsBestAttempt)

	var certificate model.Certificate
	require.NoError(t, env.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&certificate).Error)
	assert.Equal(t, model.CertificateIssued, certificate.Status)
	assert.Equal(t, 100.0, certificate.ScoreAchieved)
	assert.NotEmpty(t, certificate.CertificateNumber)
	assert.NotEmpty(t, certificate.VerificationCode)
}

func TestCertificateIssuedOncePerCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 5)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	for i := 0; i < 2; i++ {
		attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
		require.NoError(t, err)
		_, err = env.evaluations.SubmitAttempt(user.ID, attempt.ID, correctAnswersFor(evaluation))
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, env.db.Model(&model.Certificate{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBestAttemptElection(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 5)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	mc := evaluation.Questions[0]
	tf := evaluation.Questions[1]

	// First attempt scores 100%.
	attempt1, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	_, err = env.evaluations.SubmitAttempt(user.ID, attempt1.ID, correctAnswersFor(evaluation))
	require.NoError(t, err)

	// Second attempt scores lower; the first stays best.
	attempt2, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	_, err = env.evaluations.SubmitAttempt(user.ID, attempt2.ID, []AnswerSubmission{
		{QuestionID: mc.ID, SelectedAnswerIDs: []uint{mc.Answers[2].ID}},
		{QuestionID: tf.ID, SelectedAnswerIDs: []uint{tf.Answers[0].ID}},
	})
	require.NoError(t, err)

	var best []model.UserEvaluation
	require.NoError(t, env.db.
		Where("user_id = ? AND evaluation_id = ? AND is_best_attempt = ?", user.ID, evaluation.ID, true).
		Find(&best).Error)
	require.Len(t, best, 1)
	assert.Equal(t, attempt1.ID, best[0].ID)
	assert.Equal(t, 1, best[0].AttemptNumber)
}

func TestSubmitAttemptRejectsWrongUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	other := env.createUser(t, "bob")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	_, err = env.evaluations.SubmitAttempt(other.ID, attempt.ID, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestSubmitAttemptPastDeadlineExpires(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, env.db.Model(&model.UserEvaluation{}).
		Where("id = ?", attempt.ID).Update("expires_at", past).Error)

	_, err = env.evaluations.SubmitAttempt(user.ID, attempt.ID, nil)
	assert.True(t, util.IsExpired(err))

	var reloaded model.UserEvaluation
	require.NoError(t, env.db.First(&reloaded, attempt.ID).Error)
	assert.Equal(t, model.UserEvaluationExpired, reloaded.Status)
}

func TestShortAnswerExcludedFromAutoScore(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	evaluation := &model.Evaluation{
		CourseID:     course.ID,
		Title:        "Mixed Evaluation",
		PassingScore: 70,
		MaxAttempts:  3,
		Status:       model.EvaluationPublished,
		Questions: []model.Question{
			{
				QuestionText: "Is lockout required?",
				QuestionType: model.QuestionTrueFalse,
				Points:       1,
				Answers: []model.Answer{
					{AnswerText: "Yes", IsCorrect: true},
					{AnswerText: "No", IsCorrect: false},
				},
			},
			{
				QuestionText: "Describe the lockout procedure",
				QuestionType: model.QuestionShortAnswer,
				Points:       5,
			},
		},
	}
	require.NoError(t, env.db.Create(evaluation).Error)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	result, err := env.evaluations.SubmitAttempt(user.ID, attempt.ID, []AnswerSubmission{
		{QuestionID: evaluation.Questions[0].ID, SelectedAnswerIDs: []uint{evaluation.Questions[0].Answers[0].ID}},
		{QuestionID: evaluation.Questions[1].ID, AnswerText: "Isolate, lock, tag, verify."},
	})
	require.NoError(t, err)

	// Only the true/false point counts toward the automatic score.
	assert.Equal(t, 1.0, result.MaxPoints)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.Passed)

	var stored model.UserAnswer
	require.NoError(t, env.db.
		Where("user_evaluation_id = ? AND question_id = ?", attempt.ID, evaluation.Questions[1].ID).
		First(&stored).Error)
	assert.Equal(t, "Isolate, lock, tag, verify.", stored.AnswerText)
	assert.Equal(t, 0.0, stored.PointsEarned)
}

func TestPassingEvaluationCompletesGatedEnrollment(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	module := env.addModule(t, course.ID, 0)
	material := env.addMaterial(t, module.ID, 0)
	evaluation := env.createEvaluation(t, course.ID, 3)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	_, err := env.progress.CompleteMaterial(user.ID, material.ID)
	require.NoError(t, err)

	// Full content, evaluation pending: capped.
	assert.Equal(t, 99.0, env.reloadEnrollment(t, enrollment.ID).Progress)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)
	_, err = env.evaluations.SubmitAttempt(user.ID, attempt.ID, correctAnswersFor(evaluation))
	require.NoError(t, err)

	reloaded := env.reloadEnrollment(t, enrollment.ID)
	assert.Equal(t, model.EnrollmentCompleted, reloaded.Status)
	assert.Equal(t, 100.0, reloaded.Progress)
	require.NotNil(t, reloaded.Grade)
	assert.Equal(t, 100.0, *reloaded.Grade)
}

func TestGetAttemptsLazilyExpires(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	past := time.Now().UTC().Add(-time.Hour)
	stale := &model.UserEvaluation{
		UserID:        user.ID,
		EvaluationID:  evaluation.ID,
		AttemptNumber: 1,
		Status:        model.UserEvaluationInProgress,
		ExpiresAt:     &past,
	}
	require.NoError(t, env.db.Create(stale).Error)

	attempts, err := env.evaluations.GetAttempts(user.ID, evaluation.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.UserEvaluationExpired, attempts[0].Status)
}

func TestGetAttemptReviewReturnsRecordedAnswers(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	other := env.createUser(t, "bob")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, user.ID, course.ID, model.EnrollmentActive)

	attempt, err := env.evaluations.StartAttempt(user.ID, evaluation.ID)
	require.NoError(t, err)

	// Live attempts cannot be reviewed.
	_, err = env.evaluations.GetAttemptReview(user.ID, attempt.ID)
	assert.True(t, util.IsInvalidState(err))

	_, err = env.evaluations.SubmitAttempt(user.ID, attempt.ID, correctAnswersFor(evaluation))
	require.NoError(t, err)

	review, err := env.evaluations.GetAttemptReview(user.ID, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, review.Attempt.ID)
	require.Len(t, review.Answers, 2)
	for _, answer := range review.Answers {
		assert.True(t, answer.IsCorrect)
	}

	_, err = env.evaluations.GetAttemptReview(other.ID, attempt.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = env.evaluations.GetAttemptReview(user.ID, 9999)
	assert.True(t, util.IsNotFound(err))
}

func TestGetResultsPagesAcrossUsers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	course := env.createCourse(t, model.CoursePublished)
	evaluation := env.createEvaluation(t, course.ID, 3)
	env.enroll(t, alice.ID, course.ID, model.EnrollmentActive)
	env.enroll(t, bob.ID, course.ID, model.EnrollmentActive)

	aliceAttempt, err := env.evaluations.StartAttempt(alice.ID, evaluation.ID)
	require.NoError(t, err)
	_, err = env.evaluations.SubmitAttempt(alice.ID, aliceAttempt.ID, correctAnswersFor(evaluation))
	require.NoError(t, err)

	_, err = env.evaluations.StartAttempt(bob.ID, evaluation.ID)
	require.NoError(t, err)

	attempts, total, err := env.evaluations.GetResults(evaluation.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, attempts, 2)

	_, _, err = env.evaluations.GetResults(9999, 1, 10)
	assert.ErrorIs(t, err, util.ErrEvaluationNotFound)
}
