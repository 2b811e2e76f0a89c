package service

import (
	"testing"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonFixture struct {
	env        *testEnv
	user       *model.User
	course     *model.Course
	module     *model.CourseModule
	lesson     *model.InteractiveLesson
	enrollment *model.Enrollment
}

func newLessonFixture(t *testing.T) *lessonFixture {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	module := env.addModule(t, course.ID, 0)
	lesson := env.createLesson(t, module.ID)
	enrollment := env.enroll(t, user.ID, course.ID, model.EnrollmentActive)
	return &lessonFixture{env: env, user: user, course: course, module: module, lesson: lesson, enrollment: enrollment}
}

func (f *lessonFixture) contentSlide() *model.LessonSlide { return &f.lesson.Slides[0] }
func (f *lessonFixture) quizSlide() *model.LessonSlide    { return &f.lesson.Slides[1] }

func (f *lessonFixture) quizAnswer(t *testing.T, correct bool) uint {
	t.Helper()
	quiz, err := f.env.lessonRepo.FindQuizBySlide(f.quizSlide().ID)
	require.NoError(t, err)
	for _, a := range quiz.Answers {
		if a.IsCorrect == correct {
			return a.ID
		}
	}
	t.Fatal("no matching quiz answer in fixture")
	return 0
}

func (f *lessonFixture) slideProgress(t *testing.T, slideID uint) *model.UserSlideProgress {
	t.Helper()
	progress, err := f.env.lessonRepo.FindLessonProgress(f.user.ID, f.lesson.ID)
	require.NoError(t, err)
	sp, err := f.env.lessonRepo.FindSlideProgress(progress.ID, slideID)
	require.NoError(t, err)
	return sp
}

func TestStartLessonAndViewSlides(t *testing.T) {
	f := newLessonFixture(t)

	progress, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonProgressInProgress, progress.Status)

	_, err = f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, f.contentSlide().ID)
	require.NoError(t, err)

	reloaded, err := f.env.lessonRepo.FindLessonProgress(f.user.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, reloaded.ProgressPercentage)
}

func TestViewSlideRequiresStartedLesson(t *testing.T) {
	f := newLessonFixture(t)

	_, err := f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, f.contentSlide().ID)
	assert.True(t, util.IsNotFound(err))
}

func TestViewSlideOfAnotherLessonRejected(t *testing.T) {
	f := newLessonFixture(t)
	other := f.env.createLesson(t, f.module.ID)

	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	_, err = f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, other.Slides[0].ID)
	assert.ErrorIs(t, err, util.ErrSlideNotFound)
}

func TestQuizCorrectAnswerIsTerminal(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	feedback, err := f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, true)})
	require.NoError(t, err)
	assert.True(t, feedback.Correct)
	assert.True(t, feedback.Answered)
	assert.Equal(t, 1, feedback.AttemptsUsed)
	assert.Equal(t, 2.0, feedback.PointsEarned)
	require.NotNil(t, feedback.CorrectAnswerID)
	assert.NotEmpty(t, feedback.Explanation)

	// A settled-correct quiz cannot be answered again.
	_, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, true)})
	assert.True(t, util.IsInvalidState(err))
}

func TestQuizFeedbackHiddenWhileRetriesRemain(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	feedback, err := f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, false)})
	require.NoError(t, err)
	assert.False(t, feedback.Correct)
	assert.False(t, feedback.Answered)
	assert.Equal(t, 1, feedback.AttemptsUsed)
	assert.Equal(t, 2, feedback.AttemptsRemaining)
	assert.Nil(t, feedback.CorrectAnswerID)
	assert.Empty(t, feedback.Explanation)
}

func TestQuizExhaustionAndCooldownCycle(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	wrong := f.quizAnswer(t, false)
	var feedback *QuizFeedback
	for i := 0; i < util.MaxQuizAttempts; i++ {
		feedback, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
			QuizSubmission{AnswerID: wrong})
		require.NoError(t, err)
	}

	// Third miss settles the quiz with zero points; feedback is now revealed.
	assert.True(t, feedback.Answered)
	assert.False(t, feedback.Correct)
	assert.Equal(t, util.MaxQuizAttempts, feedback.AttemptsUsed)
	assert.Equal(t, 0.0, feedback.PointsEarned)
	require.NotNil(t, feedback.CorrectAnswerID)

	// Inside the cooldown window a retry is refused with the remaining wait.
	_, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: wrong})
	require.Error(t, err)
	var le *util.LimitExceededError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, util.MaxQuizAttempts, le.Limit)
	assert.Greater(t, le.RetryInSeconds, 0)
	assert.LessOrEqual(t, le.RetryInSeconds, int(util.QuizRetryCooldown.Seconds())+1)

	// Backdate the last answer past the cooldown: a fresh cycle opens.
	sp := f.slideProgress(t, f.quizSlide().ID)
	expired := time.Now().UTC().Add(-util.QuizRetryCooldown - time.Second)
	require.NoError(t, f.env.db.Model(&model.UserSlideProgress{}).
		Where("id = ?", sp.ID).Update("answered_at", expired).Error)

	feedback, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, true)})
	require.NoError(t, err)
	assert.True(t, feedback.Correct)
	assert.Equal(t, 1, feedback.AttemptsUsed)
	assert.Equal(t, 2.0, feedback.PointsEarned)
}

func TestCompleteLessonRequiresViewsAndSettledQuizzes(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	// Nothing viewed yet.
	_, err = f.env.lessons.CompleteLesson(f.user.ID, f.lesson.ID)
	assert.True(t, util.IsInvalidState(err))

	_, err = f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, f.contentSlide().ID)
	require.NoError(t, err)
	_, err = f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, f.quizSlide().ID)
	require.NoError(t, err)

	// Slides viewed but the quiz is unsettled.
	_, err = f.env.lessons.CompleteLesson(f.user.ID, f.lesson.ID)
	assert.True(t, util.IsInvalidState(err))

	_, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, true)})
	require.NoError(t, err)

	progress, err := f.env.lessons.CompleteLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonProgressCompleted, progress.Status)
	assert.Equal(t, 100.0, progress.ProgressPercentage)
	require.NotNil(t, progress.QuizScore)
	assert.Equal(t, 100.0, *progress.QuizScore)

	// The lesson counts as the module's only completable item.
	mp, err := f.env.progressRepo.FindModuleProgress(f.user.ID, f.module.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, mp.ProgressPercentage)

	reloaded := f.env.reloadEnrollment(t, f.enrollment.ID)
	assert.Equal(t, model.EnrollmentCompleted, reloaded.Status)
}

func TestCompleteLessonRollsBackWhenRollupFails(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	_, err = f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, f.contentSlide().ID)
	require.NoError(t, err)
	_, err = f.env.lessons.ViewSlide(f.user.ID, f.lesson.ID, f.quizSlide().ID)
	require.NoError(t, err)
	_, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, true)})
	require.NoError(t, err)

	failModuleRollupWrites(t, f.env.db)

	_, err = f.env.lessons.CompleteLesson(f.user.ID, f.lesson.ID)
	require.Error(t, err)

	// The lesson close rolled back with the failed rollup.
	progress, err := f.env.lessonRepo.FindLessonProgress(f.user.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonProgressInProgress, progress.Status)
	assert.NotEqual(t, model.EnrollmentCompleted, f.env.reloadEnrollment(t, f.enrollment.ID).Status)
}

func TestClaimQuizAttemptGuardsCounter(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.env.lessons.StartLesson(f.user.ID, f.lesson.ID)
	require.NoError(t, err)

	// One miss materializes the slide record with a single used attempt.
	_, err = f.env.lessons.SubmitQuizAnswer(f.user.ID, f.lesson.ID, f.quizSlide().ID,
		QuizSubmission{AnswerID: f.quizAnswer(t, false)})
	require.NoError(t, err)
	sp := f.slideProgress(t, f.quizSlide().ID)
	require.Equal(t, 1, sp.QuizAttempts)

	claimed, err := f.env.lessonRepo.ClaimQuizAttempt(sp.ID, util.MaxQuizAttempts)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = f.env.lessonRepo.ClaimQuizAttempt(sp.ID, util.MaxQuizAttempts)
	require.NoError(t, err)
	assert.True(t, claimed)

	// The cycle is spent: further claims miss the guard.
	claimed, err = f.env.lessonRepo.ClaimQuizAttempt(sp.ID, util.MaxQuizAttempts)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, util.MaxQuizAttempts, f.slideProgress(t, f.quizSlide().ID).QuizAttempts)

	// A settled quiz refuses claims even with attempts to spare.
	require.NoError(t, f.env.db.Model(&model.UserSlideProgress{}).
		Where("id = ?", sp.ID).
		Updates(map[string]interface{}{"quiz_answered": true, "quiz_attempts": 0}).Error)
	claimed, err = f.env.lessonRepo.ClaimQuizAttempt(sp.ID, util.MaxQuizAttempts)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestDraftLessonHiddenFromLearners(t *testing.T) {
	f := newLessonFixture(t)
	draft := &model.InteractiveLesson{ModuleID: f.module.ID, Title: "Draft", Status: model.LessonDraft}
	require.NoError(t, f.env.db.Create(draft).Error)

	_, err := f.env.lessons.StartLesson(f.user.ID, draft.ID)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestCreateAndPublishLesson(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, model.CoursePublished)
	module := env.addModule(t, course.ID, 0)

	lesson := &model.InteractiveLesson{
		ModuleID: module.ID,
		Title:    "Forklift Basics",
		// Status in the payload is ignored; new lessons always start as drafts.
		Status: model.LessonPublished,
		Slides: []model.LessonSlide{
			{Title: "Intro", SlideType: model.SlideContent, OrderIndex: 0},
		},
	}
	require.NoError(t, env.lessons.CreateLesson(lesson))
	assert.Equal(t, model.LessonDraft, lesson.Status)

	published, err := env.lessons.PublishLesson(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	_, err = env.lessons.PublishLesson(lesson.ID)
	assert.True(t, util.IsInvalidState(err))
}

func TestPublishLessonRequiresSlides(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, model.CoursePublished)
	module := env.addModule(t, course.ID, 0)

	lesson := &model.InteractiveLesson{ModuleID: module.ID, Title: "Empty"}
	require.NoError(t, env.lessons.CreateLesson(lesson))

	_, err := env.lessons.PublishLesson(lesson.ID)
	assert.True(t, util.IsInvalidState(err))

	lesson = &model.InteractiveLesson{ModuleID: 9999, Title: "Orphan"}
	assert.ErrorIs(t, env.lessons.CreateLesson(lesson), util.ErrModuleNotFound)
}
