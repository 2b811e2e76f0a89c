package service

import (
	"encoding/json"
	"fmt"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonService runs interactive lesson delivery: slide viewing, the inline
// quiz retry/cooldown engine, and lesson completion feeding the module
// rollup.
type LessonService struct {
	LessonRepo      *repository.LessonRepository
	CourseRepo      *repository.CourseRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	ProgressService *ProgressService
	DB              *gorm.DB
}

func NewLessonService(
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressService *ProgressService,
	db *gorm.DB,
) *LessonService {
	return &LessonService{
		LessonRepo:      lessonRepo,
		CourseRepo:      courseRepo,
		EnrollmentRepo:  enrollmentRepo,
		ProgressService: progressService,
		DB:              db,
	}
}

// CreateLesson stores a new draft lesson with its slides and inline quizzes.
// Draft lessons are invisible to learners and do not count toward module
// progress until published.
func (s *LessonService) CreateLesson(lesson *model.InteractiveLesson) error {
	if _, err := s.CourseRepo.FindModuleByID(lesson.ModuleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrModuleNotFound
		}
		return err
	}

	lesson.Status = model.LessonDraft
	return s.LessonRepo.Create(lesson)
}

// PublishLesson makes a draft lesson available to learners. Publishing a
// lesson into a module shifts every enrolled user's denominator, so existing
// module progress recomputes on their next activity.
func (s *LessonService) PublishLesson(lessonID uint) (*model.InteractiveLesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.Status != model.LessonDraft {
		return nil, &util.InvalidStateError{Msg: "only draft lessons can be published"}
	}

	slideCount, err := s.LessonRepo.CountSlides(lessonID)
	if err != nil {
		return nil, err
	}
	if slideCount == 0 {
		return nil, &util.InvalidStateError{Msg: "lesson has no slides"}
	}

	now := time.Now().UTC()
	lesson.Status = model.LessonPublished
	lesson.PublishedAt = &now
	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	logger.Log.Info("Lesson published", zap.Uint("lessonId", lesson.ID))
	return lesson, nil
}

type lessonContext struct {
	Lesson     *model.InteractiveLesson
	Module     *model.CourseModule
	Enrollment *model.Enrollment
}

func (s *LessonService) resolveLesson(userID, lessonID uint) (*lessonContext, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.Status != model.LessonPublished {
		return nil, util.ErrLessonNotFound
	}

	module, err := s.CourseRepo.FindModuleByID(lesson.ModuleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, module.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	return &lessonContext{Lesson: lesson, Module: module, Enrollment: enrollment}, nil
}

// StartLesson opens the lesson for the user. First contact activates a
// pending enrollment, same as materials.
func (s *LessonService) StartLesson(userID, lessonID uint) (*model.UserLessonProgress, error) {
	lc, err := s.resolveLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}

	if lc.Enrollment.Status == model.EnrollmentPending {
		lc.Enrollment.Start()
		if err := s.EnrollmentRepo.Save(lc.Enrollment); err != nil {
			return nil, err
		}
	}

	progress, err := s.LessonRepo.FindOrCreateLessonProgress(userID, lessonID, lc.Enrollment.ID)
	if err != nil {
		return nil, err
	}

	progress.StartLesson()
	if err := s.LessonRepo.SaveLessonProgress(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// ViewSlide marks one slide seen and refreshes the viewing percentage.
func (s *LessonService) ViewSlide(userID, lessonID, slideID uint) (*model.UserSlideProgress, error) {
	lc, err := s.resolveLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}

	slide, err := s.LessonRepo.FindSlideByID(slideID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSlideNotFound
		}
		return nil, err
	}
	if slide.LessonID != lessonID {
		return nil, util.ErrSlideNotFound
	}

	progress, err := s.LessonRepo.FindLessonProgress(userID, lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "lesson progress", Hint: "Start the lesson first."}
		}
		return nil, err
	}

	var slideProgress *model.UserSlideProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.LessonRepo.WithTx(tx)
		slideProgress, err = repo.FindOrCreateSlideProgress(progress.ID, slideID)
		if err != nil {
			return err
		}

		slideProgress.MarkViewed()
		if err := repo.SaveSlideProgress(slideProgress); err != nil {
			return err
		}
		return s.refreshLessonProgress(repo, progress, lc.Lesson.ID)
	})
	if err != nil {
		return nil, err
	}
	return slideProgress, nil
}

// QuizSubmission is one inline quiz answer.
type QuizSubmission struct {
	AnswerID uint `json:"answerId" binding:"required"`
}

// QuizFeedback is what the learner sees after a submission. The correct
// answer and explanation stay hidden while retries remain.
type QuizFeedback struct {
	Correct           bool    `json:"correct"`
	Answered          bool    `json:"answered"`
	AttemptsUsed      int     `json:"attempts_used"`
	AttemptsRemaining int     `json:"attempts_remaining"`
	PointsEarned      float64 `json:"points_earned"`
	CorrectAnswerID   *uint   `json:"correctAnswerId,omitempty"`
	Explanation       string  `json:"explanation,omitempty"`
}

// SubmitQuizAnswer grades one inline quiz submission. A correct answer or
// the third miss makes the slide terminal; a terminal miss can be retried
// after the cooldown, which grants a fresh cycle of attempts.
func (s *LessonService) SubmitQuizAnswer(userID, lessonID, slideID uint, submission QuizSubmission) (*QuizFeedback, error) {
	if _, err := s.resolveLesson(userID, lessonID); err != nil {
		return nil, err
	}

	quiz, err := s.LessonRepo.FindQuizBySlide(slideID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "inline quiz"}
		}
		return nil, err
	}

	progress, err := s.LessonRepo.FindLessonProgress(userID, lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "lesson progress", Hint: "Start the lesson first."}
		}
		return nil, err
	}

	var selected *model.InlineQuizAnswer
	for i := range quiz.Answers {
		if quiz.Answers[i].ID == submission.AnswerID {
			selected = &quiz.Answers[i]
			break
		}
	}
	if selected == nil {
		return nil, &util.NotFoundError{Resource: "quiz answer option"}
	}

	now := time.Now().UTC()
	var slideProgress *model.UserSlideProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.LessonRepo.WithTx(tx)
		slideProgress, err = repo.FindOrCreateSlideProgress(progress.ID, slideID)
		if err != nil {
			return err
		}

		if slideProgress.QuizAnswered {
			if slideProgress.QuizCorrect {
				return &util.InvalidStateError{Msg: "quiz already answered correctly"}
			}
			// Exhausted cycle: a retry is allowed only after the cooldown.
			if slideProgress.AnsweredAt != nil {
				elapsed := now.Sub(*slideProgress.AnsweredAt)
				if elapsed < util.QuizRetryCooldown {
					remaining := int((util.QuizRetryCooldown - elapsed).Seconds()) + 1
					return &util.LimitExceededError{
						Msg:            fmt.Sprintf("maximum of %d attempts reached, retry after cooldown", util.MaxQuizAttempts),
						Limit:          util.MaxQuizAttempts,
						RetryInSeconds: remaining,
					}
				}
			}
			slideProgress.ResetQuizCycle()
			if err := repo.SaveSlideProgress(slideProgress); err != nil {
				return err
			}
		}

		// The guarded update is the authoritative attempt counter; a
		// submission racing past the checks above cannot double-spend a slot
		// or reopen a settled quiz.
		claimed, err := repo.ClaimQuizAttempt(slideProgress.ID, util.MaxQuizAttempts)
		if err != nil {
			return err
		}
		if !claimed {
			return &util.InvalidStateError{Msg: "quiz state changed under a concurrent submission, retry"}
		}
		slideProgress, err = repo.FindSlideProgress(progress.ID, slideID)
		if err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]uint{"answerId": submission.AnswerID})
		slideProgress.SettleQuizAttempt(string(payload), selected.IsCorrect, quiz.Points, util.MaxQuizAttempts)
		if err := repo.SaveSlideProgress(slideProgress); err != nil {
			return err
		}

		return s.refreshQuizScore(repo, progress)
	})
	if err != nil {
		return nil, err
	}

	feedback := &QuizFeedback{
		Correct:           selected.IsCorrect,
		Answered:          slideProgress.QuizAnswered,
		AttemptsUsed:      slideProgress.QuizAttempts,
		AttemptsRemaining: util.MaxQuizAttempts - slideProgress.QuizAttempts,
		PointsEarned:      slideProgress.PointsEarned,
	}
	if feedback.AttemptsRemaining < 0 {
		feedback.AttemptsRemaining = 0
	}

	// Reveal the answer only once the outcome is settled.
	if quiz.ShowFeedbackImmediately && slideProgress.QuizAnswered {
		for i := range quiz.Answers {
			if quiz.Answers[i].IsCorrect {
				id := quiz.Answers[i].ID
				feedback.CorrectAnswerID = &id
				break
			}
		}
		feedback.Explanation = quiz.Explanation
	}

	logger.Log.Debug("Inline quiz answered",
		zap.Uint("userId", userID),
		zap.Uint("slideId", slideID),
		zap.Bool("correct", selected.IsCorrect),
		zap.Int("attempts", slideProgress.QuizAttempts))
	return feedback, nil
}

// CompleteLesson closes the lesson once every slide is viewed and every
// inline quiz is settled, then cascades the module rollup.
func (s *LessonService) CompleteLesson(userID, lessonID uint) (*model.UserLessonProgress, error) {
	lc, err := s.resolveLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}

	lesson, err := s.LessonRepo.FindByIDWithSlides(lessonID)
	if err != nil {
		return nil, err
	}

	progress, err := s.LessonRepo.FindLessonProgress(userID, lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "lesson progress", Hint: "Start the lesson first."}
		}
		return nil, err
	}

	slideProgresses, err := s.LessonRepo.FindSlideProgressByLessonProgress(progress.ID)
	if err != nil {
		return nil, err
	}
	bySlide := make(map[uint]*model.UserSlideProgress, len(slideProgresses))
	for i := range slideProgresses {
		bySlide[slideProgresses[i].SlideID] = &slideProgresses[i]
	}

	for _, slide := range lesson.Slides {
		sp := bySlide[slide.ID]
		if sp == nil || !sp.Viewed {
			return nil, &util.InvalidStateError{Msg: "all slides must be viewed before completing the lesson"}
		}
		if slide.InlineQuiz != nil && !sp.QuizAnswered {
			return nil, &util.InvalidStateError{Msg: "all quizzes must be answered before completing the lesson"}
		}
	}

	// Lesson close, module rollup and enrollment aggregate commit as one
	// unit: a failed rollup never leaves the lesson completed.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progress.CompleteLesson()
		progress.ProgressPercentage = 100
		if err := s.LessonRepo.WithTx(tx).SaveLessonProgress(progress); err != nil {
			return err
		}

		if err := s.ProgressService.syncModuleProgress(tx, userID, lc.Module.ID, lc.Enrollment.ID); err != nil {
			return err
		}
		return s.ProgressService.CompletionService.SyncEnrollmentTx(tx, lc.Enrollment)
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// refreshLessonProgress recomputes the viewed percentage from slide counts.
func (s *LessonService) refreshLessonProgress(repo *repository.LessonRepository, progress *model.UserLessonProgress, lessonID uint) error {
	total, err := repo.CountSlides(lessonID)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	slideProgresses, err := repo.FindSlideProgressByLessonProgress(progress.ID)
	if err != nil {
		return err
	}
	var viewed int64
	for _, sp := range slideProgresses {
		if sp.Viewed {
			viewed++
		}
	}

	pct := float64(viewed) / float64(total) * 100
	if progress.Status == model.LessonProgressCompleted && pct < 100 {
		// Completed passes never regress from late viewing recounts.
		return nil
	}
	progress.ProgressPercentage = pct
	return repo.SaveLessonProgress(progress)
}

// refreshQuizScore re-sums earned points across the lesson's quiz slides.
func (s *LessonService) refreshQuizScore(repo *repository.LessonRepository, progress *model.UserLessonProgress) error {
	lesson, err := repo.FindByIDWithSlides(progress.LessonID)
	if err != nil {
		return err
	}

	slideProgresses, err := repo.FindSlideProgressByLessonProgress(progress.ID)
	if err != nil {
		return err
	}
	earnedBySlide := make(map[uint]float64, len(slideProgresses))
	for _, sp := range slideProgresses {
		earnedBySlide[sp.SlideID] = sp.PointsEarned
	}

	var total, earned float64
	for _, slide := range lesson.Slides {
		if slide.InlineQuiz == nil {
			continue
		}
		total += slide.InlineQuiz.Points
		earned += earnedBySlide[slide.ID]
	}

	progress.QuizTotalPoints = total
	progress.QuizEarnedPoints = earned
	progress.CalculateQuizScore()
	return repo.SaveLessonProgress(progress)
}

// GetLessonForTaking returns the published lesson with slides and quizzes;
// correct flags stay hidden at the model layer.
func (s *LessonService) GetLessonForTaking(userID, lessonID uint) (*model.InteractiveLesson, error) {
	if _, err := s.resolveLesson(userID, lessonID); err != nil {
		return nil, err
	}
	return s.LessonRepo.FindByIDWithSlides(lessonID)
}
