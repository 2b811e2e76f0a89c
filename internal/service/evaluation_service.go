package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EvaluationService runs the attempt lifecycle: ceiling-checked starts,
// idempotent resume, lazy expiry, exact-set scoring and best-attempt
// election.
type EvaluationService struct {
	CourseRepo         *repository.CourseRepository
	EnrollmentRepo     *repository.EnrollmentRepository
	EvaluationRepo     *repository.EvaluationRepository
	CompletionService  *CompletionService
	CertificateService *CertificateService
	DB                 *gorm.DB
}

func NewEvaluationService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	evaluationRepo *repository.EvaluationRepository,
	completionService *CompletionService,
	certificateService *CertificateService,
	db *gorm.DB,
) *EvaluationService {
	return &EvaluationService{
		CourseRepo:         courseRepo,
		EnrollmentRepo:     enrollmentRepo,
		EvaluationRepo:     evaluationRepo,
		CompletionService:  completionService,
		CertificateService: certificateService,
		DB:                 db,
	}
}

// GetForTaking returns the published evaluation with questions and options.
// Correct-answer flags never serialize; the model hides them.
func (s *EvaluationService) GetForTaking(userID, evaluationID uint) (*model.Evaluation, error) {
	evaluation, err := s.EvaluationRepo.FindByIDWithQuestions(evaluationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEvaluationNotFound
		}
		return nil, err
	}
	if evaluation.Status != model.EvaluationPublished {
		return nil, util.ErrEvaluationNotFound
	}
	if _, err := s.requireEnrollment(userID, evaluation.CourseID); err != nil {
		return nil, err
	}
	return evaluation, nil
}

// StartAttempt opens a new attempt or resumes the live one. An in-progress
// attempt past its deadline is flipped to expired on sight and still counts
// against the ceiling.
func (s *EvaluationService) StartAttempt(userID, evaluationID uint) (*model.UserEvaluation, error) {
	evaluation, err := s.EvaluationRepo.FindByID(evaluationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEvaluationNotFound
		}
		return nil, err
	}
	if evaluation.Status != model.EvaluationPublished {
		return nil, &util.InvalidStateError{Msg: "evaluation is not published"}
	}

	enrollment, err := s.requireEnrollment(userID, evaluation.CourseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if current, err := s.EvaluationRepo.FindInProgressAttempt(userID, evaluationID); err == nil {
		if !current.IsExpired(now) {
			return current, nil
		}
		current.Status = model.UserEvaluationExpired
		if err := s.EvaluationRepo.SaveAttempt(current); err != nil {
			return nil, err
		}
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var attempt *model.UserEvaluation
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EvaluationRepo.WithTx(tx)
		count, err := repo.CountAttempts(userID, evaluationID)
		if err != nil {
			return err
		}
		if int(count) >= evaluation.MaxAttempts {
			return &util.LimitExceededError{
				Msg:   fmt.Sprintf("maximum of %d attempts reached", evaluation.MaxAttempts),
				Limit: evaluation.MaxAttempts,
			}
		}

		attempt = &model.UserEvaluation{
			UserID:        userID,
			EvaluationID:  evaluationID,
			EnrollmentID:  &enrollment.ID,
			AttemptNumber: int(count) + 1,
			Status:        model.UserEvaluationInProgress,
			StartedAt:     &now,
		}
		if evaluation.TimeLimitMinutes > 0 {
			deadline := now.Add(time.Duration(evaluation.TimeLimitMinutes) * time.Minute)
			attempt.ExpiresAt = &deadline
		}
		// The count above is a snapshot read; the unique attempt slot is what
		// actually arbitrates concurrent starts.
		return repo.CreateAttempt(attempt)
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, &util.InvalidStateError{Msg: "another attempt was started concurrently, retry"}
		}
		return nil, err
	}

	logger.Log.Info("Evaluation attempt started",
		zap.Uint("userId", userID),
		zap.Uint("evaluationId", evaluationID),
		zap.Int("attemptNumber", attempt.AttemptNumber))
	return attempt, nil
}

// AnswerSubmission is one submitted answer.
type AnswerSubmission struct {
	QuestionID        uint   `json:"questionId" binding:"required"`
	SelectedAnswerIDs []uint `json:"selectedAnswerIds"`
	AnswerText        string `json:"answerText"`
}

// AttemptResult is returned after grading.
type AttemptResult struct {
	Attempt    *model.UserEvaluation `json:"attempt"`
	Score      float64               `json:"score"`
	MaxPoints  float64               `json:"max_points"`
	Percentage float64               `json:"percentage"`
	Passed     bool                  `json:"passed"`
}

// SubmitAttempt grades the attempt. Choice questions score all-or-nothing on
// the exact set of correct options; free-text questions are excluded from
// the automatic score. The best-attempt flag is re-elected atomically with
// the grade write.
func (s *EvaluationService) SubmitAttempt(userID, attemptID uint, answers []AnswerSubmission) (*AttemptResult, error) {
	attempt, err := s.EvaluationRepo.FindAttemptByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "evaluation attempt"}
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.UserEvaluationInProgress {
		return nil, &util.InvalidStateError{Msg: "attempt is not in progress"}
	}

	now := time.Now().UTC()
	if attempt.IsExpired(now) {
		attempt.Status = model.UserEvaluationExpired
		if err := s.EvaluationRepo.SaveAttempt(attempt); err != nil {
			return nil, err
		}
		return nil, &util.ExpiredError{Msg: "attempt time limit exceeded"}
	}

	evaluation, err := s.EvaluationRepo.FindByIDWithQuestions(attempt.EvaluationID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]AnswerSubmission, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	var score, maxPoints float64
	userAnswers := make([]model.UserAnswer, 0, len(evaluation.Questions))
	for _, q := range evaluation.Questions {
		if q.QuestionType == model.QuestionShortAnswer {
			// Free text needs human grading; keep the response, skip the score.
			if sub, ok := byQuestion[q.ID]; ok {
				userAnswers = append(userAnswers, model.UserAnswer{
					UserEvaluationID: attempt.ID,
					QuestionID:       q.ID,
					AnswerText:       sub.AnswerText,
				})
			}
			continue
		}

		maxPoints += q.Points
		sub, ok := byQuestion[q.ID]
		correct := ok && exactAnswerMatch(q.Answers, sub.SelectedAnswerIDs)

		ua := model.UserAnswer{
			UserEvaluationID:  attempt.ID,
			QuestionID:        q.ID,
			SelectedAnswerIDs: joinIDs(sub.SelectedAnswerIDs),
			IsCorrect:         correct,
		}
		if correct {
			ua.PointsEarned = q.Points
			score += q.Points
		}
		userAnswers = append(userAnswers, ua)
	}

	percentage := 0.0
	if maxPoints > 0 {
		percentage = score / maxPoints * 100
	}
	passed := percentage >= evaluation.PassingScore

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EvaluationRepo.WithTx(tx)
		for i := range userAnswers {
			if err := repo.CreateUserAnswer(&userAnswers[i]); err != nil {
				return err
			}
		}

		attempt.Status = model.UserEvaluationCompleted
		attempt.Score = score
		attempt.MaxPoints = maxPoints
		attempt.Percentage = percentage
		attempt.Passed = passed
		attempt.CompletedAt = &now
		if attempt.StartedAt != nil {
			attempt.TimeSpentMinutes = int(now.Sub(*attempt.StartedAt).Minutes())
		}
		if err := repo.SaveAttempt(attempt); err != nil {
			return err
		}
		return s.electBestAttempt(repo, userID, attempt.EvaluationID)
	})
	if err != nil {
		return nil, err
	}

	// Side effects ride outside the grading transaction: a failure here must
	// never lose the recorded score.
	if passed {
		if err := s.CertificateService.IssueForEvaluation(userID, evaluation, attempt); err != nil {
			logger.Log.Warn("Certificate issuance failed",
				zap.Uint("userId", userID),
				zap.Uint("evaluationId", evaluation.ID),
				zap.Error(err))
		}
	}
	if attempt.EnrollmentID != nil {
		if enrollment, err := s.EnrollmentRepo.FindByID(*attempt.EnrollmentID); err == nil {
			if err := s.CompletionService.SyncEnrollment(enrollment); err != nil {
				logger.Log.Warn("Enrollment sync after evaluation failed",
					zap.Uint("enrollmentId", enrollment.ID),
					zap.Error(err))
			}
		}
	}

	return &AttemptResult{
		Attempt:    attempt,
		Score:      score,
		MaxPoints:  maxPoints,
		Percentage: percentage,
		Passed:     passed,
	}, nil
}

// electBestAttempt flags the completed attempt with the highest percentage;
// ties go to the earliest attempt. The repo must be bound to the grading
// transaction so the flag moves atomically with the new grade.
func (s *EvaluationService) electBestAttempt(repo *repository.EvaluationRepository, userID, evaluationID uint) error {
	if err := repo.ClearBestAttempt(userID, evaluationID); err != nil {
		return err
	}

	attempts, err := repo.FindCompletedAttempts(userID, evaluationID)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return nil
	}

	return repo.DB.Model(&model.UserEvaluation{}).
		Where("id = ?", attempts[0].ID).
		Update("is_best_attempt", true).Error
}

// GetAttempts lists the user's attempts, lazily expiring any in-progress
// attempt whose deadline has passed.
func (s *EvaluationService) GetAttempts(userID, evaluationID uint) ([]model.UserEvaluation, error) {
	attempts, err := s.EvaluationRepo.FindAttempts(userID, evaluationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range attempts {
		a := &attempts[i]
		if a.Status == model.UserEvaluationInProgress && a.IsExpired(now) {
			a.Status = model.UserEvaluationExpired
			if err := s.EvaluationRepo.SaveAttempt(a); err != nil {
				return nil, err
			}
		}
	}
	return attempts, nil
}

// AttemptReview pairs a finished attempt with the answers it recorded.
type AttemptReview struct {
	Attempt *model.UserEvaluation `json:"attempt"`
	Answers []model.UserAnswer    `json:"answers"`
}

// GetAttemptReview returns one of the user's own finished attempts with its
// stored answers. In-progress attempts cannot be reviewed.
func (s *EvaluationService) GetAttemptReview(userID, attemptID uint) (*AttemptReview, error) {
	attempt, err := s.EvaluationRepo.FindAttemptByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "evaluation attempt"}
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status == model.UserEvaluationInProgress {
		return nil, &util.InvalidStateError{Msg: "attempt is still in progress"}
	}

	answers, err := s.EvaluationRepo.FindUserAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}
	return &AttemptReview{Attempt: attempt, Answers: answers}, nil
}

// GetResults pages through every user's attempts at one evaluation. Staff
// view; learner-facing listings go through GetAttempts.
func (s *EvaluationService) GetResults(evaluationID uint, page, limit int) ([]model.UserEvaluation, int64, error) {
	if _, err := s.EvaluationRepo.FindByID(evaluationID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, util.ErrEvaluationNotFound
		}
		return nil, 0, err
	}
	return s.EvaluationRepo.FindAttemptsByEvaluation(evaluationID, page, limit)
}

func (s *EvaluationService) requireEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

// exactAnswerMatch compares the selected set against the correct set.
// Partial selections, extras and empty submissions all miss.
func exactAnswerMatch(options []model.Answer, selected []uint) bool {
	var correct []uint
	for _, opt := range options {
		if opt.IsCorrect {
			correct = append(correct, opt.ID)
		}
	}
	if len(correct) == 0 || len(correct) != len(selected) {
		return false
	}

	a := append([]uint(nil), correct...)
	b := append([]uint(nil), selected...)
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}
