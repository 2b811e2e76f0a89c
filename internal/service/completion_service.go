package service

import (
	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"
	"sst_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompletionService owns the course-level aggregation and the requirement
// gate. Enrollments flip to completed only through here.
type CompletionService struct {
	CourseRepo      *repository.CourseRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	ProgressRepo    *repository.ProgressRepository
	SurveyRepo      *repository.SurveyRepository
	EvaluationRepo  *repository.EvaluationRepository
	ReinductionRepo *repository.ReinductionRepository
	DB              *gorm.DB
}

func NewCompletionService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	surveyRepo *repository.SurveyRepository,
	evaluationRepo *repository.EvaluationRepository,
	reinductionRepo *repository.ReinductionRepository,
	db *gorm.DB,
) *CompletionService {
	return &CompletionService{
		CourseRepo:      courseRepo,
		EnrollmentRepo:  enrollmentRepo,
		ProgressRepo:    progressRepo,
		SurveyRepo:      surveyRepo,
		EvaluationRepo:  evaluationRepo,
		ReinductionRepo: reinductionRepo,
		DB:              db,
	}
}

// RequirementStatus is the gate verdict for one enrollment.
type RequirementStatus struct {
	ContentProgress    float64  `json:"content_progress"`
	Eligible           bool     `json:"eligible"`
	RequirementsMet    bool     `json:"requirements_met"`
	PendingSurveys     []string `json:"pending_surveys"`
	PendingEvaluations []string `json:"pending_evaluations"`
}

// CourseContentProgress is the mean of the module percentages across every
// module of the course. Modules the user never touched weigh in at zero.
func (s *CompletionService) CourseContentProgress(userID, courseID uint) (float64, error) {
	return s.courseContentProgress(s.DB, userID, courseID)
}

func (s *CompletionService) courseContentProgress(db *gorm.DB, userID, courseID uint) (float64, error) {
	modules, err := s.CourseRepo.WithTx(db).FindModulesByCourse(courseID)
	if err != nil {
		return 0, err
	}
	if len(modules) == 0 {
		return 0, nil
	}

	progressRepo := s.ProgressRepo.WithTx(db)
	var sum float64
	for _, m := range modules {
		mp, err := progressRepo.FindModuleProgress(userID, m.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return 0, err
		}
		sum += mp.ProgressPercentage
	}
	return sum / float64(len(modules)), nil
}

// EvaluateRequirements runs the gate. Below the eligibility threshold the
// survey and evaluation checks are skipped entirely; their pending lists stay
// empty because the user is not close enough to completion for them to
// matter yet.
func (s *CompletionService) EvaluateRequirements(userID, courseID uint) (*RequirementStatus, error) {
	return s.evaluateRequirements(s.DB, userID, courseID)
}

func (s *CompletionService) evaluateRequirements(db *gorm.DB, userID, courseID uint) (*RequirementStatus, error) {
	progress, err := s.courseContentProgress(db, userID, courseID)
	if err != nil {
		return nil, err
	}

	status := &RequirementStatus{ContentProgress: progress}
	if progress < util.CompletionEligibilityThreshold {
		return status, nil
	}
	status.Eligible = true

	surveyRepo := s.SurveyRepo.WithTx(db)
	surveys, err := surveyRepo.FindRequiredPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}
	for _, sv := range surveys {
		us, err := surveyRepo.FindUserSurvey(userID, sv.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				status.PendingSurveys = append(status.PendingSurveys, sv.Title)
				continue
			}
			return nil, err
		}
		if us.Status != model.UserSurveyCompleted {
			status.PendingSurveys = append(status.PendingSurveys, sv.Title)
		}
	}

	evaluationRepo := s.EvaluationRepo.WithTx(db)
	evaluations, err := evaluationRepo.FindPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}
	for _, ev := range evaluations {
		passed, err := evaluationRepo.HasPassed(userID, ev.ID)
		if err != nil {
			return nil, err
		}
		if !passed {
			status.PendingEvaluations = append(status.PendingEvaluations, ev.Title)
		}
	}

	status.RequirementsMet = len(status.PendingSurveys) == 0 && len(status.PendingEvaluations) == 0
	return status, nil
}

// EvaluationSummary is the lenient per-course evaluation digest shown on the
// progress overview: completed means every published evaluation has a
// finished attempt, regardless of the score.
type EvaluationSummary struct {
	Completed bool     `json:"completed"`
	Score     *float64 `json:"score"`
}

// EvaluationStanding reports the overview digest, or nil when the course has
// no published evaluations.
func (s *CompletionService) EvaluationStanding(userID, courseID uint) (*EvaluationSummary, error) {
	evaluations, err := s.EvaluationRepo.FindPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if len(evaluations) == 0 {
		return nil, nil
	}

	summary := &EvaluationSummary{Completed: true}
	for _, ev := range evaluations {
		done, err := s.EvaluationRepo.HasCompleted(userID, ev.ID)
		if err != nil {
			return nil, err
		}
		if !done {
			summary.Completed = false
		}
	}

	score, err := s.courseGrade(s.DB, userID, courseID)
	if err != nil {
		return nil, err
	}
	summary.Score = score
	return summary, nil
}

// SyncEnrollment recomputes the aggregate, applies the pending-requirements
// cap, persists the change when it clears the write epsilon, and completes
// the enrollment once full content progress meets a satisfied gate. The whole
// recompute commits as one unit.
func (s *CompletionService) SyncEnrollment(enrollment *model.Enrollment) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.SyncEnrollmentTx(tx, enrollment)
	})
}

// SyncEnrollmentTx is SyncEnrollment inside a caller-owned transaction, so
// material and lesson cascades commit atomically with their trigger.
func (s *CompletionService) SyncEnrollmentTx(tx *gorm.DB, enrollment *model.Enrollment) error {
	if enrollment.Status == model.EnrollmentCancelled || enrollment.Status == model.EnrollmentSuspended {
		return nil
	}

	status, err := s.evaluateRequirements(tx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return err
	}

	if status.ContentProgress >= util.FullContentProgress && status.RequirementsMet {
		return s.complete(tx, enrollment)
	}

	target := status.ContentProgress
	if target >= util.FullContentProgress && !status.RequirementsMet {
		// Full content but unmet requirements never shows 100%.
		target = util.CappedProgressWithPending
	}
	return s.EnrollmentRepo.WithTx(tx).SaveProgressIfChanged(enrollment, target)
}

func (s *CompletionService) complete(tx *gorm.DB, enrollment *model.Enrollment) error {
	if enrollment.IsCompleted() {
		return nil
	}

	grade, err := s.courseGrade(tx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return err
	}

	enrollment.Complete(grade)
	if err := tx.Save(enrollment).Error; err != nil {
		return err
	}
	if err := s.advanceReinduction(tx, enrollment); err != nil {
		return err
	}

	monitoring.EnrollmentCompletions.Inc()
	logger.Log.Info("Enrollment completed",
		zap.Uint("enrollmentId", enrollment.ID),
		zap.Uint("userId", enrollment.UserID),
		zap.Uint("courseId", enrollment.CourseID))
	return nil
}

// courseGrade averages the best-attempt percentages across the course's
// published evaluations. Courses without evaluations complete ungraded.
func (s *CompletionService) courseGrade(db *gorm.DB, userID, courseID uint) (*float64, error) {
	evaluationRepo := s.EvaluationRepo.WithTx(db)
	evaluations, err := evaluationRepo.FindPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if len(evaluations) == 0 {
		return nil, nil
	}

	var sum float64
	var n int
	for _, ev := range evaluations {
		attempts, err := evaluationRepo.FindCompletedAttempts(userID, ev.ID)
		if err != nil {
			return nil, err
		}
		if len(attempts) == 0 {
			continue
		}
		sum += attempts[0].Percentage
		n++
	}
	if n == 0 {
		return nil, nil
	}
	grade := sum / float64(n)
	return &grade, nil
}

// advanceReinduction closes out the yearly reinduction obligation linked to
// this enrollment, if any.
func (s *CompletionService) advanceReinduction(tx *gorm.DB, enrollment *model.Enrollment) error {
	var record model.ReinductionRecord
	err := tx.Where("enrollment_id = ?", enrollment.ID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if record.Status == model.ReinductionCompleted {
		return nil
	}

	now := time.Now().UTC()
	record.Status = model.ReinductionCompleted
	record.CompletedAt = &now
	return tx.Save(&record).Error
}
