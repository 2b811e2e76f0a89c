package service

import (
	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService drives the enrollment lifecycle. Completion itself is
// delegated to the completion service; this layer handles enroll, start,
// cancel, suspend and resume.
type EnrollmentService struct {
	CourseRepo        *repository.CourseRepository
	EnrollmentRepo    *repository.EnrollmentRepository
	WorkerRepo        *repository.WorkerRepository
	ReinductionRepo   *repository.ReinductionRepository
	CompletionService *CompletionService
	DB                *gorm.DB
}

func NewEnrollmentService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	workerRepo *repository.WorkerRepository,
	reinductionRepo *repository.ReinductionRepository,
	completionService *CompletionService,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		CourseRepo:        courseRepo,
		EnrollmentRepo:    enrollmentRepo,
		WorkerRepo:        workerRepo,
		ReinductionRepo:   reinductionRepo,
		CompletionService: completionService,
		DB:                db,
	}
}

// Enroll creates a pending enrollment in a published course. Enrolling in a
// reinduction course also books the worker's yearly reinduction record when
// the user is linked to a worker.
func (s *EnrollmentService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.Status != model.CoursePublished {
		return nil, &util.InvalidStateError{Msg: "course is not open for enrollment"}
	}

	if existing, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		if existing.Status == model.EnrollmentCancelled {
			// Re-enrolling after a cancellation revives the record.
			existing.Status = model.EnrollmentPending
			existing.EnrolledAt = time.Now().UTC()
			if err := s.EnrollmentRepo.Save(existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		return nil, &util.InvalidStateError{Msg: "already enrolled in this course"}
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     model.EnrollmentPending,
		EnrolledAt: time.Now().UTC(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		if course.CourseType == model.CourseReinduction {
			return s.bookReinduction(tx, userID, enrollment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("User enrolled",
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID))
	return enrollment, nil
}

// bookReinduction links the enrollment to the worker's record for the
// current year, creating it when missing. Users without a worker record
// enroll normally with no reinduction tracking.
func (s *EnrollmentService) bookReinduction(tx *gorm.DB, userID uint, enrollment *model.Enrollment) error {
	var worker model.Worker
	if err := tx.Where("user_id = ?", userID).First(&worker).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	year := time.Now().UTC().Year()
	var record model.ReinductionRecord
	err := tx.Where("worker_id = ? AND year = ?", worker.ID, year).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		record = model.ReinductionRecord{
			WorkerID:     worker.ID,
			Year:         year,
			EnrollmentID: &enrollment.ID,
			Status:       model.ReinductionScheduled,
			DueDate:      time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC),
		}
		return tx.Create(&record).Error
	}
	if err != nil {
		return err
	}
	if record.EnrollmentID == nil {
		record.EnrollmentID = &enrollment.ID
		return tx.Save(&record).Error
	}
	return nil
}

func (s *EnrollmentService) GetByID(id uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.FindByUser(userID)
}

func (s *EnrollmentService) ListByCourse(courseID uint, page, limit int) ([]model.Enrollment, int64, error) {
	return s.EnrollmentRepo.FindByCourse(courseID, page, limit)
}

// Start explicitly activates a pending enrollment. Usually activation
// happens implicitly on first material contact; this is the manual path.
func (s *EnrollmentService) Start(userID, enrollmentID uint) (*model.Enrollment, error) {
	enrollment, err := s.ownedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != model.EnrollmentPending {
		return nil, &util.InvalidStateError{Msg: "enrollment is not pending"}
	}

	enrollment.Start()
	if err := s.EnrollmentRepo.Save(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) Cancel(userID, enrollmentID uint, reason string) (*model.Enrollment, error) {
	enrollment, err := s.ownedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.IsCompleted() {
		return nil, &util.InvalidStateError{Msg: "completed enrollment cannot be cancelled"}
	}

	enrollment.Cancel(reason)
	if err := s.EnrollmentRepo.Save(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Suspend is a staff action: it freezes the enrollment without discarding
// accumulated progress.
func (s *EnrollmentService) Suspend(enrollmentID uint, reason string) (*model.Enrollment, error) {
	enrollment, err := s.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != model.EnrollmentActive && enrollment.Status != model.EnrollmentPending {
		return nil, &util.InvalidStateError{Msg: "only pending or active enrollments can be suspended"}
	}

	enrollment.Suspend(reason)
	if err := s.EnrollmentRepo.Save(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) Resume(enrollmentID uint) (*model.Enrollment, error) {
	enrollment, err := s.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != model.EnrollmentSuspended {
		return nil, &util.InvalidStateError{Msg: "enrollment is not suspended"}
	}

	enrollment.Resume()
	if err := s.EnrollmentRepo.Save(enrollment); err != nil {
		return nil, err
	}

	// Progress may have drifted while suspended (e.g. requirements satisfied
	// through another course's shared survey); resync on resume.
	if err := s.CompletionService.SyncEnrollment(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// MarkCompleted is the staff override for attendance-style courses. Induction
// and reinduction completions must be earned through the requirement gate, so
// only training and optional courses accept it.
func (s *EnrollmentService) MarkCompleted(enrollmentID uint, grade *float64) (*model.Enrollment, error) {
	enrollment, err := s.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.IsCompleted() {
		return nil, &util.InvalidStateError{Msg: "enrollment is already completed"}
	}
	if enrollment.Status == model.EnrollmentCancelled {
		return nil, &util.InvalidStateError{Msg: "cancelled enrollment cannot be completed"}
	}

	course, err := s.CourseRepo.FindByID(enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	if course.CourseType != model.CourseTraining && course.CourseType != model.CourseOptional {
		return nil, &util.InvalidStateError{Msg: "induction courses cannot be completed manually"}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		enrollment.Start()
		enrollment.Complete(grade)
		return tx.Save(enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Enrollment completed manually",
		zap.Uint("enrollmentId", enrollment.ID),
		zap.Uint("courseId", enrollment.CourseID))
	return enrollment, nil
}

func (s *EnrollmentService) ownedEnrollment(userID, enrollmentID uint) (*model.Enrollment, error) {
	enrollment, err := s.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return enrollment, nil
}
