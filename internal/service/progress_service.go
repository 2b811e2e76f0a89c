package service

import (
	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService tracks per-material progress and rolls it up through the
// module layer into the enrollment aggregate.
type ProgressService struct {
	CourseRepo        *repository.CourseRepository
	EnrollmentRepo    *repository.EnrollmentRepository
	ProgressRepo      *repository.ProgressRepository
	LessonRepo        *repository.LessonRepository
	CompletionService *CompletionService
	DB                *gorm.DB
}

func NewProgressService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	lessonRepo *repository.LessonRepository,
	completionService *CompletionService,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		CourseRepo:        courseRepo,
		EnrollmentRepo:    enrollmentRepo,
		ProgressRepo:      progressRepo,
		LessonRepo:        lessonRepo,
		CompletionService: completionService,
		DB:                db,
	}
}

type materialContext struct {
	Material   *model.CourseMaterial
	Module     *model.CourseModule
	Enrollment *model.Enrollment
}

// resolveMaterial walks material -> module -> course and checks the user is
// enrolled. Starting material work on a pending enrollment activates it.
func (s *ProgressService) resolveMaterial(userID, materialID uint) (*materialContext, error) {
	material, err := s.CourseRepo.FindMaterialByID(materialID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrMaterialNotFound
		}
		return nil, err
	}

	module, err := s.CourseRepo.FindModuleByID(material.ModuleID)
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

	return &materialContext{Material: material, Module: module, Enrollment: enrollment}, nil
}

// StartMaterial opens (or re-opens) a material for the user. First contact
// with any material activates a pending enrollment.
func (s *ProgressService) StartMaterial(userID, materialID uint) (*model.UserMaterialProgress, error) {
	mc, err := s.resolveMaterial(userID, materialID)
	if err != nil {
		return nil, err
	}

	if mc.Enrollment.Status == model.EnrollmentPending {
		mc.Enrollment.Start()
		if err := s.EnrollmentRepo.Save(mc.Enrollment); err != nil {
			return nil, err
		}
	}

	progress, err := s.ProgressRepo.FindOrCreateMaterialProgress(userID, materialID, mc.Enrollment.ID)
	if err != nil {
		return nil, err
	}

	progress.StartMaterial()
	if err := s.ProgressRepo.SaveMaterialProgress(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateMaterialProgress records a partial progress ping. Crossing 100%
// completes the material and cascades the rollup; the material write and the
// cascade commit together.
func (s *ProgressService) UpdateMaterialProgress(userID, materialID uint, percentage float64, position, timeSpent *int) (*model.UserMaterialProgress, error) {
	mc, err := s.resolveMaterial(userID, materialID)
	if err != nil {
		return nil, err
	}

	var progress *model.UserMaterialProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		progress, err = progressRepo.FindOrCreateMaterialProgress(userID, materialID, mc.Enrollment.ID)
		if err != nil {
			return err
		}

		wasCompleted := progress.Status == model.ProgressCompleted
		progress.UpdateProgress(percentage, position, timeSpent)
		if err := progressRepo.SaveMaterialProgress(progress); err != nil {
			return err
		}

		if progress.Status == model.ProgressCompleted && !wasCompleted {
			return s.cascade(tx, userID, mc.Module, mc.Enrollment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// CompleteMaterial forces the material to done and cascades the rollup, all
// in one transaction: a failed rollup never leaves the material completed.
func (s *ProgressService) CompleteMaterial(userID, materialID uint) (*model.UserMaterialProgress, error) {
	mc, err := s.resolveMaterial(userID, materialID)
	if err != nil {
		return nil, err
	}

	var progress *model.UserMaterialProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if mc.Enrollment.Status == model.EnrollmentPending {
			mc.Enrollment.Start()
			if err := s.EnrollmentRepo.WithTx(tx).Save(mc.Enrollment); err != nil {
				return err
			}
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		progress, err = progressRepo.FindOrCreateMaterialProgress(userID, materialID, mc.Enrollment.ID)
		if err != nil {
			return err
		}

		wasCompleted := progress.Status == model.ProgressCompleted
		progress.CompleteMaterial()
		if err := progressRepo.SaveMaterialProgress(progress); err != nil {
			return err
		}

		if !wasCompleted {
			return s.cascade(tx, userID, mc.Module, mc.Enrollment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ResetMaterialProgress wipes one material record. Administrative; the
// rollup is recomputed so module and enrollment aggregates move back down.
func (s *ProgressService) ResetMaterialProgress(userID, materialID uint) error {
	mc, err := s.resolveMaterial(userID, materialID)
	if err != nil {
		return err
	}

	progress, err := s.ProgressRepo.FindMaterialProgress(userID, materialID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &util.NotFoundError{Resource: "material progress"}
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		progress.Reset()
		if err := s.ProgressRepo.WithTx(tx).SaveMaterialProgress(progress); err != nil {
			return err
		}
		return s.cascade(tx, userID, mc.Module, mc.Enrollment)
	})
}

// cascade recomputes the module rollup and then the enrollment aggregate
// inside the caller's transaction.
func (s *ProgressService) cascade(tx *gorm.DB, userID uint, module *model.CourseModule, enrollment *model.Enrollment) error {
	if err := s.syncModuleProgress(tx, userID, module.ID, enrollment.ID); err != nil {
		return err
	}
	return s.CompletionService.SyncEnrollmentTx(tx, enrollment)
}

// SyncModuleProgress re-counts the module's completable items: its materials
// plus its published interactive lessons. Draft lessons never count.
func (s *ProgressService) SyncModuleProgress(userID, moduleID, enrollmentID uint) error {
	return s.syncModuleProgress(s.DB, userID, moduleID, enrollmentID)
}

func (s *ProgressService) syncModuleProgress(db *gorm.DB, userID, moduleID, enrollmentID uint) error {
	materials, err := s.CourseRepo.WithTx(db).FindMaterialsByModule(moduleID)
	if err != nil {
		return err
	}
	lessonRepo := s.LessonRepo.WithTx(db)
	lessons, err := lessonRepo.FindPublishedByModule(moduleID)
	if err != nil {
		return err
	}

	materialIDs := make([]uint, 0, len(materials))
	for _, m := range materials {
		materialIDs = append(materialIDs, m.ID)
	}
	lessonIDs := make([]uint, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}

	progressRepo := s.ProgressRepo.WithTx(db)
	completedMaterials, err := progressRepo.CountCompletedMaterials(userID, materialIDs)
	if err != nil {
		return err
	}
	completedLessons, err := lessonRepo.CountCompletedLessons(userID, lessonIDs)
	if err != nil {
		return err
	}

	mp, err := progressRepo.FindOrCreateModuleProgress(userID, moduleID, enrollmentID)
	if err != nil {
		return err
	}

	mp.TotalMaterials = len(materials) + len(lessons)
	mp.MaterialsCompleted = int(completedMaterials + completedLessons)
	mp.CalculateProgress()

	if err := progressRepo.SaveModuleProgress(mp); err != nil {
		return err
	}

	logger.Log.Debug("Module progress synced",
		zap.Uint("userId", userID),
		zap.Uint("moduleId", moduleID),
		zap.Float64("percentage", mp.ProgressPercentage))
	return nil
}

// ModuleProgressDetail is one row of the per-course progress overview.
type ModuleProgressDetail struct {
	ModuleID           uint    `json:"moduleId"`
	Title              string  `json:"title"`
	ProgressPercentage float64 `json:"progress_percentage"`
	ItemsCompleted     int     `json:"items_completed"`
	TotalItems         int     `json:"total_items"`
	Status             string  `json:"status"`
}

// CourseProgressOverview is the user-facing rollup of one enrollment.
type CourseProgressOverview struct {
	Enrollment      *model.Enrollment      `json:"enrollment"`
	Modules         []ModuleProgressDetail `json:"modules"`
	ContentProgress float64                `json:"content_progress"`
	Requirements    *RequirementStatus     `json:"requirements"`
	// Nil when the course has no published evaluations.
	Evaluation *EvaluationSummary `json:"evaluation,omitempty"`
}

// GetUserProgress rolls every non-cancelled enrollment of the user into the
// same per-course overview the single-course endpoint returns.
func (s *ProgressService) GetUserProgress(userID uint) ([]CourseProgressOverview, error) {
	enrollments, err := s.EnrollmentRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	overviews := make([]CourseProgressOverview, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.Status == model.EnrollmentCancelled {
			continue
		}
		overview, err := s.GetCourseProgress(userID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, *overview)
	}
	return overviews, nil
}

// GetCourseProgress assembles the module breakdown plus the current gate
// verdict for one user and course.
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*CourseProgressOverview, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	modules, err := s.CourseRepo.FindModulesByCourse(courseID)
	if err != nil {
		return nil, err
	}

	details := make([]ModuleProgressDetail, 0, len(modules))
	for _, m := range modules {
		detail := ModuleProgressDetail{
			ModuleID: m.ID,
			Title:    m.Title,
			Status:   string(model.ProgressNotStarted),
		}
		mp, err := s.ProgressRepo.FindModuleProgress(userID, m.ID)
		if err == nil {
			detail.ProgressPercentage = mp.ProgressPercentage
			detail.ItemsCompleted = mp.MaterialsCompleted
			detail.TotalItems = mp.TotalMaterials
			detail.Status = string(mp.Status)
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		details = append(details, detail)
	}

	requirements, err := s.CompletionService.EvaluateRequirements(userID, courseID)
	if err != nil {
		return nil, err
	}
	evaluation, err := s.CompletionService.EvaluationStanding(userID, courseID)
	if err != nil {
		return nil, err
	}

	return &CourseProgressOverview{
		Enrollment:      enrollment,
		Modules:         details,
		ContentProgress: requirements.ContentProgress,
		Requirements:    requirements,
		Evaluation:      evaluation,
	}, nil
}
