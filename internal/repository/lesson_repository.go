package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *LessonRepository) WithTx(tx *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: tx}
}

func (r *LessonRepository) Create(lesson *model.InteractiveLesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.InteractiveLesson, error) {
	var lesson model.InteractiveLesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

// FindByIDWithSlides preloads the ordered slides with their inline quizzes
// and answer options.
func (r *LessonRepository) FindByIDWithSlides(id uint) (*model.InteractiveLesson, error) {
	var lesson model.InteractiveLesson
	err := r.DB.
		Preload("Slides", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		Preload("Slides.InlineQuiz").
		Preload("Slides.InlineQuiz.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		First(&lesson, id).Error
	return &lesson, err
}

func (r *LessonRepository) FindByModule(moduleID uint) ([]model.InteractiveLesson, error) {
	var lessons []model.InteractiveLesson
	err := r.DB.Where("module_id = ?", moduleID).Order("id").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) FindPublishedByModule(moduleID uint) ([]model.InteractiveLesson, error) {
	var lessons []model.InteractiveLesson
	err := r.DB.
		Where("module_id = ? AND status = ?", moduleID, model.LessonPublished).
		Order("id").
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountPublishedByModule(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.InteractiveLesson{}).
		Where("module_id = ? AND status = ?", moduleID, model.LessonPublished).
		Count(&count).Error
	return count, err
}

func (r *LessonRepository) Update(lesson *model.InteractiveLesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) CreateSlide(slide *model.LessonSlide) error {
	return r.DB.Create(slide).Error
}

func (r *LessonRepository) FindSlideByID(id uint) (*model.LessonSlide, error) {
	var slide model.LessonSlide
	err := r.DB.Preload("InlineQuiz").Preload("InlineQuiz.Answers").First(&slide, id).Error
	return &slide, err
}

func (r *LessonRepository) CountSlides(lessonID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonSlide{}).Where("lesson_id = ?", lessonID).Count(&count).Error
	return count, err
}

func (r *LessonRepository) CreateQuiz(quiz *model.InlineQuiz) error {
	return r.DB.Create(quiz).Error
}

func (r *LessonRepository) FindQuizBySlide(slideID uint) (*model.InlineQuiz, error) {
	var quiz model.InlineQuiz
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index")
	}).Where("slide_id = ?", slideID).First(&quiz).Error
	return &quiz, err
}

func (r *LessonRepository) FindLessonProgress(userID, lessonID uint) (*model.UserLessonProgress, error) {
	var progress model.UserLessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	return &progress, err
}

func (r *LessonRepository) FindOrCreateLessonProgress(userID, lessonID, enrollmentID uint) (*model.UserLessonProgress, error) {
	var progress model.UserLessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	progress = model.UserLessonProgress{
		UserID:       userID,
		LessonID:     lessonID,
		EnrollmentID: enrollmentID,
		Status:       model.LessonProgressNotStarted,
	}
	if err := r.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *LessonRepository) SaveLessonProgress(progress *model.UserLessonProgress) error {
	return r.DB.Save(progress).Error
}

// CountCompletedLessons counts completed lesson passes among the given
// lesson IDs for one user.
func (r *LessonRepository) CountCompletedLessons(userID uint, lessonIDs []uint) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.UserLessonProgress{}).
		Where("user_id = ? AND lesson_id IN ? AND status = ?", userID, lessonIDs, model.LessonProgressCompleted).
		Count(&count).Error
	return count, err
}

func (r *LessonRepository) FindSlideProgress(lessonProgressID, slideID uint) (*model.UserSlideProgress, error) {
	var progress model.UserSlideProgress
	err := r.DB.Where("lesson_progress_id = ? AND slide_id = ?", lessonProgressID, slideID).First(&progress).Error
	return &progress, err
}

func (r *LessonRepository) FindOrCreateSlideProgress(lessonProgressID, slideID uint) (*model.UserSlideProgress, error) {
	var progress model.UserSlideProgress
	err := r.DB.Where("lesson_progress_id = ? AND slide_id = ?", lessonProgressID, slideID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	progress = model.UserSlideProgress{
		LessonProgressID: lessonProgressID,
		SlideID:          slideID,
	}
	if err := r.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *LessonRepository) SaveSlideProgress(progress *model.UserSlideProgress) error {
	return r.DB.Save(progress).Error
}

// ClaimQuizAttempt consumes one attempt slot with a guarded update. False
// means the quiz settled or the cycle ran out since the record was read, so
// the caller must not count the submission.
func (r *LessonRepository) ClaimQuizAttempt(slideProgressID uint, maxAttempts int) (bool, error) {
	res := r.DB.Model(&model.UserSlideProgress{}).
		Where("id = ? AND quiz_answered = ? AND quiz_attempts < ?", slideProgressID, false, maxAttempts).
		UpdateColumn("quiz_attempts", gorm.Expr("quiz_attempts + 1"))
	return res.RowsAffected == 1, res.Error
}

func (r *LessonRepository) FindSlideProgressByLessonProgress(lessonProgressID uint) ([]model.UserSlideProgress, error) {
	var list []model.UserSlideProgress
	err := r.DB.Where("lesson_progress_id = ?", lessonProgressID).Find(&list).Error
	return list, err
}
