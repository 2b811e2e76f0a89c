package repository

import (
	"math"
	"sst_backend/internal/model"
	"sst_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.First(&enrollment, id).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) FindByCourse(courseID uint, page, limit int) ([]model.Enrollment, int64, error) {
	var enrollments []model.Enrollment
	var total int64

	q := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Offset((page - 1) * limit).Limit(limit).Order("id").Find(&enrollments).Error
	return enrollments, total, err
}

func (r *EnrollmentRepository) Save(enrollment *model.Enrollment) error {
	return r.DB.Save(enrollment).Error
}

// SaveProgressIfChanged persists the aggregate percentage only when it moved
// by more than the write epsilon, to keep frequent position pings from
// hammering the enrollments table.
func (r *EnrollmentRepository) SaveProgressIfChanged(enrollment *model.Enrollment, newProgress float64) error {
	if math.Abs(enrollment.Progress-newProgress) < util.ProgressEpsilon {
		return nil
	}
	enrollment.UpdateProgress(newProgress)
	return r.DB.Model(enrollment).Update("progress", enrollment.Progress).Error
}

// FindActiveByUsers returns the non-terminal enrollments of the given users,
// used by the reminder job.
func (r *EnrollmentRepository) FindActiveByUsers(userIDs []uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.
		Where("user_id IN ?", userIDs).
		Where("status IN ?", []model.EnrollmentStatus{model.EnrollmentPending, model.EnrollmentActive}).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CountByStatus(courseID uint) (map[model.EnrollmentStatus]int64, error) {
	type row struct {
		Status model.EnrollmentStatus
		N      int64
	}
	var rows []row
	q := r.DB.Model(&model.Enrollment{}).Select("status, COUNT(*) AS n").Group("status")
	if courseID != 0 {
		q = q.Where("course_id = ?", courseID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.EnrollmentStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.N
	}
	return counts, nil
}
