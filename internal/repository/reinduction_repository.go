package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type ReinductionRepository struct {
	DB *gorm.DB
}

func NewReinductionRepository(db *gorm.DB) *ReinductionRepository {
	return &ReinductionRepository{DB: db}
}

func (r *ReinductionRepository) Create(record *model.ReinductionRecord) error {
	return r.DB.Create(record).Error
}

func (r *ReinductionRepository) FindByID(id uint) (*model.ReinductionRecord, error) {
	var record model.ReinductionRecord
	err := r.DB.First(&record, id).Error
	return &record, err
}

func (r *ReinductionRepository) FindByWorkerAndYear(workerID uint, year int) (*model.ReinductionRecord, error) {
	var record model.ReinductionRecord
	err := r.DB.Where("worker_id = ? AND year = ?", workerID, year).First(&record).Error
	return &record, err
}

func (r *ReinductionRepository) FindByEnrollment(enrollmentID uint) (*model.ReinductionRecord, error) {
	var record model.ReinductionRecord
	err := r.DB.Where("enrollment_id = ?", enrollmentID).First(&record).Error
	return &record, err
}

func (r *ReinductionRepository) FindByWorker(workerID uint) ([]model.ReinductionRecord, error) {
	var records []model.ReinductionRecord
	err := r.DB.Where("worker_id = ?", workerID).Order("year DESC").Find(&records).Error
	return records, err
}

func (r *ReinductionRepository) Save(record *model.ReinductionRecord) error {
	return r.DB.Save(record).Error
}

// FindDue returns non-completed records for the given year, used by the
// reminder job and the overdue sweep.
func (r *ReinductionRepository) FindDue(year int) ([]model.ReinductionRecord, error) {
	var records []model.ReinductionRecord
	err := r.DB.
		Where("year = ? AND status IN ?", year,
			[]model.ReinductionStatus{model.ReinductionScheduled, model.ReinductionNotified, model.ReinductionOverdue}).
		Find(&records).Error
	return records, err
}
