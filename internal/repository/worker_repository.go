package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type WorkerRepository struct {
	DB *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{DB: db}
}

func (r *WorkerRepository) Create(worker *model.Worker) error {
	return r.DB.Create(worker).Error
}

func (r *WorkerRepository) FindByID(id uint) (*model.Worker, error) {
	var worker model.Worker
	err := r.DB.First(&worker, id).Error
	return &worker, err
}

func (r *WorkerRepository) FindByDocumentNumber(doc string) (*model.Worker, error) {
	var worker model.Worker
	err := r.DB.Where("document_number = ?", doc).First(&worker).Error
	return &worker, err
}

func (r *WorkerRepository) FindByUserID(userID uint) (*model.Worker, error) {
	var worker model.Worker
	err := r.DB.Where("user_id = ?", userID).First(&worker).Error
	return &worker, err
}

func (r *WorkerRepository) Update(worker *model.Worker) error {
	return r.DB.Save(worker).Error
}

func (r *WorkerRepository) List(page, limit int, activeOnly bool) ([]model.Worker, int64, error) {
	var workers []model.Worker
	var total int64

	q := r.DB.Model(&model.Worker{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Offset((page - 1) * limit).Limit(limit).Order("last_name, first_name").Find(&workers).Error
	return workers, total, err
}

func (r *WorkerRepository) LinkUser(workerID, userID uint) error {
	return r.DB.Model(&model.Worker{}).
		Where("id = ?", workerID).
		Update("user_id", userID).
		Error
}

func (r *WorkerRepository) UnlinkUser(workerID uint) error {
	return r.DB.Model(&model.Worker{}).
		Where("id = ?", workerID).
		Update("user_id", nil).
		Error
}
