package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) FindMaterialProgress(userID, materialID uint) (*model.UserMaterialProgress, error) {
	var progress model.UserMaterialProgress
	err := r.DB.Where("user_id = ? AND material_id = ?", userID, materialID).First(&progress).Error
	return &progress, err
}

// FindOrCreateMaterialProgress returns the existing record or a fresh
// not_started one bound to the enrollment.
func (r *ProgressRepository) FindOrCreateMaterialProgress(userID, materialID, enrollmentID uint) (*model.UserMaterialProgress, error) {
	var progress model.UserMaterialProgress
	err := r.DB.Where("user_id = ? AND material_id = ?", userID, materialID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	progress = model.UserMaterialProgress{
		UserID:       userID,
		MaterialID:   materialID,
		EnrollmentID: enrollmentID,
		Status:       model.ProgressNotStarted,
	}
	if err := r.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) SaveMaterialProgress(progress *model.UserMaterialProgress) error {
	return r.DB.Save(progress).Error
}

func (r *ProgressRepository) FindMaterialProgressByEnrollment(enrollmentID uint) ([]model.UserMaterialProgress, error) {
	var list []model.UserMaterialProgress
	err := r.DB.Where("enrollment_id = ?", enrollmentID).Find(&list).Error
	return list, err
}

// CountCompletedMaterials counts the user's completed materials among the
// given material IDs.
func (r *ProgressRepository) CountCompletedMaterials(userID uint, materialIDs []uint) (int64, error) {
	if len(materialIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.UserMaterialProgress{}).
		Where("user_id = ? AND material_id IN ? AND status = ?", userID, materialIDs, model.ProgressCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) FindModuleProgress(userID, moduleID uint) (*model.UserModuleProgress, error) {
	var progress model.UserModuleProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&progress).Error
	return &progress, err
}

func (r *ProgressRepository) FindOrCreateModuleProgress(userID, moduleID, enrollmentID uint) (*model.UserModuleProgress, error) {
	var progress model.UserModuleProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	progress = model.UserModuleProgress{
		UserID:       userID,
		ModuleID:     moduleID,
		EnrollmentID: enrollmentID,
		Status:       model.ProgressNotStarted,
	}
	if err := r.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) SaveModuleProgress(progress *model.UserModuleProgress) error {
	return r.DB.Save(progress).Error
}

func (r *ProgressRepository) FindModuleProgressByEnrollment(enrollmentID uint) ([]model.UserModuleProgress, error) {
	var list []model.UserModuleProgress
	err := r.DB.Where("enrollment_id = ?", enrollmentID).Find(&list).Error
	return list, err
}
