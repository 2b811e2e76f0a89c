package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(certificate *model.Certificate) error {
	return r.DB.Create(certificate).Error
}

func (r *CertificateRepository) FindByID(id uint) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.First(&certificate, id).Error
	return &certificate, err
}

func (r *CertificateRepository) FindByUserAndCourse(userID, courseID uint) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&certificate).Error
	return &certificate, err
}

func (r *CertificateRepository) FindByUser(userID uint) ([]model.Certificate, error) {
	var certificates []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("issue_date DESC").Find(&certificates).Error
	return certificates, err
}

func (r *CertificateRepository) FindByNumber(number string) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.Where("certificate_number = ?", number).First(&certificate).Error
	return &certificate, err
}

func (r *CertificateRepository) FindByVerificationCode(code string) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.DB.Where("verification_code = ?", code).First(&certificate).Error
	return &certificate, err
}

func (r *CertificateRepository) Save(certificate *model.Certificate) error {
	return r.DB.Save(certificate).Error
}
