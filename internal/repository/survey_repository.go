package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *SurveyRepository) WithTx(tx *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: tx}
}

func (r *SurveyRepository) Create(survey *model.Survey) error {
	return r.DB.Create(survey).Error
}

func (r *SurveyRepository) FindByID(id uint) (*model.Survey, error) {
	var survey model.Survey
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index")
	}).First(&survey, id).Error
	return &survey, err
}

func (r *SurveyRepository) Update(survey *model.Survey) error {
	return r.DB.Save(survey).Error
}

func (r *SurveyRepository) List(page, limit int, status string) ([]model.Survey, int64, error) {
	var surveys []model.Survey
	var total int64

	q := r.DB.Model(&model.Survey{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Offset((page - 1) * limit).Limit(limit).Order("id DESC").Find(&surveys).Error
	return surveys, total, err
}

// FindRequiredPublishedByCourse returns the published surveys that gate the
// completion of one course.
func (r *SurveyRepository) FindRequiredPublishedByCourse(courseID uint) ([]model.Survey, error) {
	var surveys []model.Survey
	err := r.DB.
		Where("course_id = ? AND required_for_completion = ? AND status = ?",
			courseID, true, model.SurveyPublished).
		Find(&surveys).Error
	return surveys, err
}

func (r *SurveyRepository) FindUserSurvey(userID, surveyID uint) (*model.UserSurvey, error) {
	var us model.UserSurvey
	err := r.DB.Where("user_id = ? AND survey_id = ?", userID, surveyID).First(&us).Error
	return &us, err
}

func (r *SurveyRepository) FindOrCreateUserSurvey(userID, surveyID uint, enrollmentID *uint) (*model.UserSurvey, error) {
	var us model.UserSurvey
	err := r.DB.Where("user_id = ? AND survey_id = ?", userID, surveyID).First(&us).Error
	if err == nil {
		return &us, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	us = model.UserSurvey{
		UserID:       userID,
		SurveyID:     surveyID,
		EnrollmentID: enrollmentID,
		Status:       model.UserSurveyNotStarted,
	}
	if err := r.DB.Create(&us).Error; err != nil {
		return nil, err
	}
	return &us, nil
}

func (r *SurveyRepository) SaveUserSurvey(us *model.UserSurvey) error {
	return r.DB.Save(us).Error
}

// CountCompletedByUser counts the given surveys the user has completed.
func (r *SurveyRepository) CountCompletedByUser(userID uint, surveyIDs []uint) (int64, error) {
	if len(surveyIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.UserSurvey{}).
		Where("user_id = ? AND survey_id IN ? AND status = ?", userID, surveyIDs, model.UserSurveyCompleted).
		Count(&count).Error
	return count, err
}

func (r *SurveyRepository) FindResponses(surveyID uint) ([]model.UserSurvey, error) {
	var list []model.UserSurvey
	err := r.DB.
		Where("survey_id = ? AND status = ?", surveyID, model.UserSurveyCompleted).
		Find(&list).Error
	return list, err
}
