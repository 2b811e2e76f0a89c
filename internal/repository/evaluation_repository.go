package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *EvaluationRepository) WithTx(tx *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: tx}
}

func (r *EvaluationRepository) Create(evaluation *model.Evaluation) error {
	return r.DB.Create(evaluation).Error
}

func (r *EvaluationRepository) FindByID(id uint) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	err := r.DB.First(&evaluation, id).Error
	return &evaluation, err
}

// FindByIDWithQuestions preloads ordered questions and their answer options.
func (r *EvaluationRepository) FindByIDWithQuestions(id uint) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		First(&evaluation, id).Error
	return &evaluation, err
}

func (r *EvaluationRepository) FindPublishedByCourse(courseID uint) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	err := r.DB.
		Where("course_id = ? AND status = ?", courseID, model.EvaluationPublished).
		Find(&evaluations).Error
	return evaluations, err
}

func (r *EvaluationRepository) Update(evaluation *model.Evaluation) error {
	return r.DB.Save(evaluation).Error
}

func (r *EvaluationRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *EvaluationRepository) CreateAnswer(answer *model.Answer) error {
	return r.DB.Create(answer).Error
}

func (r *EvaluationRepository) CreateAttempt(attempt *model.UserEvaluation) error {
	return r.DB.Create(attempt).Error
}

func (r *EvaluationRepository) FindAttemptByID(id uint) (*model.UserEvaluation, error) {
	var attempt model.UserEvaluation
	err := r.DB.First(&attempt, id).Error
	return &attempt, err
}

func (r *EvaluationRepository) FindAttempts(userID, evaluationID uint) ([]model.UserEvaluation, error) {
	var attempts []model.UserEvaluation
	err := r.DB.
		Where("user_id = ? AND evaluation_id = ?", userID, evaluationID).
		Order("attempt_number").
		Find(&attempts).Error
	return attempts, err
}

func (r *EvaluationRepository) FindInProgressAttempt(userID, evaluationID uint) (*model.UserEvaluation, error) {
	var attempt model.UserEvaluation
	err := r.DB.
		Where("user_id = ? AND evaluation_id = ? AND status = ?",
			userID, evaluationID, model.UserEvaluationInProgress).
		First(&attempt).Error
	return &attempt, err
}

func (r *EvaluationRepository) CountAttempts(userID, evaluationID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserEvaluation{}).
		Where("user_id = ? AND evaluation_id = ?", userID, evaluationID).
		Count(&count).Error
	return count, err
}

func (r *EvaluationRepository) SaveAttempt(attempt *model.UserEvaluation) error {
	return r.DB.Save(attempt).Error
}

// FindCompletedAttempts returns the user's completed attempts ordered best
// first: highest percentage, ties broken by earliest attempt.
func (r *EvaluationRepository) FindCompletedAttempts(userID, evaluationID uint) ([]model.UserEvaluation, error) {
	var attempts []model.UserEvaluation
	err := r.DB.
		Where("user_id = ? AND evaluation_id = ? AND status = ?",
			userID, evaluationID, model.UserEvaluationCompleted).
		Order("percentage DESC, attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

// FindAttemptsByEvaluation pages through every user's attempts at one
// evaluation, for the staff results view.
func (r *EvaluationRepository) FindAttemptsByEvaluation(evaluationID uint, page, limit int) ([]model.UserEvaluation, int64, error) {
	var attempts []model.UserEvaluation
	var total int64

	query := r.DB.Model(&model.UserEvaluation{}).Where("evaluation_id = ?", evaluationID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("user_id, attempt_number").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

// ClearBestAttempt drops the best-attempt flag from every attempt of the
// pair, ahead of re-electing the winner.
func (r *EvaluationRepository) ClearBestAttempt(userID, evaluationID uint) error {
	return r.DB.Model(&model.UserEvaluation{}).
		Where("user_id = ? AND evaluation_id = ?", userID, evaluationID).
		Update("is_best_attempt", false).Error
}

// HasPassed reports whether any completed attempt passed the evaluation.
func (r *EvaluationRepository) HasPassed(userID, evaluationID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserEvaluation{}).
		Where("user_id = ? AND evaluation_id = ? AND status = ? AND passed = ?",
			userID, evaluationID, model.UserEvaluationCompleted, true).
		Count(&count).Error
	return count > 0, err
}

// HasCompleted reports whether any attempt finished, passing or not.
func (r *EvaluationRepository) HasCompleted(userID, evaluationID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserEvaluation{}).
		Where("user_id = ? AND evaluation_id = ? AND status = ?",
			userID, evaluationID, model.UserEvaluationCompleted).
		Count(&count).Error
	return count > 0, err
}

func (r *EvaluationRepository) CreateUserAnswer(answer *model.UserAnswer) error {
	return r.DB.Create(answer).Error
}

func (r *EvaluationRepository) FindUserAnswers(userEvaluationID uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Where("user_evaluation_id = ?", userEvaluationID).Find(&answers).Error
	return answers, err
}
