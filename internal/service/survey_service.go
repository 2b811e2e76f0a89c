package service

import (
	"encoding/json"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SurveyService struct {
	SurveyRepo        *repository.SurveyRepository
	EnrollmentRepo    *repository.EnrollmentRepository
	CompletionService *CompletionService
	DB                *gorm.DB
}

func NewSurveyService(
	surveyRepo *repository.SurveyRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	completionService *CompletionService,
	db *gorm.DB,
) *SurveyService {
	return &SurveyService{
		SurveyRepo:        surveyRepo,
		EnrollmentRepo:    enrollmentRepo,
		CompletionService: completionService,
		DB:                db,
	}
}

func (s *SurveyService) Create(survey *model.Survey) error {
	return s.SurveyRepo.Create(survey)
}

func (s *SurveyService) GetByID(id uint) (*model.Survey, error) {
	survey, err := s.SurveyRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSurveyNotFound
		}
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) List(page, limit int, status string) ([]model.Survey, int64, error) {
	return s.SurveyRepo.List(page, limit, status)
}

func (s *SurveyService) Publish(id uint) (*model.Survey, error) {
	survey, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if survey.Status != model.SurveyDraft {
		return nil, &util.InvalidStateError{Msg: "only draft surveys can be published"}
	}

	now := time.Now().UTC()
	survey.Status = model.SurveyPublished
	survey.PublishedAt = &now
	if err := s.SurveyRepo.Update(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

// SubmitResponse stores the user's answers and marks the survey completed.
// Required questions must all be present; responses are validated as a JSON
// object keyed by question ID. Completing a gating survey resyncs the
// enrollment so a capped aggregate can move to done.
func (s *SurveyService) SubmitResponse(userID, surveyID uint, responses map[string]interface{}) (*model.UserSurvey, error) {
	survey, err := s.GetByID(surveyID)
	if err != nil {
		return nil, err
	}
	if survey.Status != model.SurveyPublished {
		return nil, &util.InvalidStateError{Msg: "survey is not open for responses"}
	}
	now := time.Now().UTC()
	if survey.ClosesAt != nil && now.After(*survey.ClosesAt) {
		return nil, &util.ExpiredError{Msg: "survey is closed"}
	}

	for _, q := range survey.Questions {
		if !q.IsRequired {
			continue
		}
		key := jsonKey(q.ID)
		if v, ok := responses[key]; !ok || v == nil || v == "" {
			return nil, &util.InvalidStateError{Msg: "required question not answered: " + q.QuestionText}
		}
	}

	var enrollmentID *uint
	var enrollment *model.Enrollment
	if survey.CourseID != nil {
		if e, err := s.EnrollmentRepo.FindByUserAndCourse(userID, *survey.CourseID); err == nil {
			enrollment = e
			enrollmentID = &e.ID
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	us, err := s.SurveyRepo.FindOrCreateUserSurvey(userID, surveyID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if us.Status == model.UserSurveyCompleted {
		return nil, &util.InvalidStateError{Msg: "survey already completed"}
	}

	payload, err := json.Marshal(responses)
	if err != nil {
		return nil, err
	}
	us.CompleteSurvey(string(payload))
	if err := s.SurveyRepo.SaveUserSurvey(us); err != nil {
		return nil, err
	}

	if enrollment != nil && survey.RequiredForCompletion {
		if err := s.CompletionService.SyncEnrollment(enrollment); err != nil {
			logger.Log.Warn("Enrollment sync after survey failed",
				zap.Uint("enrollmentId", enrollment.ID),
				zap.Error(err))
		}
	}
	return us, nil
}

func (s *SurveyService) GetUserStatus(userID, surveyID uint) (*model.UserSurvey, error) {
	us, err := s.SurveyRepo.FindUserSurvey(userID, surveyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &model.UserSurvey{
				UserID:   userID,
				SurveyID: surveyID,
				Status:   model.UserSurveyNotStarted,
			}, nil
		}
		return nil, err
	}
	return us, nil
}

func (s *SurveyService) GetResponses(surveyID uint) ([]model.UserSurvey, error) {
	if _, err := s.GetByID(surveyID); err != nil {
		return nil, err
	}
	return s.SurveyRepo.FindResponses(surveyID)
}

func jsonKey(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
