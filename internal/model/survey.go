package model

import "time"

type SurveyStatus string

const (
	SurveyDraft     SurveyStatus = "draft"
	SurveyPublished SurveyStatus = "published"
	SurveyClosed    SurveyStatus = "closed"
)

type SurveyQuestionType string

const (
	SurveyQuestionText   SurveyQuestionType = "text"
	SurveyQuestionChoice SurveyQuestionType = "multiple_choice"
	SurveyQuestionRating SurveyQuestionType = "rating"
	SurveyQuestionYesNo  SurveyQuestionType = "yes_no"
)

type UserSurveyStatus string

const (
	UserSurveyNotStarted UserSurveyStatus = "not_started"
	UserSurveyInProgress UserSurveyStatus = "in_progress"
	UserSurveyCompleted  UserSurveyStatus = "completed"
)

// swagger:model
type Survey struct {
	BaseModel
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      SurveyStatus `gorm:"size:20;default:draft" json:"status"`
	CourseID    *uint        `gorm:"index" json:"courseId"`
	// Required surveys gate course completion.
	RequiredForCompletion bool       `gorm:"default:false" json:"requiredForCompletion"`
	IsAnonymous           bool       `gorm:"default:false" json:"isAnonymous"`
	CreatedBy             uint       `json:"createdBy"`
	PublishedAt           *time.Time `json:"publishedAt"`
	ClosesAt              *time.Time `json:"closesAt"`

	Questions []SurveyQuestion `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
}

// swagger:model
type SurveyQuestion struct {
	BaseModel
	SurveyID     uint               `gorm:"index;not null" json:"surveyId"`
	QuestionText string             `gorm:"type:text;not null" json:"questionText"`
	QuestionType SurveyQuestionType `gorm:"size:20;not null" json:"questionType"`
	// JSON array of options for multiple choice.
	Options    string `gorm:"type:text" json:"options"`
	IsRequired bool   `gorm:"default:false" json:"isRequired"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
	MinValue   int    `json:"minValue"`
	MaxValue   int    `json:"maxValue"`
}

// swagger:model
type UserSurvey struct {
	BaseModel
	UserID       uint             `gorm:"index:idx_user_survey,unique" json:"userId"`
	SurveyID     uint             `gorm:"index:idx_user_survey,unique;not null" json:"surveyId"`
	EnrollmentID *uint            `gorm:"index" json:"enrollmentId"`
	Status       UserSurveyStatus `gorm:"size:20;default:not_started" json:"status"`
	// JSON object question_id -> answer.
	Responses   string     `gorm:"type:text" json:"responses"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (s *UserSurvey) CompleteSurvey(responses string) {
	now := time.Now().UTC()
	s.Status = UserSurveyCompleted
	s.Responses = responses
	if s.StartedAt == nil {
		s.StartedAt = &now
	}
	s.CompletedAt = &now
}
