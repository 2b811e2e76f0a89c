package model

import "time"

type EvaluationStatus string

const (
	EvaluationDraft     EvaluationStatus = "draft"
	EvaluationPublished EvaluationStatus = "published"
	EvaluationArchived  EvaluationStatus = "archived"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
)

type UserEvaluationStatus string

const (
	UserEvaluationNotStarted UserEvaluationStatus = "not_started"
	UserEvaluationInProgress UserEvaluationStatus = "in_progress"
	UserEvaluationCompleted  UserEvaluationStatus = "completed"
	UserEvaluationExpired    UserEvaluationStatus = "expired"
)

// swagger:model
type Evaluation struct {
	BaseModel
	CourseID         uint             `gorm:"index;not null" json:"courseId"`
	Title            string           `gorm:"size:255;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	Instructions     string           `gorm:"type:text" json:"instructions"`
	TimeLimitMinutes int              `json:"timeLimitMinutes"`
	PassingScore     float64          `gorm:"default:70" json:"passingScore"`
	MaxAttempts      int              `gorm:"default:3" json:"maxAttempts"`
	Status           EvaluationStatus `gorm:"size:20;default:draft" json:"status"`
	CreatedBy        uint             `json:"createdBy"`
	PublishedAt      *time.Time       `json:"publishedAt"`

	Questions []Question `gorm:"foreignKey:EvaluationID" json:"questions,omitempty"`
}

// swagger:model
type Question struct {
	BaseModel
	EvaluationID uint         `gorm:"index;not null" json:"evaluationId"`
	QuestionText string       `gorm:"type:text;not null" json:"questionText"`
	QuestionType QuestionType `gorm:"size:20;not null" json:"questionType"`
	Points       float64      `gorm:"default:1" json:"points"`
	OrderIndex   int          `gorm:"default:0" json:"orderIndex"`
	Explanation  string       `gorm:"type:text" json:"explanation"`

	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

// swagger:model
type Answer struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	AnswerText string `gorm:"type:text;not null" json:"answerText"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

// UserEvaluation is one attempt of one user at one evaluation. The composite
// unique index makes the attempt slot the arbiter under concurrency: two
// transactions racing for the same attempt number cannot both insert.
// swagger:model
type UserEvaluation struct {
	BaseModel
	UserID        uint                 `gorm:"uniqueIndex:idx_user_evaluation_attempt;not null" json:"userId"`
	EvaluationID  uint                 `gorm:"uniqueIndex:idx_user_evaluation_attempt;index;not null" json:"evaluationId"`
	EnrollmentID  *uint                `gorm:"index" json:"enrollmentId"`
	AttemptNumber int                  `gorm:"uniqueIndex:idx_user_evaluation_attempt;default:1" json:"attempt_number"`
	Status        UserEvaluationStatus `gorm:"size:20;default:not_started" json:"status"`
	Score         float64              `json:"score"`
	MaxPoints     float64              `json:"max_points"`
	Percentage    float64              `json:"percentage"`
	Passed        bool                 `gorm:"default:false" json:"passed"`
	// Exactly one completed attempt per (user, evaluation) carries this flag.
	IsBestAttempt    bool       `gorm:"default:false" json:"is_best_attempt"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	StartedAt        *time.Time `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt"`
	ExpiresAt        *time.Time `json:"expiresAt"`
}

func (ue *UserEvaluation) IsExpired(now time.Time) bool {
	return ue.ExpiresAt != nil && now.After(*ue.ExpiresAt)
}

// swagger:model
type UserAnswer struct {
	BaseModel
	UserEvaluationID uint `gorm:"index;not null" json:"userEvaluationId"`
	QuestionID       uint `gorm:"not null" json:"questionId"`
	// Comma-joined selected answer IDs for choice questions.
	SelectedAnswerIDs string  `gorm:"size:255" json:"selectedAnswerIds"`
	AnswerText        string  `gorm:"type:text" json:"answerText"`
	PointsEarned      float64 `gorm:"default:0" json:"pointsEarned"`
	IsCorrect         bool    `gorm:"default:false" json:"isCorrect"`
}
