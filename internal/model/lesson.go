package model

import "time"

type LessonStatus string

const (
	LessonDraft     LessonStatus = "draft"
	LessonPublished LessonStatus = "published"
	LessonArchived  LessonStatus = "archived"
)

type SlideType string

const (
	SlideContent SlideType = "content"
	SlideQuiz    SlideType = "quiz"
	SlideVideo   SlideType = "video"
)

type InlineQuizType string

const (
	InlineQuizMultipleChoice InlineQuizType = "multiple_choice"
	InlineQuizTrueFalse      InlineQuizType = "true_false"
)

// InteractiveLesson is a slide deck attached to a course module. Published
// lessons count as completable module items next to plain materials.
// swagger:model
type InteractiveLesson struct {
	BaseModel
	ModuleID    uint         `gorm:"index;not null" json:"moduleId"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      LessonStatus `gorm:"size:20;default:draft" json:"status"`
	CreatedBy   uint         `json:"createdBy"`
	PublishedAt *time.Time   `json:"publishedAt"`

	Slides []LessonSlide `gorm:"foreignKey:LessonID" json:"slides,omitempty"`
}

// swagger:model
type LessonSlide struct {
	BaseModel
	LessonID   uint      `gorm:"index;not null" json:"lessonId"`
	Title      string    `gorm:"size:255" json:"title"`
	SlideType  SlideType `gorm:"size:20;default:content" json:"slideType"`
	Content    string    `gorm:"type:text" json:"content"`
	MediaURL   string    `gorm:"size:500" json:"mediaUrl"`
	OrderIndex int       `gorm:"default:0" json:"orderIndex"`

	InlineQuiz *InlineQuiz `gorm:"foreignKey:SlideID" json:"inlineQuiz,omitempty"`
}

// InlineQuiz is the single micro-question embedded in one slide.
// swagger:model
type InlineQuiz struct {
	BaseModel
	SlideID      uint           `gorm:"uniqueIndex;not null" json:"slideId"`
	QuestionText string         `gorm:"type:text;not null" json:"questionText"`
	QuizType     InlineQuizType `gorm:"size:20;default:multiple_choice" json:"quizType"`
	Points       float64        `gorm:"default:1" json:"points"`
	Explanation  string         `gorm:"type:text" json:"explanation"`
	// Feedback (correct answer + explanation) is withheld while retries remain.
	ShowFeedbackImmediately bool `gorm:"default:true" json:"showFeedbackImmediately"`

	Answers []InlineQuizAnswer `gorm:"foreignKey:QuizID" json:"answers,omitempty"`
}

// swagger:model
type InlineQuizAnswer struct {
	BaseModel
	QuizID     uint   `gorm:"index;not null" json:"quizId"`
	AnswerText string `gorm:"type:text;not null" json:"answerText"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}
