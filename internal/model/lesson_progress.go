package model

import "time"

type LessonProgressStatus string

const (
	LessonProgressNotStarted LessonProgressStatus = "not_started"
	LessonProgressInProgress LessonProgressStatus = "in_progress"
	LessonProgressCompleted  LessonProgressStatus = "completed"
)

// UserLessonProgress tracks one user's pass through an interactive lesson.
// swagger:model
type UserLessonProgress struct {
	BaseModel
	UserID             uint                 `gorm:"index:idx_lesson_progress_user,unique;not null" json:"userId"`
	LessonID           uint                 `gorm:"index:idx_lesson_progress_user,unique;not null" json:"lessonId"`
	EnrollmentID       uint                 `gorm:"index;not null" json:"enrollmentId"`
	Status             LessonProgressStatus `gorm:"size:20;default:not_started" json:"status"`
	ProgressPercentage float64              `gorm:"default:0" json:"progress_percentage"`
	QuizScore          *float64             `json:"quizScore"`
	QuizTotalPoints    float64              `gorm:"default:0" json:"quizTotalPoints"`
	QuizEarnedPoints   float64              `gorm:"default:0" json:"quizEarnedPoints"`
	StartedAt          *time.Time           `json:"startedAt"`
	CompletedAt        *time.Time           `json:"completedAt"`
}

func (p *UserLessonProgress) StartLesson() {
	if p.Status == LessonProgressNotStarted {
		now := time.Now().UTC()
		p.Status = LessonProgressInProgress
		p.StartedAt = &now
	}
}

func (p *UserLessonProgress) CompleteLesson() {
	now := time.Now().UTC()
	p.Status = LessonProgressCompleted
	if p.CompletedAt == nil {
		p.CompletedAt = &now
	}
}

func (p *UserLessonProgress) CalculateQuizScore() {
	if p.QuizTotalPoints > 0 {
		score := p.QuizEarnedPoints / p.QuizTotalPoints * 100
		p.QuizScore = &score
	} else {
		p.QuizScore = nil
	}
}

// UserSlideProgress carries the per-slide view flag and the inline quiz
// attempt state. QuizAnswered is terminal: set on a correct answer or once
// attempts are exhausted, and only cleared by the cooldown reset.
// swagger:model
type UserSlideProgress struct {
	BaseModel
	LessonProgressID uint `gorm:"index:idx_slide_progress,unique;not null" json:"lessonProgressId"`
	SlideID          uint `gorm:"index:idx_slide_progress,unique;not null" json:"slideId"`
	Viewed           bool `gorm:"default:false" json:"viewed"`
	QuizAnswered     bool `gorm:"default:false" json:"quiz_answered"`
	QuizCorrect      bool `gorm:"default:false" json:"quiz_correct"`
	// JSON payload of the last submitted answer.
	QuizAnswer   string     `gorm:"type:text" json:"quizAnswer"`
	QuizAttempts int        `gorm:"default:0" json:"quiz_attempts"`
	PointsEarned float64    `gorm:"default:0" json:"points_earned"`
	ViewedAt     *time.Time `json:"viewedAt"`
	AnsweredAt   *time.Time `json:"answeredAt"`
}

func (p *UserSlideProgress) MarkViewed() {
	if !p.Viewed {
		now := time.Now().UTC()
		p.Viewed = true
		p.ViewedAt = &now
	}
}

// RecordQuizAttempt counts one submission against the cycle and settles it.
func (p *UserSlideProgress) RecordQuizAttempt(answer string, isCorrect bool, points float64, maxAttempts int) {
	p.QuizAttempts++
	p.SettleQuizAttempt(answer, isCorrect, points, maxAttempts)
}

// SettleQuizAttempt records the outcome of a submission whose slot was
// already counted against the cycle. A correct answer or running out of
// attempts makes the record terminal; otherwise further immediate retries
// stay open.
func (p *UserSlideProgress) SettleQuizAttempt(answer string, isCorrect bool, points float64, maxAttempts int) {
	now := time.Now().UTC()
	p.QuizAnswer = answer
	p.AnsweredAt = &now

	if isCorrect {
		p.QuizAnswered = true
		p.QuizCorrect = true
		p.PointsEarned = points
	} else if p.QuizAttempts >= maxAttempts {
		p.QuizAnswered = true
		p.QuizCorrect = false
		p.PointsEarned = 0
	}
}

// ResetQuizCycle grants a fresh round of attempts after the cooldown.
func (p *UserSlideProgress) ResetQuizCycle() {
	p.QuizAnswered = false
	p.QuizCorrect = false
	p.QuizAttempts = 0
	p.PointsEarned = 0
}
