package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
	EnrollmentSuspended EnrollmentStatus = "suspended"
)

// Enrollment binds one user to one course and carries the aggregate progress.
// Status transitions are one-directional except suspend/cancel; completion is
// driven exclusively by the completion service, never by raw progress writes.
// swagger:model
type Enrollment struct {
	BaseModel
	UserID      uint             `gorm:"index:idx_enrollment_user_course,unique;not null" json:"userId"`
	CourseID    uint             `gorm:"index:idx_enrollment_user_course,unique;not null" json:"courseId"`
	Status      EnrollmentStatus `gorm:"size:20;default:pending;not null" json:"status"`
	Progress    float64          `gorm:"default:0;not null" json:"progress"`
	Grade       *float64         `json:"grade"`
	Notes       string           `gorm:"type:text" json:"notes"`
	EnrolledAt  time.Time        `json:"enrolledAt"`
	StartedAt   *time.Time       `json:"startedAt"`
	CompletedAt *time.Time       `json:"completedAt"`
}

func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}

func (e *Enrollment) IsCompleted() bool {
	return e.Status == EnrollmentCompleted
}

// Start activates a pending enrollment. Any other state is left untouched:
// repeated starts and starts on terminal enrollments are deliberate no-ops.
func (e *Enrollment) Start() {
	if e.Status == EnrollmentPending {
		now := time.Now().UTC()
		e.Status = EnrollmentActive
		e.StartedAt = &now
	}
}

// Complete marks the enrollment finished. CompletedAt is set once; repeated
// calls keep the original timestamp.
func (e *Enrollment) Complete(grade *float64) {
	now := time.Now().UTC()
	e.Status = EnrollmentCompleted
	e.Progress = 100
	if e.CompletedAt == nil {
		e.CompletedAt = &now
	}
	if grade != nil {
		e.Grade = grade
	}
}

func (e *Enrollment) Cancel(reason string) {
	e.Status = EnrollmentCancelled
	if reason != "" {
		e.appendNote("Cancelled: " + reason)
	}
}

func (e *Enrollment) Suspend(reason string) {
	e.Status = EnrollmentSuspended
	if reason != "" {
		e.appendNote("Suspended: " + reason)
	}
}

// Resume returns a suspended enrollment to active. Administrative only.
func (e *Enrollment) Resume() {
	if e.Status == EnrollmentSuspended {
		e.Status = EnrollmentActive
	}
}

// UpdateProgress clamps and stores the aggregate percentage. It never flips
// the status to completed; that decision belongs to the completion service.
func (e *Enrollment) UpdateProgress(progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	e.Progress = progress
}

func (e *Enrollment) appendNote(note string) {
	if e.Notes == "" {
		e.Notes = note
		return
	}
	e.Notes = e.Notes + "\n" + note
}
