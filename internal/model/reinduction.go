package model

import "time"

type ReinductionStatus string

const (
	ReinductionScheduled ReinductionStatus = "scheduled"
	ReinductionNotified  ReinductionStatus = "notified"
	ReinductionCompleted ReinductionStatus = "completed"
	ReinductionOverdue   ReinductionStatus = "overdue"
)

// ReinductionRecord tracks the yearly safety reinduction obligation of one
// worker. When its linked enrollment completes, the record is advanced to
// completed exactly once.
// swagger:model
type ReinductionRecord struct {
	BaseModel
	WorkerID     uint              `gorm:"index:idx_reinduction_worker_year,unique;not null" json:"workerId"`
	Year         int               `gorm:"index:idx_reinduction_worker_year,unique;not null" json:"year"`
	EnrollmentID *uint             `gorm:"index" json:"enrollmentId"`
	Status       ReinductionStatus `gorm:"size:20;default:scheduled" json:"status"`
	DueDate      time.Time         `json:"dueDate"`
	CompletedAt  *time.Time        `json:"completedAt"`
}
