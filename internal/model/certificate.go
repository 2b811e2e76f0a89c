package model

import "time"

type CertificateStatus string

const (
	CertificateIssued  CertificateStatus = "issued"
	CertificateRevoked CertificateStatus = "revoked"
)

// Certificate is issued once per (user, course) on the first passing
// evaluation. The rendered artifact is produced by an external renderer and
// stored through the storage provider; both are best-effort.
// swagger:model
type Certificate struct {
	BaseModel
	UserID            uint              `gorm:"index:idx_certificate_user_course,unique;not null" json:"userId"`
	CourseID          uint              `gorm:"index:idx_certificate_user_course,unique;not null" json:"courseId"`
	CertificateNumber string            `gorm:"uniqueIndex;size:100;not null" json:"certificateNumber"`
	Title             string            `gorm:"size:255" json:"title"`
	Description       string            `gorm:"type:text" json:"description"`
	ScoreAchieved     float64           `json:"scoreAchieved"`
	Status            CertificateStatus `gorm:"size:20;default:issued" json:"status"`
	VerificationCode  string            `gorm:"size:100" json:"verificationCode"`
	FileURL           string            `gorm:"size:500" json:"fileUrl"`
	CompletionDate    time.Time         `json:"completionDate"`
	IssueDate         time.Time         `json:"issueDate"`
}
