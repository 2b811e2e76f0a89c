package model

import "time"

type NotificationType string

const (
	NotificationPendingRequirements NotificationType = "pending_requirements"
	NotificationReinductionDue      NotificationType = "reinduction_due"
	NotificationCertificateIssued   NotificationType = "certificate_issued"
)

// swagger:model
type Notification struct {
	BaseModel
	UserID  uint             `gorm:"index;not null" json:"userId"`
	Type    NotificationType `gorm:"size:40;not null" json:"type"`
	Title   string           `gorm:"size:255" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	IsRead  bool             `gorm:"default:false" json:"isRead"`
	ReadAt  *time.Time       `json:"readAt"`
}
