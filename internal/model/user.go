package model

import "time"

type UserRole string

const (
	Admin      UserRole = "admin"
	Trainer    UserRole = "trainer"
	Employee   UserRole = "employee"
	Supervisor UserRole = "supervisor"
)

// swagger:model
type User struct {
	BaseModel
	Username   string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email      string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string     `gorm:"size:255;not null" json:"-"`
	FirstName  string     `gorm:"size:100" json:"firstName"`
	LastName   string     `gorm:"size:100" json:"lastName"`
	Role       UserRole   `gorm:"size:20;default:employee" json:"role"`
	IsActive   bool       `gorm:"default:true" json:"isActive"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}
