package model

import "time"

// Worker is the HR-side record of an employee. It may optionally be linked
// to a platform user identity; unlinked workers exist for staff who never
// log in (contractors, field crews).
// swagger:model
type Worker struct {
	BaseModel
	DocumentNumber string     `gorm:"uniqueIndex;size:50;not null" json:"documentNumber"`
	FirstName      string     `gorm:"size:100;not null" json:"firstName"`
	LastName       string     `gorm:"size:100;not null" json:"lastName"`
	Position       string     `gorm:"size:150" json:"position"`
	Area           string     `gorm:"size:150" json:"area"`
	HireDate       *time.Time `json:"hireDate"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	// Nullable back-reference to the linked user identity.
	UserID *uint `gorm:"index" json:"userId"`
}

func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}
