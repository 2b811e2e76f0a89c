package model

import "time"

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressSkipped    ProgressStatus = "skipped"
)

// UserMaterialProgress tracks one user's progress on one material.
// swagger:model
type UserMaterialProgress struct {
	BaseModel
	UserID       uint           `gorm:"index:idx_material_progress_user,unique;not null" json:"userId"`
	MaterialID   uint           `gorm:"index:idx_material_progress_user,unique;not null" json:"materialId"`
	EnrollmentID uint           `gorm:"index;not null" json:"enrollmentId"`
	Status       ProgressStatus `gorm:"size:20;default:not_started;not null" json:"status"`
	// 0-100; partial progress for videos and documents.
	ProgressPercentage float64    `gorm:"default:0" json:"progress_percentage"`
	TimeSpentSeconds   int        `gorm:"default:0" json:"time_spent_seconds"`
	LastPosition       int        `gorm:"default:0" json:"last_position"`
	Attempts           int        `gorm:"default:0" json:"attempts"`
	Notes              string     `gorm:"type:text" json:"notes"`
	StartedAt          *time.Time `json:"startedAt"`
	CompletedAt        *time.Time `json:"completedAt"`
}

// StartMaterial moves a fresh record into in_progress and counts the access.
// Idempotent once the material is underway.
func (p *UserMaterialProgress) StartMaterial() {
	if p.Status == ProgressNotStarted {
		now := time.Now().UTC()
		p.Status = ProgressInProgress
		p.StartedAt = &now
		p.Attempts++
	}
}

// CompleteMaterial forces the record to completed at 100%.
func (p *UserMaterialProgress) CompleteMaterial() {
	now := time.Now().UTC()
	p.Status = ProgressCompleted
	p.ProgressPercentage = 100
	if p.CompletedAt == nil {
		p.CompletedAt = &now
	}
}

// UpdateProgress clamps the percentage, records position and accumulated
// time, and completes automatically once 100% is reached.
func (p *UserMaterialProgress) UpdateProgress(percentage float64, position *int, timeSpent *int) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	p.ProgressPercentage = percentage
	if position != nil {
		p.LastPosition = *position
	}
	if timeSpent != nil {
		p.TimeSpentSeconds += *timeSpent
	}

	if p.ProgressPercentage >= 100 {
		p.CompleteMaterial()
	} else if p.Status == ProgressNotStarted {
		p.StartMaterial()
	}
}

// Reset returns the record to its pristine state. Administrative use only.
func (p *UserMaterialProgress) Reset() {
	p.Status = ProgressNotStarted
	p.ProgressPercentage = 0
	p.TimeSpentSeconds = 0
	p.LastPosition = 0
	p.Attempts = 0
	p.StartedAt = nil
	p.CompletedAt = nil
}

// UserModuleProgress rolls material completion up to one module.
// swagger:model
type UserModuleProgress struct {
	BaseModel
	UserID             uint           `gorm:"index:idx_module_progress_user,unique;not null" json:"userId"`
	ModuleID           uint           `gorm:"index:idx_module_progress_user,unique;not null" json:"moduleId"`
	EnrollmentID       uint           `gorm:"index;not null" json:"enrollmentId"`
	Status             ProgressStatus `gorm:"size:20;default:not_started;not null" json:"status"`
	ProgressPercentage float64        `gorm:"default:0" json:"progress_percentage"`
	MaterialsCompleted int            `gorm:"default:0" json:"materials_completed"`
	TotalMaterials     int            `gorm:"default:0" json:"total_materials"`
	StartedAt          *time.Time     `json:"startedAt"`
	CompletedAt        *time.Time     `json:"completedAt"`
}

// CalculateProgress derives the percentage and status from the completed /
// total counters. Safe to call repeatedly: started_at and completed_at are
// set on first transition and never overwritten.
func (p *UserModuleProgress) CalculateProgress() {
	if p.TotalMaterials <= 0 {
		p.ProgressPercentage = 0
		return
	}
	p.ProgressPercentage = float64(p.MaterialsCompleted) / float64(p.TotalMaterials) * 100
	now := time.Now().UTC()
	if p.ProgressPercentage >= 100 {
		p.Status = ProgressCompleted
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	} else if p.ProgressPercentage > 0 {
		p.Status = ProgressInProgress
		p.CompletedAt = nil
		if p.StartedAt == nil {
			p.StartedAt = &now
		}
	}
}
