package model

import "time"

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

type CourseType string

const (
	CourseInduction   CourseType = "induction"
	CourseReinduction CourseType = "reinduction"
	CourseTraining    CourseType = "training"
	CourseOptional    CourseType = "optional"
)

type MaterialType string

const (
	MaterialPDF   MaterialType = "pdf"
	MaterialVideo MaterialType = "video"
	MaterialLink  MaterialType = "link"
)

// swagger:model
type Course struct {
	BaseModel
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	CourseType   CourseType   `gorm:"size:20;default:training" json:"courseType"`
	Status       CourseStatus `gorm:"size:20;default:draft" json:"status"`
	PassingScore float64      `gorm:"default:70" json:"passingScore"`
	DurationHrs  float64      `json:"durationHours"`
	CreatedBy    uint         `json:"createdBy"`
	PublishedAt  *time.Time   `json:"publishedAt"`

	Modules []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

// swagger:model
type CourseModule struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	OrderIndex  int    `gorm:"default:0" json:"orderIndex"`

	Materials []CourseMaterial `gorm:"foreignKey:ModuleID" json:"materials,omitempty"`
}

// swagger:model
type CourseMaterial struct {
	BaseModel
	ModuleID     uint         `gorm:"index;not null" json:"moduleId"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	MaterialType MaterialType `gorm:"size:20;not null" json:"materialType"`
	FileURL      string       `gorm:"size:500" json:"fileUrl"`
	// Video length in seconds, probed with ffmpeg on upload.
	DurationSeconds float64 `json:"durationSeconds"`
	OrderIndex      int     `gorm:"default:0" json:"orderIndex"`
}
