package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

// DashboardRepository serves the aggregate queries behind the compliance
// dashboard.
type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

type CourseComplianceRow struct {
	CourseID    uint    `json:"courseId"`
	Title       string  `json:"title"`
	Enrolled    int64   `json:"enrolled"`
	Completed   int64   `json:"completed"`
	AvgProgress float64 `json:"avgProgress"`
}

func (r *DashboardRepository) CourseCompliance() ([]CourseComplianceRow, error) {
	var rows []CourseComplianceRow
	err := r.DB.Model(&model.Enrollment{}).
		Select(`enrollments.course_id,
			courses.title,
			COUNT(*) AS enrolled,
			SUM(CASE WHEN enrollments.status = ? THEN 1 ELSE 0 END) AS completed,
			AVG(enrollments.progress) AS avg_progress`, model.EnrollmentCompleted).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Group("enrollments.course_id, courses.title").
		Scan(&rows).Error
	return rows, err
}

func (r *DashboardRepository) CountActiveWorkers() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Worker{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *DashboardRepository) CountCertificates() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).
		Where("status = ?", model.CertificateIssued).
		Count(&count).Error
	return count, err
}

func (r *DashboardRepository) CountPendingReinductions(year int) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ReinductionRecord{}).
		Where("year = ? AND status <> ?", year, model.ReinductionCompleted).
		Count(&count).Error
	return count, err
}
