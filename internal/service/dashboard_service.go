package service

import (
	"time"

	"sst_backend/internal/repository"
)

// DashboardService assembles the compliance overview for supervisors.
type DashboardService struct {
	DashboardRepo *repository.DashboardRepository
}

func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{DashboardRepo: dashboardRepo}
}

type DashboardOverview struct {
	ActiveWorkers       int64                            `json:"activeWorkers"`
	CertificatesIssued  int64                            `json:"certificatesIssued"`
	PendingReinductions int64                            `json:"pendingReinductions"`
	Courses             []repository.CourseComplianceRow `json:"courses"`
}

func (s *DashboardService) Overview() (*DashboardOverview, error) {
	workers, err := s.DashboardRepo.CountActiveWorkers()
	if err != nil {
		return nil, err
	}
	certificates, err := s.DashboardRepo.CountCertificates()
	if err != nil {
		return nil, err
	}
	reinductions, err := s.DashboardRepo.CountPendingReinductions(time.Now().UTC().Year())
	if err != nil {
		return nil, err
	}
	courses, err := s.DashboardRepo.CourseCompliance()
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		ActiveWorkers:       workers,
		CertificatesIssued:  certificates,
		PendingReinductions: reinductions,
		Courses:             courses,
	}, nil
}
