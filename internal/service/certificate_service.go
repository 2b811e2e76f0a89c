package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"
	"sst_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentRenderer turns an issued certificate into a downloadable artifact.
type DocumentRenderer interface {
	Render(certificate *model.Certificate, user *model.User, course *model.Course) ([]byte, string, error)
}

// CertificateService issues one certificate per (user, course) on the first
// passing evaluation. Rendering and upload are best-effort: a renderer or
// storage outage must not lose the certificate row.
type CertificateService struct {
	CertificateRepo *repository.CertificateRepository
	UserRepo        *repository.UserRepository
	CourseRepo      *repository.CourseRepository
	Storage         StorageProvider
	Renderer        DocumentRenderer
	DB              *gorm.DB
}

func NewCertificateService(
	certificateRepo *repository.CertificateRepository,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	storage StorageProvider,
	renderer DocumentRenderer,
	db *gorm.DB,
) *CertificateService {
	return &CertificateService{
		CertificateRepo: certificateRepo,
		UserRepo:        userRepo,
		CourseRepo:      courseRepo,
		Storage:         storage,
		Renderer:        renderer,
		DB:              db,
	}
}

// IssueForEvaluation creates the certificate after a passing attempt.
// Idempotent: a second passing attempt finds the existing row and returns it.
func (s *CertificateService) IssueForEvaluation(userID uint, evaluation *model.Evaluation, attempt *model.UserEvaluation) error {
	if existing, err := s.CertificateRepo.FindByUserAndCourse(userID, evaluation.CourseID); err == nil {
		logger.Log.Debug("Certificate already issued",
			zap.Uint("certificateId", existing.ID),
			zap.Uint("userId", userID))
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	course, err := s.CourseRepo.FindByID(evaluation.CourseID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	certificate := &model.Certificate{
		UserID:            userID,
		CourseID:          course.ID,
		CertificateNumber: newCertificateNumber(now),
		Title:             course.Title,
		Description:       fmt.Sprintf("Completion of %q with a score of %.1f%%", course.Title, attempt.Percentage),
		ScoreAchieved:     attempt.Percentage,
		Status:            model.CertificateIssued,
		VerificationCode:  uuid.NewString(),
		CompletionDate:    now,
		IssueDate:         now,
	}

	if err := s.CertificateRepo.Create(certificate); err != nil {
		return err
	}
	monitoring.CertificatesIssued.Inc()

	s.renderAndStore(certificate, course)
	return nil
}

// renderAndStore produces and uploads the document. Failures are logged and
// swallowed; the file URL stays empty until a later re-render.
func (s *CertificateService) renderAndStore(certificate *model.Certificate, course *model.Course) {
	if s.Renderer == nil || s.Storage == nil {
		return
	}

	user, err := s.UserRepo.FindByID(certificate.UserID)
	if err != nil {
		logger.Log.Warn("Certificate render skipped, user lookup failed", zap.Error(err))
		return
	}

	data, contentType, err := s.Renderer.Render(certificate, user, course)
	if err != nil {
		logger.Log.Warn("Certificate render failed",
			zap.Uint("certificateId", certificate.ID),
			zap.Error(err))
		return
	}

	ext := ".pdf"
	if contentType == "text/html" {
		ext = ".html"
	}
	filename := fmt.Sprintf("certificates/%s%s", certificate.CertificateNumber, ext)
	url, err := s.Storage.Upload(context.Background(), filename, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		logger.Log.Warn("Certificate upload failed",
			zap.Uint("certificateId", certificate.ID),
			zap.Error(err))
		return
	}

	certificate.FileURL = url
	if err := s.CertificateRepo.Save(certificate); err != nil {
		logger.Log.Warn("Certificate URL save failed",
			zap.Uint("certificateId", certificate.ID),
			zap.Error(err))
	}
}

func (s *CertificateService) ListByUser(userID uint) ([]model.Certificate, error) {
	return s.CertificateRepo.FindByUser(userID)
}

func (s *CertificateService) GetByID(userID, certificateID uint) (*model.Certificate, error) {
	certificate, err := s.CertificateRepo.FindByID(certificateID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "certificate"}
		}
		return nil, err
	}
	if certificate.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return certificate, nil
}

// Verify resolves a certificate by its public verification code.
func (s *CertificateService) Verify(code string) (*model.Certificate, error) {
	certificate, err := s.CertificateRepo.FindByVerificationCode(code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &util.NotFoundError{Resource: "certificate"}
		}
		return nil, err
	}
	if certificate.Status != model.CertificateIssued {
		return nil, &util.InvalidStateError{Msg: "certificate has been revoked"}
	}
	return certificate, nil
}

func (s *CertificateService) Revoke(certificateID uint) error {
	certificate, err := s.CertificateRepo.FindByID(certificateID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &util.NotFoundError{Resource: "certificate"}
		}
		return err
	}
	certificate.Status = model.CertificateRevoked
	return s.CertificateRepo.Save(certificate)
}

func newCertificateNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("SST-%d-%s", now.Year(), suffix)
}
