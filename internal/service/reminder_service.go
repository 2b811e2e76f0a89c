package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderService nudges users who are nearly done but blocked on pending
// requirements, and workers whose yearly reinduction is coming due. Redis
// SETNX keys with a TTL keep each nudge from repeating within the dedup
// window.
type ReminderService struct {
	EnrollmentRepo    *repository.EnrollmentRepository
	NotificationRepo  *repository.NotificationRepository
	ReinductionRepo   *repository.ReinductionRepository
	WorkerRepo        *repository.WorkerRepository
	CompletionService *CompletionService
	Redis             *redis.Client
	DB                *gorm.DB

	mu          sync.RWMutex
	dedupWindow time.Duration
}

func NewReminderService(
	enrollmentRepo *repository.EnrollmentRepository,
	notificationRepo *repository.NotificationRepository,
	reinductionRepo *repository.ReinductionRepository,
	workerRepo *repository.WorkerRepository,
	completionService *CompletionService,
	rdb *redis.Client,
	dedupWindow time.Duration,
	db *gorm.DB,
) *ReminderService {
	s := &ReminderService{
		EnrollmentRepo:    enrollmentRepo,
		NotificationRepo:  notificationRepo,
		ReinductionRepo:   reinductionRepo,
		WorkerRepo:        workerRepo,
		CompletionService: completionService,
		Redis:             rdb,
		DB:                db,
	}
	s.SetDedupWindow(dedupWindow)
	return s
}

// SetDedupWindow adjusts the nudge dedup TTL. Non-positive values fall back
// to 24h. Safe to call while a sweep is running; config hot reload uses it.
func (s *ReminderService) SetDedupWindow(d time.Duration) {
	if d <= 0 {
		d = 24 * time.Hour
	}
	s.mu.Lock()
	s.dedupWindow = d
	s.mu.Unlock()
}

func (s *ReminderService) dedup() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dedupWindow
}

// Run executes one reminder sweep. Called from the background ticker.
func (s *ReminderService) Run(ctx context.Context) error {
	if err := s.remindPendingRequirements(ctx); err != nil {
		return err
	}
	return s.remindReinductionsDue(ctx)
}

// remindPendingRequirements finds active enrollments sitting at the capped
// aggregate and tells the user what is still missing.
func (s *ReminderService) remindPendingRequirements(ctx context.Context) error {
	var enrollments []model.Enrollment
	err := s.DB.
		Where("status = ? AND progress >= ?", model.EnrollmentActive, util.CompletionEligibilityThreshold).
		Find(&enrollments).Error
	if err != nil {
		return err
	}

	for i := range enrollments {
		e := &enrollments[i]
		status, err := s.CompletionService.EvaluateRequirements(e.UserID, e.CourseID)
		if err != nil {
			logger.Log.Warn("Requirement check failed during reminder sweep",
				zap.Uint("enrollmentId", e.ID), zap.Error(err))
			continue
		}
		if !status.Eligible || status.RequirementsMet {
			continue
		}

		key := fmt.Sprintf("reminder:pending:%d:%d", e.UserID, e.ID)
		fresh, err := s.claim(ctx, key)
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}

		pending := append(append([]string{}, status.PendingSurveys...), status.PendingEvaluations...)
		notification := &model.Notification{
			UserID:  e.UserID,
			Type:    model.NotificationPendingRequirements,
			Title:   "Almost there",
			Message: "Your course content is done, but these requirements are still pending: " + strings.Join(pending, ", "),
		}
		if err := s.NotificationRepo.Create(notification); err != nil {
			return err
		}
	}
	return nil
}

// remindReinductionsDue nudges linked users whose yearly reinduction is due
// within 30 days or already overdue.
func (s *ReminderService) remindReinductionsDue(ctx context.Context) error {
	now := time.Now().UTC()
	records, err := s.ReinductionRepo.FindDue(now.Year())
	if err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		if r.DueDate.Sub(now) > 30*24*time.Hour {
			continue
		}

		worker, err := s.WorkerRepo.FindByID(r.WorkerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return err
		}
		if worker.UserID == nil {
			// Unlinked workers have nobody to notify in-app.
			continue
		}

		key := fmt.Sprintf("reminder:reinduction:%d:%d", r.WorkerID, r.Year)
		fresh, err := s.claim(ctx, key)
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}

		notification := &model.Notification{
			UserID:  *worker.UserID,
			Type:    model.NotificationReinductionDue,
			Title:   "Safety reinduction due",
			Message: fmt.Sprintf("Your %d safety reinduction is due on %s.", r.Year, r.DueDate.Format("2006-01-02")),
		}
		if err := s.NotificationRepo.Create(notification); err != nil {
			return err
		}

		if r.Status == model.ReinductionScheduled {
			r.Status = model.ReinductionNotified
			if err := s.ReinductionRepo.Save(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// claim reserves a dedup key; false means someone already sent this nudge
// within the window. Without Redis the sweep degrades to no dedup.
func (s *ReminderService) claim(ctx context.Context, key string) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	return s.Redis.SetNX(ctx, key, 1, s.dedup()).Result()
}
