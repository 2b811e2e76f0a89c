package service

import (
	"sst_backend/internal/model"
	"sst_backend/internal/repository"
)

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{NotificationRepo: notificationRepo}
}

func (s *NotificationService) List(userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	return s.NotificationRepo.FindByUser(userID, unreadOnly, page, limit)
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	return s.NotificationRepo.MarkRead(id, userID)
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.NotificationRepo.CountUnread(userID)
}
