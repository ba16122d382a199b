package service

import (
	"context"
	"log"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/pkg/apperror"
	"github.com/hirestack/hirestack-backend/pkg/realtime"

	"github.com/google/uuid"
)

type NotificationService interface {
	// Notify persists a notification and, if the recipient currently has a
	// live connection, pushes it there. The durable record is the source of
	// truth; the push is best-effort with no retry. An offline recipient
	// simply polls later.
	Notify(ctx context.Context, recipientID uuid.UUID, recipientKind, message, link string) error

	GetNotifications(ctx context.Context, recipientID uuid.UUID, kind string, limit, offset int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID, kind string) (int64, error)
	MarkAsRead(ctx context.Context, id, actorID uuid.UUID, actorKind string) error
	MarkAllAsRead(ctx context.Context, actorID uuid.UUID, actorKind string) error
	Delete(ctx context.Context, id, actorID uuid.UUID, actorKind string) error
	DeleteAll(ctx context.Context, actorID uuid.UUID, actorKind string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	directory *realtime.Directory
	pusher    realtime.Pusher
}

func NewNotificationService(repo repository.NotificationRepository, directory *realtime.Directory, pusher realtime.Pusher) NotificationService {
	return &notificationService{
		repo:      repo,
		directory: directory,
		pusher:    pusher,
	}
}

func (s *notificationService) Notify(ctx context.Context, recipientID uuid.UUID, recipientKind, message, link string) error {
	notification := &model.Notification{
		RecipientID:   recipientID,
		RecipientKind: recipientKind,
		Message:       message,
		Link:          link,
	}

	// 1. Save to DB. If this fails the caller decides what to do; nothing
	// is pushed for a notification that was never persisted.
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	// 2. Live push if the recipient is connected right now. Absence of a
	// directory entry is not an error, and a failed push is only logged.
	address, ok := s.directory.Lookup(realtime.RecipientKey(recipientKind, recipientID.String()))
	if !ok {
		return nil
	}

	if err := s.pusher.Push(ctx, address, "notification", notification); err != nil {
		log.Printf("failed to push notification %s to %s: %v", notification.ID, address, err)
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, recipientID uuid.UUID, kind string, limit, offset int) ([]model.Notification, error) {
	return s.repo.FindByRecipient(ctx, recipientID, kind, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID, kind string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID, kind)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, actorID uuid.UUID, actorKind string) error {
	if err := s.authorizeRecipient(ctx, id, actorID, actorKind); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, actorID uuid.UUID, actorKind string) error {
	return s.repo.MarkAllAsRead(ctx, actorID, actorKind)
}

func (s *notificationService) Delete(ctx context.Context, id, actorID uuid.UUID, actorKind string) error {
	if err := s.authorizeRecipient(ctx, id, actorID, actorKind); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *notificationService) DeleteAll(ctx context.Context, actorID uuid.UUID, actorKind string) error {
	return s.repo.DeleteAllForRecipient(ctx, actorID, actorKind)
}

// authorizeRecipient ensures a recipient only mutates their own notifications.
func (s *notificationService) authorizeRecipient(ctx context.Context, id, actorID uuid.UUID, actorKind string) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.RecipientID != actorID || notification.RecipientKind != actorKind {
		return apperror.ErrForbidden
	}
	return nil
}
