package repository

import (
	"context"
	"errors"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, kind string, limit, offset int) ([]model.Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID, kind string) (int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID, kind string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForRecipient(ctx context.Context, recipientID uuid.UUID, kind string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID, kind string, limit, offset int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND recipient_kind = ?", recipientID, kind).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID, kind string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND recipient_kind = ? AND is_read = ?", recipientID, kind, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID, kind string) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND recipient_kind = ? AND is_read = ?", recipientID, kind, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Notification{}).Error
}

func (r *notificationRepository) DeleteAllForRecipient(ctx context.Context, recipientID uuid.UUID, kind string) error {
	return r.db.WithContext(ctx).
		Where("recipient_id = ? AND recipient_kind = ?", recipientID, kind).
		Delete(&model.Notification{}).Error
}
