package repo

import (
	"fmt"

	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/database"
)

type INotificationRepository interface {
	Create(n *model.Notification) error
	ListByRecipient(userID string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(notificationID, userID string) error
}

type NotificationRepo struct {
	db                database.IDatabase
	notificationModel *model.Notification
}

func NewNotificationRepo(db database.IDatabase) INotificationRepository {
	return &NotificationRepo{
		db:                db,
		notificationModel: &model.Notification{},
	}
}

func (nr *NotificationRepo) Create(n *model.Notification) error {
	if err := nr.db.Database().Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) ListByRecipient(userID string, offset, limit int) ([]model.Notification, int64, error) {
	var (
		notifications []model.Notification
		total         int64
	)

	tx := nr.db.Database().Table(nr.notificationModel.TableName()).
		Where("recipient_user_id = ?", userID)

	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	err := tx.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

func (nr *NotificationRepo) MarkRead(notificationID, userID string) error {
	res := nr.db.Database().Table(nr.notificationModel.TableName()).
		Where("notification_id = ? AND recipient_user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
