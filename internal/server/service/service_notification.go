package service

import (
	"errors"

	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/id"
	"github.com/worklane/worklane/pkg/log"
	"github.com/worklane/worklane/pkg/ws"
)

// NotificationService owns the durable inbox. The row is written first;
// the realtime push afterwards is a hint, never a substitute, so a user with
// no open sessions still finds the notification on their next fetch.
type NotificationService struct {
	notificationRepo repo.INotificationRepository
	hub              ws.Hub
}

func NewNotificationService(notificationRepo repo.INotificationRepository, hub ws.Hub) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, hub: hub}
}

// Notify stores one inbox row and pushes it to the recipient's live
// sessions. A failed push is invisible here; a failed store is the error.
func (s *NotificationService) Notify(recipientID, senderID, typ, title, message, data string) (*model.Notification, error) {
	n := &model.Notification{
		NotificationId:  id.GetULID(),
		RecipientUserId: recipientID,
		Type:            typ,
		Title:           title,
		Message:         message,
		Data:            data,
	}
	if senderID != "" {
		n.SenderUserId = &senderID
	}
	if err := s.notificationRepo.Create(n); err != nil {
		return nil, err
	}
	if s.hub != nil {
		delivered := s.hub.PushToUser(recipientID, ws.Event{
			Type: consts.EventNotification,
			Data: n,
		})
		log.Debugw("notification pushed",
			"notificationId", n.NotificationId, "recipient", recipientID, "sessions", delivered)
	}
	return n, nil
}

// List returns one page of the recipient's inbox, newest first, with the
// total row count for pagination.
func (s *NotificationService) List(userID string, offset, limit int) ([]model.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notificationRepo.ListByRecipient(userID, offset, limit)
}

// MarkRead flips the read flag on one of the caller's own notifications.
func (s *NotificationService) MarkRead(notificationID, userID string) error {
	if err := s.notificationRepo.MarkRead(notificationID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
