package service

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/worklane/worklane/internal/pkg/notify"
	"github.com/worklane/worklane/internal/pkg/queue"
	"github.com/worklane/worklane/pkg/log"
)

// Effects binds the side-effect task types to their executors. One instance
// is registered at bootstrap; from then on every committed write reaches
// mail, caches, counters, and inboxes only through these handlers.
type Effects struct {
	adminCount    *AdminCountService
	invalidator   *CacheInvalidator
	notifications *NotificationService
	mailer        notify.IMailer
}

func NewEffects(
	adminCount *AdminCountService,
	invalidator *CacheInvalidator,
	notifications *NotificationService,
	mailer notify.IMailer,
) *Effects {
	return &Effects{
		adminCount:    adminCount,
		invalidator:   invalidator,
		notifications: notifications,
		mailer:        mailer,
	}
}

func (e *Effects) Register(r *queue.Registry) {
	r.Register(queue.TypeAdminCountReconcile, e.handleReconcile)
	r.Register(queue.TypeCacheInvalidate, e.handleInvalidate)
	r.Register(queue.TypeNotifyStore, e.handleNotify)
	r.Register(queue.TypeEmailSend, e.handleEmail)
}

func (e *Effects) handleReconcile(_ context.Context, payload []byte) error {
	var p queue.ReconcilePayload
	if err := sonic.Unmarshal(payload, &p); err != nil {
		return err
	}
	_, err := e.adminCount.Reconcile(p.OrgId)
	return err
}

func (e *Effects) handleInvalidate(ctx context.Context, payload []byte) error {
	var p queue.InvalidatePayload
	if err := sonic.Unmarshal(payload, &p); err != nil {
		return err
	}
	return e.invalidator.Invalidate(ctx, p.Group, p.OrgId, p.UserId)
}

func (e *Effects) handleNotify(_ context.Context, payload []byte) error {
	var p queue.NotifyPayload
	if err := sonic.Unmarshal(payload, &p); err != nil {
		return err
	}
	n, err := e.notifications.Notify(p.RecipientUserId, p.SenderUserId, p.Type, p.Title, p.Message, p.Data)
	if err != nil {
		return err
	}
	log.Debugw("notification stored", "notificationId", n.NotificationId, "type", n.Type)
	return nil
}

func (e *Effects) handleEmail(ctx context.Context, payload []byte) error {
	var p queue.EmailPayload
	if err := sonic.Unmarshal(payload, &p); err != nil {
		return err
	}
	return e.mailer.Send(ctx, p.To, p.Subject, p.Body)
}
