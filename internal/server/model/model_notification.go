package model

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/worklane/worklane/internal/server/consts"
)

// Notification is the durable, user-visible inbox record. Realtime delivery
// is only a hint; this row is the truth for "did I get notified". Rows are
// never mutated except for the read flag.
type Notification struct {
	BaseModel
	NotificationId  string  `gorm:"column:notification_id" json:"notificationId"`
	RecipientUserId string  `gorm:"column:recipient_user_id" json:"recipientUserId"`
	SenderUserId    *string `gorm:"column:sender_user_id" json:"senderUserId"`
	Type            string  `gorm:"column:type" json:"type"`
	Title           string  `gorm:"column:title" json:"title"`
	Message         string  `gorm:"column:message" json:"message"`
	Data            string  `gorm:"column:data" json:"-"` // sonic-encoded NotificationData
	Read            bool    `gorm:"column:is_read;default:0" json:"read"`
}

func (Notification) TableName() string {
	return "t_notification"
}

// NotificationData is the tagged payload stored alongside a notification.
// Each notification type has exactly one payload variant; payloads are
// decoded at the boundary so downstream code never works on untyped maps.
type NotificationData interface {
	NotificationType() string
}

// AdminRequestNewData accompanies a new request landing in an approver's
// inbox.
type AdminRequestNewData struct {
	RequestId      string `json:"requestId"`
	RequesterId    string `json:"requesterId"`
	RequesterEmail string `json:"requesterEmail"`
	OrganizationId string `json:"organizationId"`
	Message        string `json:"message"`
}

func (AdminRequestNewData) NotificationType() string {
	return consts.NotificationAdminRequestNew
}

// AdminRequestDecisionData accompanies the approve/deny outcome delivered to
// the requester.
type AdminRequestDecisionData struct {
	RequestId string `json:"requestId"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
}

func (d AdminRequestDecisionData) NotificationType() string {
	if d.Action == consts.ActionApprove {
		return consts.NotificationAdminRequestApproved
	}
	return consts.NotificationAdminRequestDenied
}

// EncodeNotificationData serializes a payload variant for storage.
func EncodeNotificationData(data NotificationData) (string, error) {
	if data == nil {
		return "", nil
	}
	return sonic.MarshalString(data)
}

// DecodeNotificationData rebuilds the payload variant for a stored row.
func DecodeNotificationData(typ, raw string) (NotificationData, error) {
	if raw == "" {
		return nil, nil
	}
	switch typ {
	case consts.NotificationAdminRequestNew:
		var d AdminRequestNewData
		if err := sonic.UnmarshalString(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case consts.NotificationAdminRequestApproved, consts.NotificationAdminRequestDenied:
		var d AdminRequestDecisionData
		if err := sonic.UnmarshalString(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown notification type: %s", typ)
	}
}
