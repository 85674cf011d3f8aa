package consts

import (
	"fmt"
	"time"
)

// Roles a user can hold inside an organization. Role mutations caused by
// request approval go through the approval service only.
const (
	RoleTeamMember      = "team_member"
	RoleApprovalManager = "approval_manager"
	RoleAdmin           = "admin"
)

// Admin request statuses. pending is the only non-terminal state.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusDenied   = "denied"
	RequestStatusExpired  = "expired"
)

// Resolution actions.
const (
	ActionApprove = "approve"
	ActionDeny    = "deny"
)

// RequestTTL bounds both the request's life and the resubmission window.
const RequestTTL = 24 * time.Hour

// Realtime event types pushed over the websocket hub.
const (
	EventNewAdminRequest = "new_admin_request"
	EventRoleUpdated     = "role_updated"
	EventNotification    = "notification"
	EventMasterUpdate    = "master_update"
)

// Notification types stored in the inbox.
const (
	NotificationAdminRequestNew      = "admin_request_new"
	NotificationAdminRequestApproved = "admin_request_approved"
	NotificationAdminRequestDenied   = "admin_request_denied"
)

// Cache key builders. Keys carry the organization id wherever a grouped
// invalidation needs to reach them by prefix.
func OrgSettingsKey(orgID string) string {
	return fmt.Sprintf("org:settings:%s", orgID)
}

func OrgApproversPrefix(orgID string) string {
	return fmt.Sprintf("org:approvers:%s:", orgID)
}

func OrgApproversKey(orgID, role string) string {
	return OrgApproversPrefix(orgID) + role
}

func LeaveTypesKey(orgID string) string {
	return fmt.Sprintf("leave:types:%s", orgID)
}

func LeaveBalancePrefix(orgID string) string {
	return fmt.Sprintf("leave:balance:%s:", orgID)
}

func LeaveBalanceKey(orgID, userID string, year int) string {
	return fmt.Sprintf("%s%s:%d", LeaveBalancePrefix(orgID), userID, year)
}

func UserInfoKey(userID string) string {
	return fmt.Sprintf("user:info:%s", userID)
}
