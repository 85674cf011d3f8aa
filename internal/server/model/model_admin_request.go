package model

import (
	"time"
)

// AdminRequest is one user's attempt to gain the admin role for their
// organization. Status is monotonic: once approved, denied, or expired it
// never changes again.
type AdminRequest struct {
	BaseModel
	RequestId      string `gorm:"column:request_id" json:"requestId"`
	UserId         string `gorm:"column:user_id" json:"userId"`
	OrganizationId string `gorm:"column:organization_id" json:"organizationId"`
	// TargetAdminEmail is nil when the request is routed to the master
	// operator (the org had no admins at submission time).
	TargetAdminEmail *string `gorm:"column:target_admin_email" json:"targetAdminEmail"`
	ApprovalToken    string  `gorm:"column:approval_token" json:"-"`
	Status           string  `gorm:"column:status;default:pending" json:"status"`
	Message          string  `gorm:"column:message" json:"message"`
	// PendingFlag is 1 while status is pending and NULL afterwards; together
	// with the unique index uq_admin_request_pending(user_id, pending_flag)
	// it lets the store itself reject a second concurrent pending insert.
	PendingFlag *int       `gorm:"column:pending_flag" json:"-"`
	RequestedAt time.Time  `gorm:"column:requested_at" json:"requestedAt"`
	ExpiresAt   time.Time  `gorm:"column:expires_at" json:"expiresAt"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processedAt"`
	ProcessedBy string     `gorm:"column:processed_by" json:"processedBy"`
	// Reason is only meaningful for denied requests.
	Reason string `gorm:"column:reason" json:"reason"`
}

func (AdminRequest) TableName() string {
	return "t_admin_request"
}

// Expired reports whether the request outlived its deadline. Callers that
// observe this on a pending row are expected to flip it to expired lazily.
func (r *AdminRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// CreateAdminRequestReq is the submission payload.
type CreateAdminRequestReq struct {
	TargetAdminEmail string `json:"targetAdminEmail"`
	Message          string `json:"message"`
}

// ResolveAdminRequestReq resolves a request from the dashboard.
type ResolveAdminRequestReq struct {
	RequestId string `json:"requestId"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

// ProcessAdminRequestReq resolves a request via the emailed token link.
type ProcessAdminRequestReq struct {
	Token  string `json:"token"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// AdminRequestSummary is the client-facing projection of a request.
type AdminRequestSummary struct {
	RequestId        string     `json:"requestId"`
	UserId           string     `json:"userId"`
	OrganizationId   string     `json:"organizationId"`
	TargetAdminEmail *string    `json:"targetAdminEmail"`
	Status           string     `json:"status"`
	Message          string     `json:"message"`
	RequestedAt      time.Time  `json:"requestedAt"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	ProcessedAt      *time.Time `json:"processedAt,omitempty"`
	Reason           string     `json:"reason,omitempty"`
}

func (r *AdminRequest) Summary() *AdminRequestSummary {
	return &AdminRequestSummary{
		RequestId:        r.RequestId,
		UserId:           r.UserId,
		OrganizationId:   r.OrganizationId,
		TargetAdminEmail: r.TargetAdminEmail,
		Status:           r.Status,
		Message:          r.Message,
		RequestedAt:      r.RequestedAt,
		ExpiresAt:        r.ExpiresAt,
		ProcessedAt:      r.ProcessedAt,
		Reason:           r.Reason,
	}
}

// AdminRequestStatusResp answers the requester's status poll.
type AdminRequestStatusResp struct {
	HasPendingRequest    bool                 `json:"hasPendingRequest"`
	PendingRequest       *AdminRequestSummary `json:"pendingRequest"`
	OrganizationHasAdmin bool                 `json:"organizationHasAdmin"`
}

// ResolveResultResp is returned by both resolution entry points.
type ResolveResultResp struct {
	RequestId string `json:"requestId"`
	Status    string `json:"status"`
}
