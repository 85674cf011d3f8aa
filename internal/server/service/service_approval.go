package service

import (
	"errors"
	"time"

	"github.com/worklane/worklane/internal/pkg/notify"
	"github.com/worklane/worklane/internal/pkg/queue"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/log"
	"github.com/worklane/worklane/pkg/safe"
	"github.com/worklane/worklane/pkg/ws"
)

// ApprovalService resolves pending requests. Both entry points, the
// dashboard and the emailed token link, converge on one resolve path whose
// only gate is the conditional status flip in the store: exactly one caller
// wins it, everyone else learns the request was already processed.
type ApprovalService struct {
	requestRepo repo.IAdminRequestRepository
	userRepo    repo.IUserRepository
	dispatcher  queue.Dispatcher
	hub         ws.Hub
}

func NewApprovalService(
	requestRepo repo.IAdminRequestRepository,
	userRepo repo.IUserRepository,
	dispatcher queue.Dispatcher,
	hub ws.Hub,
) *ApprovalService {
	return &ApprovalService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		hub:         hub,
	}
}

// ResolveByID resolves a request from the approver dashboard. The request
// must belong to the actor's organization; a request in another org is
// reported as not found, indistinguishable from a nonexistent one.
func (s *ApprovalService) ResolveByID(orgID, actorID string, req *model.ResolveAdminRequestReq) (*model.ResolveResultResp, error) {
	request, err := s.requestRepo.ByIDInOrg(req.RequestId, orgID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return s.resolve(request, actorID, req.Action, req.Reason)
}

// ResolveByToken resolves a request via the single-use token embedded in
// the approval mail. No session is required; holding the token is the
// authorization.
func (s *ApprovalService) ResolveByToken(req *model.ProcessAdminRequestReq) (*model.ResolveResultResp, error) {
	request, err := s.requestRepo.ByToken(req.Token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	processedBy := "master"
	if request.TargetAdminEmail != nil {
		processedBy = *request.TargetAdminEmail
	}
	return s.resolve(request, processedBy, req.Action, req.Reason)
}

func (s *ApprovalService) resolve(request *model.AdminRequest, processedBy, action, reason string) (*model.ResolveResultResp, error) {
	if action != consts.ActionApprove && action != consts.ActionDeny {
		return nil, ErrInvalidAction
	}
	if request.Status != consts.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	now := time.Now()
	if request.Expired(now) {
		won, err := s.requestRepo.MarkExpired(request.RequestId, now)
		if err != nil {
			log.Errorw("expire on resolve failed", "requestId", request.RequestId, "err", err)
		} else if won {
			adminRequestsExpired.Inc()
		}
		return nil, ErrRequestExpired
	}

	status := consts.RequestStatusApproved
	if action == consts.ActionDeny {
		status = consts.RequestStatusDenied
	} else {
		// Reason only travels with denials.
		reason = ""
	}

	won, err := s.requestRepo.MarkProcessed(request.RequestId, status, processedBy, reason, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAlreadyProcessed
	}
	adminRequestsResolved.WithLabelValues(action).Inc()
	log.Infow("admin request resolved",
		"requestId", request.RequestId, "status", status, "processedBy", processedBy)

	if action == consts.ActionApprove {
		// The role flip happens after the status flip so a second approver
		// can never grant the role twice. If it fails the request stays
		// approved and the gap is surfaced to the caller for operator repair.
		if err := s.userRepo.UpdateRole(request.UserId, consts.RoleAdmin); err != nil {
			log.Errorw("role update failed after approval",
				"requestId", request.RequestId, "userId", request.UserId, "err", err)
			return nil, ErrRoleUpdateFailed
		}
	}

	s.afterResolve(request, action, reason)
	return &model.ResolveResultResp{RequestId: request.RequestId, Status: status}, nil
}

// afterResolve fans out everything the decision owes the rest of the
// system: counter reconcile and cache invalidation when a role changed, and
// the requester's notification, mail, and realtime events in every case.
func (s *ApprovalService) afterResolve(request *model.AdminRequest, action, reason string) {
	approved := action == consts.ActionApprove
	if approved {
		enqueueTask(s.dispatcher, queue.TypeAdminCountReconcile, queue.ReconcilePayload{
			OrgId: request.OrganizationId,
		})
		enqueueTask(s.dispatcher, queue.TypeCacheInvalidate, queue.InvalidatePayload{
			Group:  queue.GroupRoleChange,
			OrgId:  request.OrganizationId,
			UserId: request.UserId,
		})
	}

	data, err := model.EncodeNotificationData(model.AdminRequestDecisionData{
		RequestId: request.RequestId,
		Action:    action,
		Reason:    reason,
	})
	if err != nil {
		log.Errorw("encode notification data failed", "requestId", request.RequestId, "err", err)
		return
	}
	subject, body := notify.DecisionMail(approved, reason)
	enqueueTask(s.dispatcher, queue.TypeNotifyStore, queue.NotifyPayload{
		RecipientUserId: request.UserId,
		Type:            model.AdminRequestDecisionData{Action: action}.NotificationType(),
		Title:           subject,
		Message:         body,
		Data:            data,
	})

	if requester, err := s.userRepo.ByID(request.UserId); err != nil {
		log.Errorw("load requester for decision mail failed",
			"requestId", request.RequestId, "userId", request.UserId, "err", err)
	} else {
		enqueueTask(s.dispatcher, queue.TypeEmailSend, queue.EmailPayload{
			To: []string{requester.Email}, Subject: subject, Body: body,
		})
	}

	if approved && s.hub != nil {
		userID := request.UserId
		orgID := request.OrganizationId
		safe.Go(func() {
			s.hub.PushToUser(userID, ws.Event{
				Type: consts.EventRoleUpdated,
				Data: map[string]string{
					"userId":         userID,
					"organizationId": orgID,
					"role":           consts.RoleAdmin,
				},
			})
		})
	}
}
