package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/worklane/worklane/internal/pkg/notify"
	"github.com/worklane/worklane/internal/pkg/queue"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/id"
	"github.com/worklane/worklane/pkg/log"
	"github.com/worklane/worklane/pkg/safe"
	"github.com/worklane/worklane/pkg/ws"
)

// AdminRequestService owns submission and inspection of admin access
// requests. The request row is the source of truth; everything that happens
// after a committed insert (mail, inbox rows, realtime pushes) is a
// best-effort side effect.
type AdminRequestService struct {
	requestRepo repo.IAdminRequestRepository
	userRepo    repo.IUserRepository
	orgRepo     repo.IOrganizationRepository
	adminCount  *AdminCountService
	dispatcher  queue.Dispatcher
	hub         ws.Hub
	baseURL     string
}

func NewAdminRequestService(
	requestRepo repo.IAdminRequestRepository,
	userRepo repo.IUserRepository,
	orgRepo repo.IOrganizationRepository,
	adminCount *AdminCountService,
	dispatcher queue.Dispatcher,
	hub ws.Hub,
	baseURL string,
) *AdminRequestService {
	return &AdminRequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		orgRepo:     orgRepo,
		adminCount:  adminCount,
		dispatcher:  dispatcher,
		hub:         hub,
		baseURL:     baseURL,
	}
}

// Create submits a new admin access request for the calling user.
//
// The checks run in a fixed order: already-admin, pending duplicate, rate
// window, then routing. Routing depends on the live admin count, not the
// stored counter: when the org has at least one admin the requester must
// name one of them, and when it has none the request goes to the master
// operators. The pending-duplicate check is advisory; the unique index on
// (user_id, pending_flag) is what actually closes the race between two
// concurrent submissions.
func (s *AdminRequestService) Create(userID string, req *model.CreateAdminRequestReq) (*model.AdminRequestSummary, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role == consts.RoleAdmin {
		return nil, ErrAlreadyAdmin
	}

	// An overdue pending row does not block; it gets its lazy expiry here.
	if pending, err := s.requestRepo.PendingByUser(userID); err == nil {
		if !pending.Expired(time.Now()) {
			return nil, ErrPendingExists
		}
		s.expireLazily(pending)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	// The resubmission window runs from the previous request's submission
	// time, regardless of how that request ended.
	if last, err := s.requestRepo.LatestDecidedByUser(userID); err == nil {
		if time.Since(last.RequestedAt) < consts.RequestTTL {
			return nil, ErrRateLimited
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	if _, err := s.orgRepo.ByID(user.OrganizationId); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}

	liveAdmins, err := s.adminCount.Reconcile(user.OrganizationId)
	if err != nil {
		return nil, err
	}

	var (
		targetEmail *string
		recipients  []model.User
		routedTo    string
	)
	if liveAdmins > 0 {
		email := strings.TrimSpace(req.TargetAdminEmail)
		if email == "" {
			return nil, ErrInvalidTarget
		}
		target, err := s.userRepo.AdminByEmail(user.OrganizationId, email)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrInvalidTarget
			}
			return nil, err
		}
		targetEmail = &target.Email
		recipients = []model.User{*target}
		routedTo = "admin"
	} else {
		masters, err := s.userRepo.Masters()
		if err != nil {
			return nil, err
		}
		recipients = masters
		routedTo = "master"
	}

	token, err := id.GetSecureToken(32)
	if err != nil {
		log.Errorw("approval token generation failed", "userId", user.UserId, "err", err)
		return nil, err
	}

	now := time.Now()
	request := &model.AdminRequest{
		RequestId:        id.GetULID(),
		UserId:           user.UserId,
		OrganizationId:   user.OrganizationId,
		TargetAdminEmail: targetEmail,
		ApprovalToken:    token,
		Status:           consts.RequestStatusPending,
		Message:          req.Message,
		PendingFlag:      pendingFlag(),
		RequestedAt:      now,
		ExpiresAt:        now.Add(consts.RequestTTL),
	}
	if err := s.requestRepo.Create(request); err != nil {
		if errors.Is(err, repo.ErrDuplicatePending) {
			return nil, ErrPendingExists
		}
		return nil, err
	}
	adminRequestsCreated.WithLabelValues(routedTo).Inc()
	log.Infow("admin request created",
		"requestId", request.RequestId, "userId", user.UserId,
		"orgId", user.OrganizationId, "routedTo", routedTo)

	s.afterCreate(user, request, recipients, routedTo == "master")
	return request.Summary(), nil
}

// afterCreate fans out mail, inbox rows, and realtime pushes for a freshly
// committed request. Failures here are logged, never surfaced.
func (s *AdminRequestService) afterCreate(user *model.User, request *model.AdminRequest, recipients []model.User, toMaster bool) {
	subject, body := notify.AdminRequestMail(user.Email, request.Message, s.baseURL, request.ApprovalToken)
	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, r.Email)
	}
	if len(to) > 0 {
		s.enqueue(queue.TypeEmailSend, queue.EmailPayload{To: to, Subject: subject, Body: body})
	}

	data, err := model.EncodeNotificationData(model.AdminRequestNewData{
		RequestId:      request.RequestId,
		RequesterId:    user.UserId,
		RequesterEmail: user.Email,
		OrganizationId: user.OrganizationId,
		Message:        request.Message,
	})
	if err != nil {
		log.Errorw("encode notification data failed", "requestId", request.RequestId, "err", err)
		return
	}
	for _, r := range recipients {
		s.enqueue(queue.TypeNotifyStore, queue.NotifyPayload{
			RecipientUserId: r.UserId,
			SenderUserId:    user.UserId,
			Type:            consts.NotificationAdminRequestNew,
			Title:           "New admin access request",
			Message:         user.Email + " requested admin access",
			Data:            data,
		})
	}

	// Only master-routed requests get a dedicated realtime event; a targeted
	// org admin already hears about it through the inbox push above.
	if s.hub == nil || !toMaster {
		return
	}
	event := ws.Event{Type: consts.EventMasterUpdate, Data: ws.Event{
		Type: consts.EventNewAdminRequest,
		Data: request.Summary(),
	}}
	targets := recipients
	safe.Go(func() {
		for _, r := range targets {
			s.hub.PushToUser(r.UserId, event)
		}
	})
}

// Status answers the requester's poll: whether they have a live pending
// request, its projection, and whether the org currently has any admin.
// A pending request found past its deadline is flipped to expired here,
// on the read path.
func (s *AdminRequestService) Status(userID string) (*model.AdminRequestStatusResp, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := &model.AdminRequestStatusResp{}

	liveAdmins, err := s.adminCount.Reconcile(user.OrganizationId)
	if err != nil {
		return nil, err
	}
	resp.OrganizationHasAdmin = liveAdmins > 0

	pending, err := s.requestRepo.PendingByUser(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}
	if pending.Expired(time.Now()) {
		s.expireLazily(pending)
		return resp, nil
	}
	resp.HasPendingRequest = true
	resp.PendingRequest = pending.Summary()
	return resp, nil
}

// ListPending returns the organization's open requests for the approver
// dashboard. Only requests routed to an org admin show up here; master-routed
// requests belong to the master surface.
func (s *AdminRequestService) ListPending(orgID string) ([]model.AdminRequestSummary, error) {
	requests, err := s.requestRepo.ListPendingForOrg(orgID, time.Now())
	if err != nil {
		return nil, err
	}
	summaries := make([]model.AdminRequestSummary, 0, len(requests))
	for i := range requests {
		summaries = append(summaries, *requests[i].Summary())
	}
	return summaries, nil
}

// expireLazily flips an overdue pending request to expired. Losing the flip
// to a concurrent resolver is fine; somebody moved the row off pending.
func (s *AdminRequestService) expireLazily(request *model.AdminRequest) {
	won, err := s.requestRepo.MarkExpired(request.RequestId, time.Now())
	if err != nil {
		log.Errorw("lazy expiry failed", "requestId", request.RequestId, "err", err)
		return
	}
	if won {
		adminRequestsExpired.Inc()
		log.Infow("admin request expired lazily", "requestId", request.RequestId)
	}
}

func (s *AdminRequestService) enqueue(taskType string, payload any) {
	enqueueTask(s.dispatcher, taskType, payload)
}

// enqueueTask hands a side-effect task to the dispatcher. An enqueue failure
// only loses a best-effort effect, so it is logged rather than returned.
func enqueueTask(d queue.Dispatcher, taskType string, payload any) {
	raw, err := sonic.Marshal(payload)
	if err != nil {
		log.Errorw("marshal task payload failed", "type", taskType, "err", err)
		return
	}
	if err := d.Enqueue(context.Background(), taskType, raw); err != nil {
		log.Errorw("enqueue task failed", "type", taskType, "err", err)
	}
}

func pendingFlag() *int {
	one := 1
	return &one
}
