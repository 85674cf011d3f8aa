package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
)

func seedPendingRequest(h *harness, requestID, userID, orgID string, target *string) {
	h.seedRequest(model.AdminRequest{
		RequestId:        requestID,
		UserId:           userID,
		OrganizationId:   orgID,
		TargetAdminEmail: target,
		ApprovalToken:    "token-" + requestID,
		RequestedAt:      time.Now().Add(-time.Hour),
		ExpiresAt:        time.Now().Add(23 * time.Hour),
	})
}

func TestApproveGrantsRoleAndRepairsDerivedState(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 0)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)

	// warm the caches the role change must invalidate, plus one that must survive
	h.cache.put(consts.UserInfoKey("user-1"), "{}")
	h.cache.put(consts.OrgSettingsKey("org-1"), "{}")
	h.cache.put(consts.OrgApproversKey("org-1", consts.RoleAdmin), "[]")
	h.cache.put(consts.LeaveBalanceKey("org-1", "user-1", 2026), "[]")
	survivor := consts.LeaveBalanceKey("org-1", "user-other", 2026)
	h.cache.put(survivor, "[]")

	result, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1",
		Action:    consts.ActionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, consts.RequestStatusApproved, result.Status)

	stored := h.requests.get("req-1")
	assert.Equal(t, consts.RequestStatusApproved, stored.Status)
	assert.Equal(t, "admin-1", stored.ProcessedBy)
	assert.Nil(t, stored.PendingFlag)
	assert.Empty(t, stored.Reason)

	user, err := h.users.ByID("user-1")
	require.NoError(t, err)
	assert.Equal(t, consts.RoleAdmin, user.Role)

	// counter now reflects both admins
	assert.Equal(t, 2, h.orgs.adminCount("org-1"))

	// role_change group fully invalidated, unrelated key intact
	assert.False(t, h.cache.has(consts.UserInfoKey("user-1")))
	assert.False(t, h.cache.has(consts.OrgSettingsKey("org-1")))
	assert.False(t, h.cache.has(consts.OrgApproversKey("org-1", consts.RoleAdmin)))
	assert.False(t, h.cache.has(consts.LeaveBalanceKey("org-1", "user-1", 2026)))
	assert.True(t, h.cache.has(survivor))

	rows := h.notifications.forRecipient("user-1")
	require.Len(t, rows, 1)
	assert.Equal(t, consts.NotificationAdminRequestApproved, rows[0].Type)

	sends := h.mailer.all()
	require.Len(t, sends, 1)
	assert.Equal(t, []string{"dev@acme.test"}, sends[0].To)

	assert.Eventually(t, func() bool {
		for _, e := range h.hub.eventsFor("user-1") {
			if e.Type == consts.EventRoleUpdated {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestDenyKeepsRoleAndCarriesReason(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)
	h.cache.put(consts.UserInfoKey("user-1"), "{}")

	result, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1",
		Action:    consts.ActionDeny,
		Reason:    "not needed for your role",
	})
	require.NoError(t, err)
	assert.Equal(t, consts.RequestStatusDenied, result.Status)

	stored := h.requests.get("req-1")
	assert.Equal(t, consts.RequestStatusDenied, stored.Status)
	assert.Equal(t, "not needed for your role", stored.Reason)

	user, err := h.users.ByID("user-1")
	require.NoError(t, err)
	assert.Equal(t, consts.RoleTeamMember, user.Role)

	// no role change, no invalidation
	assert.True(t, h.cache.has(consts.UserInfoKey("user-1")))
	assert.Equal(t, 1, h.orgs.adminCount("org-1"))

	rows := h.notifications.forRecipient("user-1")
	require.Len(t, rows, 1)
	assert.Equal(t, consts.NotificationAdminRequestDenied, rows[0].Type)

	data, err := model.DecodeNotificationData(rows[0].Type, rows[0].Data)
	require.NoError(t, err)
	decision, ok := data.(model.AdminRequestDecisionData)
	require.True(t, ok)
	assert.Equal(t, "not needed for your role", decision.Reason)

	sends := h.mailer.all()
	require.Len(t, sends, 1)
	assert.Contains(t, sends[0].Body, "not needed for your role")
}

func TestApproveDropsReason(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)

	_, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1",
		Action:    consts.ActionApprove,
		Reason:    "should not be stored",
	})
	require.NoError(t, err)
	assert.Empty(t, h.requests.get("req-1").Reason)
}

func TestResolveAlreadyProcessed(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)

	_, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1", Action: consts.ActionDeny,
	})
	require.NoError(t, err)

	_, err = h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1", Action: consts.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// the terminal state never moved
	assert.Equal(t, consts.RequestStatusDenied, h.requests.get("req-1").Status)
}

func TestResolveNotFoundAndCrossOrg(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedOrg("org-2", 1)
	h.seedUser("admin-2", "other@corp.test", "org-2", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)

	_, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-ghost", Action: consts.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrRequestNotFound)

	// an admin of another org sees the same not-found
	_, err = h.approvalService.ResolveByID("org-2", "admin-2", &model.ResolveAdminRequestReq{
		RequestId: "req-1", Action: consts.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrRequestNotFound)
	assert.Equal(t, consts.RequestStatusPending, h.requests.get("req-1").Status)
}

func TestResolveExpiredRequest(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	h.seedRequest(model.AdminRequest{
		RequestId:        "req-1",
		UserId:           "user-1",
		OrganizationId:   "org-1",
		TargetAdminEmail: &target,
		RequestedAt:      time.Now().Add(-25 * time.Hour),
		ExpiresAt:        time.Now().Add(-time.Hour),
	})

	_, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1", Action: consts.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrRequestExpired)
	assert.Equal(t, consts.RequestStatusExpired, h.requests.get("req-1").Status)

	user, _ := h.users.ByID("user-1")
	assert.Equal(t, consts.RoleTeamMember, user.Role)
}

func TestResolveInvalidAction(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)

	_, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1", Action: "escalate",
	})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, consts.RequestStatusPending, h.requests.get("req-1").Status)
}

func TestConcurrentResolveSingleWinner(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)

	const n = 10
	var wg sync.WaitGroup
	results := make([]*model.ResolveResultResp, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			action := consts.ActionApprove
			if i%2 == 1 {
				action = consts.ActionDeny
			}
			results[i], errs[i] = h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
				RequestId: "req-1", Action: action,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	var winnerStatus string
	for i := range errs {
		if errs[i] == nil {
			winners++
			winnerStatus = results[i].Status
		} else {
			assert.ErrorIs(t, errs[i], ErrAlreadyProcessed)
		}
	}
	require.Equal(t, 1, winners)
	assert.Equal(t, winnerStatus, h.requests.get("req-1").Status)

	user, _ := h.users.ByID("user-1")
	if winnerStatus == consts.RequestStatusApproved {
		assert.Equal(t, consts.RoleAdmin, user.Role)
	} else {
		assert.Equal(t, consts.RoleTeamMember, user.Role)
	}

	// exactly one decision reached the requester's inbox
	assert.Len(t, h.notifications.forRecipient("user-1"), 1)
}

func TestResolveByTokenRecordsProcessor(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)
	seedPendingRequest(h, "req-2", "user-2", "org-1", nil)
	h.seedUser("user-2", "dev2@acme.test", "org-1", consts.RoleTeamMember, false)

	result, err := h.approvalService.ResolveByToken(&model.ProcessAdminRequestReq{
		Token: "token-req-1", Action: consts.ActionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, consts.RequestStatusApproved, result.Status)
	assert.Equal(t, "boss@acme.test", h.requests.get("req-1").ProcessedBy)

	// master-routed requests are attributed to the master operator
	_, err = h.approvalService.ResolveByToken(&model.ProcessAdminRequestReq{
		Token: "token-req-2", Action: consts.ActionDeny, Reason: "use org admins",
	})
	require.NoError(t, err)
	assert.Equal(t, "master", h.requests.get("req-2").ProcessedBy)

	_, err = h.approvalService.ResolveByToken(&model.ProcessAdminRequestReq{
		Token: "no-such-token", Action: consts.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRoleUpdateFailureLeavesRequestApproved(t *testing.T) {
	h := newHarness()
	h.seedOrg("org-1", 1)
	h.seedUser("admin-1", "boss@acme.test", "org-1", consts.RoleAdmin, false)
	h.seedUser("user-1", "dev@acme.test", "org-1", consts.RoleTeamMember, false)
	target := "boss@acme.test"
	seedPendingRequest(h, "req-1", "user-1", "org-1", &target)
	h.users.roleUpdateErr = errors.New("connection reset")

	_, err := h.approvalService.ResolveByID("org-1", "admin-1", &model.ResolveAdminRequestReq{
		RequestId: "req-1", Action: consts.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrRoleUpdateFailed)

	// the decision stands; the gap is the role, not the request
	assert.Equal(t, consts.RequestStatusApproved, h.requests.get("req-1").Status)

	// side effects are held back until the role actually changed
	assert.Empty(t, h.notifications.forRecipient("user-1"))
	assert.Empty(t, h.mailer.all())
}
