package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/worklane/worklane/internal/pkg/queue"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/ws"
)

// In-memory fakes for the repository interfaces. The admin request fake
// reproduces the store's conditional-update semantics so the single-winner
// behavior can be tested without a database.

type fakeAdminRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.AdminRequest
}

func newFakeAdminRequestRepo() *fakeAdminRequestRepo {
	return &fakeAdminRequestRepo{requests: make(map[string]*model.AdminRequest)}
}

func (f *fakeAdminRequestRepo) Create(req *model.AdminRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.PendingFlag != nil {
		for _, r := range f.requests {
			if r.UserId == req.UserId && r.PendingFlag != nil {
				return repo.ErrDuplicatePending
			}
		}
	}
	cp := *req
	f.requests[req.RequestId] = &cp
	return nil
}

func (f *fakeAdminRequestRepo) PendingByUser(userID string) (*model.AdminRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.UserId == userID && r.Status == consts.RequestStatusPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAdminRequestRepo) LatestDecidedByUser(userID string) (*model.AdminRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.AdminRequest
	for _, r := range f.requests {
		if r.UserId != userID {
			continue
		}
		if r.Status != consts.RequestStatusApproved && r.Status != consts.RequestStatusDenied {
			continue
		}
		if latest == nil || r.RequestedAt.After(latest.RequestedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repo.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeAdminRequestRepo) ByToken(token string) (*model.AdminRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.ApprovalToken == token {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAdminRequestRepo) ByIDInOrg(requestID, orgID string) (*model.AdminRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok || r.OrganizationId != orgID {
		return nil, repo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeAdminRequestRepo) ListPendingForOrg(orgID string, now time.Time) ([]model.AdminRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AdminRequest
	for _, r := range f.requests {
		if r.OrganizationId == orgID && r.Status == consts.RequestStatusPending &&
			r.ExpiresAt.After(now) && r.TargetAdminEmail != nil {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeAdminRequestRepo) MarkProcessed(requestID, status, processedBy, reason string, processedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok || r.Status != consts.RequestStatusPending {
		return false, nil
	}
	r.Status = status
	r.ProcessedAt = &processedAt
	r.ProcessedBy = processedBy
	r.Reason = reason
	r.PendingFlag = nil
	return true, nil
}

func (f *fakeAdminRequestRepo) MarkExpired(requestID string, processedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok || r.Status != consts.RequestStatusPending {
		return false, nil
	}
	r.Status = consts.RequestStatusExpired
	r.ProcessedAt = &processedAt
	r.PendingFlag = nil
	return true, nil
}

func (f *fakeAdminRequestRepo) ExpireOverdue(now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.requests {
		if r.Status == consts.RequestStatusPending && r.ExpiresAt.Before(now) {
			r.Status = consts.RequestStatusExpired
			at := now
			r.ProcessedAt = &at
			r.PendingFlag = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeAdminRequestRepo) get(requestID string) *model.AdminRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

type fakeUserRepo struct {
	mu            sync.Mutex
	users         map[string]*model.User
	roleUpdateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) add(u model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := u
	f.users[u.UserId] = &cp
}

func (f *fakeUserRepo) ByID(userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) AdminByEmail(orgID, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.OrganizationId == orgID && strings.EqualFold(u.Email, email) && u.Role == consts.RoleAdmin {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) CountAdmins(orgID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.users {
		if u.OrganizationId == orgID && u.Role == consts.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) ListApprovers(orgID, role string) ([]model.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.UserInfo
	for _, u := range f.users {
		if u.OrganizationId == orgID && u.Role == role {
			out = append(out, *u.Info())
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Masters() ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.IsMaster == 1 {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserId < out[j].UserId })
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(userID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleUpdateErr != nil {
		return f.roleUpdateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) FetchUserInfo(userID string) (*model.UserInfo, error) {
	u, err := f.ByID(userID)
	if err != nil {
		return nil, err
	}
	return u.Info(), nil
}

type fakeOrgRepo struct {
	mu           sync.Mutex
	orgs         map[string]*model.Organization
	countUpdates []int
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[string]*model.Organization)}
}

func (f *fakeOrgRepo) add(o model.Organization) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := o
	f.orgs[o.OrganizationId] = &cp
}

func (f *fakeOrgRepo) ByID(orgID string) (*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[orgID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrgRepo) UpdateAdminCount(orgID string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[orgID]
	if !ok {
		return repo.ErrNotFound
	}
	o.AdminCount = count
	f.countUpdates = append(f.countUpdates, count)
	return nil
}

func (f *fakeOrgRepo) Settings(orgID string) (*model.OrganizationSettings, error) {
	if _, err := f.ByID(orgID); err != nil {
		return nil, err
	}
	return &model.OrganizationSettings{}, nil
}

func (f *fakeOrgRepo) adminCount(orgID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orgs[orgID].AdminCount
}

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []model.Notification
}

func (f *fakeNotificationRepo) Create(n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(userID string, offset, limit int) ([]model.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].RecipientUserId == userID {
			all = append(all, f.rows[i])
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeNotificationRepo) MarkRead(notificationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].NotificationId == notificationID && f.rows[i].RecipientUserId == userID {
			f.rows[i].Read = true
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeNotificationRepo) forRecipient(userID string) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.RecipientUserId == userID {
			out = append(out, n)
		}
	}
	return out
}

// fakeHub records pushed events per user.
type fakeHub struct {
	mu     sync.Mutex
	events map[string][]ws.Event
}

func newFakeHub() *fakeHub {
	return &fakeHub{events: make(map[string][]ws.Event)}
}

func (f *fakeHub) Register(ws.Conn)   {}
func (f *fakeHub) Unregister(ws.Conn) {}

func (f *fakeHub) PushToUser(userID string, event ws.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[userID] = append(f.events[userID], event)
	return 1
}

func (f *fakeHub) BroadcastJSON(event ws.Event) {
	f.PushToUser("*", event)
}

func (f *fakeHub) HasUser(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events[userID]) > 0
}

func (f *fakeHub) CountUsers() int { return 0 }
func (f *fakeHub) CountConns() int { return 0 }

func (f *fakeHub) eventsFor(userID string) []ws.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ws.Event(nil), f.events[userID]...)
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu    sync.Mutex
	sends []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) all() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sends...)
}

// fakeCache is a map-backed ICache so grouped invalidation can be observed.
type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) put(key, val string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = val
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[key]
	return ok
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.store[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case string:
		f.store[key] = v
	case []byte:
		f.store[key] = string(v)
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.store[k]; ok {
			delete(f.store, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func (f *fakeCache) DelByPrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.store {
		if strings.HasPrefix(k, prefix) {
			delete(f.store, k)
		}
	}
	return nil
}

func (f *fakeCache) Expire(ctx context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

// harness wires the services over the fakes with a synchronous dispatcher,
// so side effects have completed when a service call returns.
type harness struct {
	requests      *fakeAdminRequestRepo
	users         *fakeUserRepo
	orgs          *fakeOrgRepo
	notifications *fakeNotificationRepo
	cache         *fakeCache
	hub           *fakeHub
	mailer        *fakeMailer

	adminCount          *AdminCountService
	notificationService *NotificationService
	requestService      *AdminRequestService
	approvalService     *ApprovalService
}

func newHarness() *harness {
	h := &harness{
		requests:      newFakeAdminRequestRepo(),
		users:         newFakeUserRepo(),
		orgs:          newFakeOrgRepo(),
		notifications: &fakeNotificationRepo{},
		cache:         newFakeCache(),
		hub:           newFakeHub(),
		mailer:        &fakeMailer{},
	}
	h.adminCount = NewAdminCountService(h.users, h.orgs)
	h.notificationService = NewNotificationService(h.notifications, h.hub)

	registry := queue.NewRegistry()
	NewEffects(h.adminCount, NewCacheInvalidator(h.cache), h.notificationService, h.mailer).Register(registry)
	dispatcher := queue.NewInlineSync(registry)

	h.requestService = NewAdminRequestService(
		h.requests, h.users, h.orgs, h.adminCount, dispatcher, h.hub, "http://app.local")
	h.approvalService = NewApprovalService(h.requests, h.users, dispatcher, h.hub)
	return h
}

func (h *harness) seedOrg(orgID string, adminCount int) {
	h.orgs.add(model.Organization{OrganizationId: orgID, Name: orgID, AdminCount: adminCount})
}

func (h *harness) seedUser(userID, email, orgID, role string, master bool) {
	u := model.User{
		UserId:         userID,
		Email:          email,
		OrganizationId: orgID,
		Role:           role,
	}
	if master {
		u.IsMaster = 1
	}
	h.users.add(u)
}

func (h *harness) seedRequest(r model.AdminRequest) {
	if r.Status == "" {
		r.Status = consts.RequestStatusPending
	}
	if r.Status == consts.RequestStatusPending && r.PendingFlag == nil {
		r.PendingFlag = pendingFlag()
	}
	_ = h.requests.Create(&r)
}
