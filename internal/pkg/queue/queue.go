// Copyright 2025 Worklane Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package queue carries the best-effort side effects of committed writes: a
// lightweight outbox where failures are observable and retried, but never
// required for the primary operation to be considered complete.
package queue

import (
	"context"
	"fmt"
	"sync"
)

// Task type constants.
const (
	TypeAdminCountReconcile = "admin:count:reconcile"
	TypeCacheInvalidate     = "cache:invalidate"
	TypeNotifyStore         = "notify:store"
	TypeEmailSend           = "email:send"
)

// Invalidation groups. A group names the write that caused the
// invalidation, not the individual keys it reaches.
const (
	GroupRoleChange  = "role_change"
	GroupLeavePolicy = "leave_policy"
)

// ReconcilePayload recomputes one organization's admin count.
type ReconcilePayload struct {
	OrgId string `json:"orgId"`
}

// InvalidatePayload invalidates one grouped cache unit.
type InvalidatePayload struct {
	Group  string `json:"group"`
	OrgId  string `json:"orgId"`
	UserId string `json:"userId,omitempty"`
}

// NotifyPayload writes a durable inbox row and hints live sessions.
type NotifyPayload struct {
	RecipientUserId string `json:"recipientUserId"`
	SenderUserId    string `json:"senderUserId,omitempty"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	Data            string `json:"data,omitempty"` // encoded NotificationData
}

// EmailPayload sends one email.
type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Handler processes one task payload.
type Handler func(ctx context.Context, payload []byte) error

// Dispatcher enqueues side-effect tasks after a committed durable write.
// Implementations must not couple task execution to the caller's lifetime.
type Dispatcher interface {
	Enqueue(ctx context.Context, taskType string, payload []byte) error
}

// Registry maps task types to handlers. Registration happens once at
// bootstrap, before any dispatcher starts consuming.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(taskType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskType] = h
}

func (r *Registry) Handler(taskType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[taskType]
	if !ok {
		return nil, fmt.Errorf("no handler registered for task type %s", taskType)
	}
	return h, nil
}
