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

package ws

import (
	"sync"
)

// DefaultHub is the default Hub implementation: a two-level index
// userID -> connID -> Conn guarded by a RWMutex.
type DefaultHub struct {
	mu    sync.RWMutex
	users map[string]map[string]Conn
}

// NewHub creates a new connection hub.
func NewHub() Hub {
	return &DefaultHub{
		users: make(map[string]map[string]Conn),
	}
}

// Register adds a connection under its user id.
func (h *DefaultHub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.users[conn.UserID()]
	if !ok {
		sessions = make(map[string]Conn)
		h.users[conn.UserID()] = sessions
	}
	sessions[conn.ID()] = conn
}

// Unregister removes a connection and drops the user's entry when it was
// the last one. No idle empty sets are retained.
func (h *DefaultHub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.users[conn.UserID()]
	if !ok {
		return
	}
	if _, ok := sessions[conn.ID()]; !ok {
		return
	}
	delete(sessions, conn.ID())
	if len(sessions) == 0 {
		delete(h.users, conn.UserID())
	}
	_ = conn.Close()
}

// PushToUser delivers an event to every open session of one user. Each send
// runs on its own goroutine so a blocked socket is failure-isolated.
func (h *DefaultHub) PushToUser(userID string, event Event) int {
	h.mu.RLock()
	sessions := h.users[userID]
	conns := make([]Conn, 0, len(sessions))
	for _, c := range sessions {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		go func(c Conn) {
			_ = c.WriteJSON(event)
		}(c)
	}
	return len(conns)
}

// BroadcastJSON delivers an event to every connection on the hub.
func (h *DefaultHub) BroadcastJSON(event Event) {
	h.mu.RLock()
	var conns []Conn
	for _, sessions := range h.users {
		for _, c := range sessions {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		go func(c Conn) {
			_ = c.WriteJSON(event)
		}(c)
	}
}

// HasUser reports whether the user has at least one open session.
func (h *DefaultHub) HasUser(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// CountUsers returns the number of users with open sessions.
func (h *DefaultHub) CountUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}

// CountConns returns the total number of open connections.
func (h *DefaultHub) CountConns() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, sessions := range h.users {
		n += len(sessions)
	}
	return n
}
