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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeConn is a test double for Conn that records written events.
type fakeConn struct {
	id     string
	userID string

	mu     sync.Mutex
	events []Event
	block  chan struct{} // non-nil simulates a stuck socket
	closed bool
}

func newFakeConn(id, userID string) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (f *fakeConn) ID() string     { return f.id }
func (f *fakeConn) UserID() string { return f.userID }

func (f *fakeConn) ReadMessage() (int, []byte, error) { return TextMessage, nil, nil }

func (f *fakeConn) WriteMessage(messageType int, data []byte) error { return nil }

func (f *fakeConn) WriteJSON(v any) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v.(Event))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) RemoteAddr() string { return "test" }

func (f *fakeConn) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHubIndexesByUser(t *testing.T) {
	hub := NewHub()

	a1 := newFakeConn("c1", "alice")
	a2 := newFakeConn("c2", "alice")
	b1 := newFakeConn("c3", "bob")

	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b1)

	assert.Equal(t, 2, hub.CountUsers())
	assert.Equal(t, 3, hub.CountConns())
	assert.True(t, hub.HasUser("alice"))
	assert.False(t, hub.HasUser("carol"))
}

func TestHubPushToUserFansOutToAllSessions(t *testing.T) {
	hub := NewHub()

	a1 := newFakeConn("c1", "alice")
	a2 := newFakeConn("c2", "alice")
	b1 := newFakeConn("c3", "bob")

	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b1)

	n := hub.PushToUser("alice", Event{Type: "role_updated", Data: "admin"})
	assert.Equal(t, 2, n)

	waitFor(t, func() bool {
		return len(a1.received()) == 1 && len(a2.received()) == 1
	})
	assert.Empty(t, b1.received())
	assert.Equal(t, "role_updated", a1.received()[0].Type)
}

func TestHubPushToUserNoSessionsIsNoop(t *testing.T) {
	hub := NewHub()
	n := hub.PushToUser("nobody", Event{Type: "notification"})
	assert.Zero(t, n)
}

func TestHubUnregisterDropsEmptyUserEntry(t *testing.T) {
	hub := NewHub()

	a1 := newFakeConn("c1", "alice")
	a2 := newFakeConn("c2", "alice")
	hub.Register(a1)
	hub.Register(a2)

	hub.Unregister(a1)
	assert.True(t, hub.HasUser("alice"))
	assert.Equal(t, 1, hub.CountConns())

	hub.Unregister(a2)
	assert.False(t, hub.HasUser("alice"))
	assert.Zero(t, hub.CountUsers())
	assert.True(t, a2.closed)
}

func TestHubSlowSocketDoesNotStallOthers(t *testing.T) {
	hub := NewHub()

	stuck := newFakeConn("c1", "alice")
	stuck.block = make(chan struct{})
	healthy := newFakeConn("c2", "alice")

	hub.Register(stuck)
	hub.Register(healthy)

	hub.PushToUser("alice", Event{Type: "notification"})

	// the healthy session gets the event while the stuck one blocks
	waitFor(t, func() bool { return len(healthy.received()) == 1 })
	assert.Empty(t, stuck.received())

	close(stuck.block)
	waitFor(t, func() bool { return len(stuck.received()) == 1 })
}

func TestHubConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newFakeConn(fmt.Sprintf("conn-%d", i), "user")
			hub.Register(c)
			hub.PushToUser("user", Event{Type: "notification"})
			hub.Unregister(c)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, hub.CountConns())
	assert.False(t, hub.HasUser("user"))
}
