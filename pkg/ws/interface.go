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

// Event is the wire shape of every server-to-client message. Clients must
// treat unknown Type values as ignorable, not fatal.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Conn represents one authenticated WebSocket session.
type Conn interface {
	// ID returns the unique identifier of the connection.
	ID() string

	// UserID returns the authenticated user the connection is indexed under.
	UserID() string

	// ReadMessage reads one message.
	ReadMessage() (messageType int, p []byte, err error)

	// WriteMessage writes one message.
	WriteMessage(messageType int, data []byte) error

	// WriteJSON writes a JSON message.
	WriteJSON(v any) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address.
	RemoteAddr() string
}

// Hub indexes live connections by user and fans events out to them.
// Delivery is best-effort: a user with no open sessions is a no-op, and a
// slow or dead socket never stalls delivery to the others.
type Hub interface {
	// Register adds a connection under its user id.
	Register(conn Conn)

	// Unregister removes a connection; the user's index entry is dropped
	// entirely when its last connection goes away.
	Unregister(conn Conn)

	// PushToUser delivers an event to every open session of one user.
	// Returns the number of sessions the event was handed to.
	PushToUser(userID string, event Event) int

	// BroadcastJSON delivers an event to every connection on the hub.
	BroadcastJSON(event Event)

	// HasUser reports whether the user has at least one open session.
	HasUser(userID string) bool

	// CountUsers returns the number of users with open sessions.
	CountUsers() int

	// CountConns returns the total number of open connections.
	CountConns() int
}

// Handler receives connection lifecycle events.
type Handler interface {
	// OnConnect is called when a connection is established.
	OnConnect(conn Conn) error

	// OnMessage is called for every inbound message.
	OnMessage(conn Conn, messageType int, data []byte) error

	// OnDisconnect is called when a connection goes away.
	OnDisconnect(conn Conn, err error)

	// OnError is called when a handler returns an error.
	OnError(conn Conn, err error)
}

// WebSocket message type constants.
const (
	TextMessage   = 1
	BinaryMessage = 2
	CloseMessage  = 8
	PingMessage   = 9
	PongMessage   = 10
)
