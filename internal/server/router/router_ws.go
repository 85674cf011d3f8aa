package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/jwt"
	"github.com/worklane/worklane/pkg/log"
	"github.com/worklane/worklane/pkg/ws"
)

func (rt *Router) wsRouter(r fiber.Router) {
	group := r.Group("/ws")
	group.Use(rt.wsUpgrade)
	group.Get("/", ws.Handle(rt.hub, &wsEvents{}))
}

// wsUpgrade authenticates the upgrade. Browsers cannot set an Authorization
// header on a websocket handshake, so the access token travels in the query.
func (rt *Router) wsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	token := c.Query("token")
	if token == "" {
		return http.WithRepErr(c, http.TokenBeEmpty, c.Path())
	}
	claims, err := jwt.ParseToken(token, rt.Http.Auth.SecretKey)
	if err != nil {
		return http.WithRepErr(c, http.InvalidToken, c.Path())
	}
	c.Locals(ws.UserIDLocal, claims.UserId)
	return c.Next()
}

// wsEvents is the connection lifecycle observer. Inbound traffic is limited
// to client-side pings; all real data flows server to client.
type wsEvents struct{}

func (wsEvents) OnConnect(conn ws.Conn) error {
	log.Infow("ws connected", "userId", conn.UserID(), "connId", conn.ID(), "remote", conn.RemoteAddr())
	return nil
}

func (wsEvents) OnMessage(conn ws.Conn, messageType int, data []byte) error {
	if messageType == websocket.TextMessage && string(data) == "ping" {
		return conn.WriteMessage(websocket.TextMessage, []byte("pong"))
	}
	return nil
}

func (wsEvents) OnDisconnect(conn ws.Conn, err error) {
	log.Debugw("ws disconnected", "userId", conn.UserID(), "connId", conn.ID(), "err", err)
}

func (wsEvents) OnError(conn ws.Conn, err error) {
	log.Errorw("ws handler error", "userId", conn.UserID(), "connId", conn.ID(), "err", err)
}
