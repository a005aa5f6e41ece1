package handler

import (
	"scriptaffiliator/internal/middleware"
	"scriptaffiliator/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localSocketUser = "ws_user_id"

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade binds the socket to the session user, or to ?userId= for
// dashboards without a cookie session.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		if parsed, err := uuid.Parse(c.Query("userId")); err == nil {
			userID = parsed
		}
	}
	c.Locals(localSocketUser, userID.String())
	return c.Next()
}

func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := uuid.Parse(conn.Locals(localSocketUser).(string))
		client := ws.NewClient(userID, conn)
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		for {
			// keep alive, clients only listen
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
