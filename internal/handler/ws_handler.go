package handler

import (
	"hotel-portfolio-api/internal/middleware"
	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade must run after RequireAuth so the connection knows its user.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	c.Locals("ws_user", middleware.CurrentUser(c))
	return c.Next()
}

func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals("ws_user").(*model.User)
		if !ok || user == nil {
			conn.Close()
			return
		}

		client := ws.NewClient(user.ID, conn)
		if !h.hub.Join(client) {
			conn.Close()
			return
		}
		defer h.hub.Leave(client)

		for {
			// clients only listen; reads keep the connection alive
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
