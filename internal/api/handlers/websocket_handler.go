// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Maximum time to wait for any frame from the client.
const pongWait = 60 * time.Second

type WebSocketHandler struct {
	Hub            *socket.Hub
	Tokens         *auth.TokenIssuer
	Users          database.UserStore
	AllowedOrigins []string
}

func (h *WebSocketHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(h.AllowedOrigins) == 0 || slices.Contains(h.AllowedOrigins, "*") {
				return true
			}
			return slices.Contains(h.AllowedOrigins, origin)
		},
	}
}

// ServeWs subscribes an authenticated client to change events.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}
	user, err := middleware.LoadUser(c, h.Tokens, h.Users, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade websocket connection", "error", err)
		return
	}

	client := socket.NewClient(user.ID.Hex(), user.Permissions.IsAdmin, conn)
	h.Hub.Register(client)
	go client.WritePump()
	defer h.Hub.Unregister(client)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	// Clients only listen; reading drives the control handlers and detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket closed unexpectedly", "user", client.UserID, "error", err)
			}
			return
		}
	}
}
