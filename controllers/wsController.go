package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/realtime"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer; the upgrade itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a gorilla connection to the registry's Connection interface
// with a bounded write time.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v interface{}) error {
	w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// WSController upgrades HTTP requests into registered live connections.
type WSController struct {
	registry *realtime.Registry
}

func NewWSController(registry *realtime.Registry) *WSController {
	return &WSController{registry: registry}
}

// Updates serves /ws/updates/:user_id, a per-user channel for assignment,
// status and chat pushes. Inbound frames are discarded; the read loop only
// detects the peer going away.
func (w *WSController) Updates(c *gin.Context) {
	userID := c.Param("user_id")
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	w.serve(c, userID, false)
}

// Feed serves /ws/issues, an anonymous subscription for the public map.
// Inbound JSON frames are re-broadcast to every subscriber (legacy issue
// feed behavior).
func (w *WSController) Feed(c *gin.Context) {
	w.serve(c, "", true)
}

func (w *WSController) serve(c *gin.Context, userID string, rebroadcast bool) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	wrapped := &wsConn{conn: conn}
	w.registry.Register(userID, wrapped)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if !rebroadcast {
			continue
		}
		var payload interface{}
		if err := json.Unmarshal(data, &payload); err != nil {
			continue // non-JSON frames are dropped, not fanned out
		}
		w.registry.Broadcast(payload)
	}

	w.registry.Unregister(wrapped)
	conn.Close()
}
