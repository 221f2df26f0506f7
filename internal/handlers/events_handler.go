package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/putrawijaya/trackdev_be/internal/models"
	"github.com/putrawijaya/trackdev_be/internal/realtime"
	"github.com/putrawijaya/trackdev_be/internal/utils"
)

type EventsHandler struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	JWTSecret string
}

func NewEventsHandler(db *gorm.DB, hub *realtime.Hub, jwtSecret string) *EventsHandler {
	return &EventsHandler{DB: db, Hub: hub, JWTSecret: jwtSecret}
}

// WebSocketHandler authenticates via the token query param (websocket
// clients cannot set an Authorization header) and streams status events for
// the connected user until the peer goes away.
func (h *EventsHandler) WebSocketHandler(c *websocket.Conn) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		log.Println("ws events: token parameter missing")
		c.Close()
		return
	}

	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		log.Printf("ws events: invalid token: %v", err)
		c.Close()
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		log.Printf("ws events: user %s not found", claims.UserID)
		c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("ws events: user %s disconnected", user.ID)
	}()

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("ws events: write error: %v", err)
				return
			}
		}
	}()

	// Read loop keeps the connection alive; inbound payloads are ignored.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
