package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"buzz-service/internal/database"
	"buzz-service/internal/middleware"
	"buzz-service/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub is the delivery layer: it maps a user ID to that user's live
// connections and fans events out to them. Best-effort only - no retry, no
// queueing. With redis configured, events travel over pub/sub so every
// instance holding a connection for the user delivers them; without it,
// fan-out is local to this process.
type Hub struct {
	validator middleware.TokenValidator
	redis     *redis.Client
	logger    *zap.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]bool
	subs    map[uuid.UUID]subscription
}

// subscription is the per-user pub/sub handle. Closing it ends the forward
// goroutine.
type subscription interface {
	Close() error
}

func NewHub(validator middleware.TokenValidator, redisClient *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		validator: validator,
		redis:     redisClient,
		logger:    logger,
		clients:   make(map[uuid.UUID]map[*Client]bool),
		subs:      make(map[uuid.UUID]subscription),
	}
}

// Register adds a connection to the user's set. The first connection for a
// user opens that user's redis subscription.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]bool)
	}
	h.clients[c.userID][c] = true
	if h.redis != nil {
		if _, ok := h.subs[c.userID]; !ok {
			pubsub := h.redis.Subscribe(context.Background(), database.UserChannel(c.userID.String()))
			h.subs[c.userID] = pubsub
			go h.forward(c.userID, pubsub)
		}
	}
	h.mu.Unlock()

	middleware.RecordWSConnection()
	h.logger.Info("connection registered", zap.String("userId", c.userID.String()))
}

// Unregister drops a connection; the last one for a user removes the entry
// and closes the user's redis subscription.
func (h *Hub) Unregister(c *Client) {
	var sub subscription

	h.mu.Lock()
	if clients, ok := h.clients[c.userID]; ok {
		if _, exists := clients[c]; exists {
			delete(clients, c)
			close(c.send)
			if len(clients) == 0 {
				delete(h.clients, c.userID)
				sub = h.subs[c.userID]
				delete(h.subs, c.userID)
			}
		}
	}
	h.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			h.logger.Warn("failed to close subscription",
				zap.String("userId", c.userID.String()),
				zap.Error(err))
		}
	}

	middleware.RecordWSDisconnection()
	h.logger.Info("connection unregistered", zap.String("userId", c.userID.String()))
}

// Connections reports how many live connections a user has on this
// instance.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Push delivers an event to all of a user's connections. Implements
// service.Deliverer. A user with no connections is a logged no-op; the
// durable ledgers already hold the state the event announces.
func (h *Hub) Push(userID uuid.UUID, event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event",
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.redis.Publish(ctx, database.UserChannel(userID.String()), payload).Err(); err != nil {
			h.logger.Warn("failed to publish event, falling back to local delivery",
				zap.String("userId", userID.String()),
				zap.Error(err))
			h.pushLocal(userID, payload)
		}
		return
	}

	h.pushLocal(userID, payload)
}

// pushLocal fans a payload out to the user's connections on this instance.
// The sends happen under the read lock: Unregister closes a send channel
// only under the write lock, so a send can never hit a closed channel.
func (h *Hub) pushLocal(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[userID]
	if len(clients) == 0 {
		h.logger.Debug("push dropped, user not connected",
			zap.String("userId", userID.String()))
		return
	}

	for c := range clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop rather than block the coordinator.
			h.logger.Warn("send buffer full, dropping event",
				zap.String("userId", userID.String()))
		}
	}
}

// HandleWS godoc
// @Summary      Push channel
// @Description  Upgrades to a websocket carrying BUZZ_REQUEST, MATCH and BUZZ_REJECTED events
// @Tags         websocket
// @Param        token query string true "JWT Access Token"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} map[string]string
// @Router       /ws [get]
func (h *Hub) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Token required"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	userID, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid token"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := newClient(h, userID, conn)
	h.Register(client)

	go client.writePump()
	go client.readPump()
}

// forward drains the user's redis channel into the local fan-out. It runs
// while the user has connections on this instance: Unregister closes the
// subscription with the last connection, which closes the channel and ends
// the loop.
func (h *Hub) forward(userID uuid.UUID, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		h.pushLocal(userID, []byte(msg.Payload))
	}
	h.logger.Debug("subscription closed", zap.String("userId", userID.String()))
}
