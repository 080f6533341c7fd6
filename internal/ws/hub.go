package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockUpdate is pushed to every connected client whenever a ledger quantity
// changes, either through a direct adjustment or a purchase debit.
type StockUpdate struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

const (
	ActionAdjusted  = "inventory_adjusted"
	ActionPurchased = "purchase_completed"
)

type Hub struct {
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte

	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
		clients:    make(map[*websocket.Conn]bool),
		logger:     logger,
	}
}

// NotifyStockUpdate broadcasts a quantity change without blocking the caller.
// Safe on a nil hub, which tests use to opt out of broadcasting.
func (h *Hub) NotifyStockUpdate(action string, productID uuid.UUID, quantity int) {
	if h == nil {
		return
	}
	go func() {
		msg, err := json.Marshal(StockUpdate{
			Type:      "stock_update",
			Action:    action,
			ProductID: productID,
			Quantity:  quantity,
		})
		if err != nil {
			return
		}
		h.Broadcast <- msg
	}()
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.logger.Info("websocket client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
