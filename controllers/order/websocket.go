package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jyush98/jason-co-ecom/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var (
	wsMu      sync.Mutex
	wsClients = make(map[*websocket.Conn]bool)
)

// orderFeedMessage is what the admin dashboard receives on every order event.
type orderFeedMessage struct {
	Event       string             `json:"event"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	TotalCents  int64              `json:"total_cents"`
	At          time.Time          `json:"at"`
}

// OrderFeedHandler upgrades the connection and keeps it registered until the
// client goes away. The feed is write-only; inbound frames are drained and
// discarded.
func OrderFeedHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wsMu.Lock()
	wsClients[conn] = true
	wsMu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			wsMu.Lock()
			delete(wsClients, conn)
			wsMu.Unlock()
			break
		}
	}
}

// BroadcastOrderEvent pushes an order event to every connected dashboard.
// Dead connections are dropped on write failure.
func BroadcastOrderEvent(event string, order *models.Order) {
	data, err := json.Marshal(orderFeedMessage{
		Event:       event,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalCents:  order.TotalCents,
		At:          time.Now().UTC(),
	})
	if err != nil {
		return
	}

	wsMu.Lock()
	defer wsMu.Unlock()
	for client := range wsClients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(wsClients, client)
		}
	}
}
