package ws

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "relay:"

// Hub holds operator websocket connections and subscribes to Redis so sync
// updates published by any instance reach the operator's sockets here.
type Hub struct {
	rdb *redis.Client
	// operator id -> set of open sockets
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Update
}

// Update is one push event addressed to a single operator.
type Update struct {
	OperatorID string
	Payload    []byte
}

func NewHub(rdb *redis.Client) *Hub {
	h := &Hub{
		rdb:        rdb,
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Update, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	pubsub := h.rdb.PSubscribe(context.Background(), channelPrefix+"*")
	ch := pubsub.Channel()
	go func() {
		for msg := range ch {
			operatorID := strings.TrimPrefix(msg.Channel, channelPrefix)
			h.broadcast <- &Update{OperatorID: operatorID, Payload: []byte(msg.Payload)}
		}
	}()

	for {
		select {
		case c := <-h.register:
			if _, ok := h.clients[c.operatorID]; !ok {
				h.clients[c.operatorID] = make(map[*Client]bool)
			}
			h.clients[c.operatorID][c] = true
			log.Printf("ws: operator connected: %s", c.operatorID)
		case c := <-h.unregister:
			if conns, ok := h.clients[c.operatorID]; ok {
				if _, exists := conns[c]; exists {
					delete(conns, c)
					close(c.send)
				}
				if len(conns) == 0 {
					delete(h.clients, c.operatorID)
				}
			}
		case u := <-h.broadcast:
			conns, ok := h.clients[u.OperatorID]
			if !ok {
				continue
			}
			for c := range conns {
				select {
				case c.send <- u.Payload:
				default:
					close(c.send)
					delete(conns, c)
				}
			}
		}
	}
}

func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Publish pushes a payload to every socket of an operator across all
// instances via Redis.
func (h *Hub) Publish(ctx context.Context, operatorID string, payload []byte) error {
	return h.rdb.Publish(ctx, channelPrefix+operatorID, payload).Err()
}
