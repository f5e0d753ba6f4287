package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"

	"github.com/Zachdehooge/energy-dashboard/internal/mapsync"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// Message is exchanged with browsers over the websocket
type Message struct {
	Type    string          `json:"type"`
	MapID   string          `json:"mapId,omitempty"`
	Kind    mapsync.Kind    `json:"kind,omitempty"`
	Center  *orb.Point      `json:"center,omitempty"`
	Zoom    *float64        `json:"zoom,omitempty"`
	Camera  *mapsync.Camera `json:"camera,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
}

// CameraHandler receives camera moves reported by a browser
type CameraHandler func(mapID string, change mapsync.Change) error

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// Hub fans server events out to every connected browser
type Hub struct {
	upgrader websocket.Upgrader
	onCamera CameraHandler

	mux     sync.RWMutex
	clients map[string]*client
}

// NewHub creates a hub that forwards camera messages to onCamera
func NewHub(onCamera CameraHandler) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		onCamera: onCamera,
		clients:  make(map[string]*client),
	}
}

// Broadcast queues msg for every client; slow clients drop the message
func (h *Hub) Broadcast(msg Message) {
	h.mux.RLock()
	defer h.mux.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("[hub] dropping %s message for slow client %s", msg.Type, c.id)
		}
	}
}

// Clients returns the number of connected browsers
func (h *Hub) Clients() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.clients)
}

// PushCamera tells browsers a map was moved by the synchronizer
func (h *Hub) PushCamera(mapID string, camera mapsync.Camera) {
	h.Broadcast(Message{Type: "camera", MapID: mapID, Camera: &camera})
}

// PushPanel tells browsers a panel finished reloading
func (h *Hub) PushPanel(mapID string) {
	h.Broadcast(Message{Type: "panel", MapID: mapID})
}

// PushSync tells browsers the sync flag changed
func (h *Hub) PushSync(enabled bool) {
	h.Broadcast(Message{Type: "sync", Enabled: &enabled})
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[hub] upgrade failed: %v", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan Message, sendBuffer)}

	h.mux.Lock()
	h.clients[c.id] = c
	h.mux.Unlock()
	log.Printf("[hub] client %s connected", c.id)

	done := make(chan struct{})
	go h.writeLoop(c, done)
	h.readLoop(c)

	h.mux.Lock()
	delete(h.clients, c.id)
	h.mux.Unlock()
	close(done)
	_ = conn.Close()
	log.Printf("[hub] client %s disconnected", c.id)
}

func (h *Hub) readLoop(c *client) {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[hub] client %s read error: %v", c.id, err)
			}
			return
		}
		if msg.Type != "camera" {
			continue
		}
		change := mapsync.Change{Kind: msg.Kind}
		if msg.Center != nil {
			change.Center = *msg.Center
		}
		if msg.Zoom != nil {
			change.Zoom = *msg.Zoom
		}
		if err := h.onCamera(msg.MapID, change); err != nil {
			log.Printf("[hub] camera change from %s rejected: %v", c.id, err)
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[hub] client %s write error: %v", c.id, err)
				_ = c.conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
