package websocket

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/notifications"
)

// Manager owns the WebSocket connections streaming batch progress and
// check-in announcements to event dashboards.
type Manager struct {
	connections map[string]*Connection
	mu          sync.RWMutex
	hub         *Hub
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// Connection is one dashboard client, scoped to a single event feed.
type Connection struct {
	ID           string
	EventID      string
	Conn         *websocket.Conn
	Send         chan notifications.BatchMessage
	LastActivity time.Time
	mu           sync.Mutex
}

// Hub serializes register/unregister/broadcast onto one goroutine.
type Hub struct {
	connections map[*Connection]bool
	broadcast   chan notifications.BatchMessage
	register    chan *Connection
	unregister  chan *Connection
	stop        chan struct{}
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan notifications.BatchMessage, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		stop:        make(chan struct{}),
	}
	go hub.run()

	return &Manager{
		connections: make(map[string]*Connection),
		hub:         hub,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades the request and attaches the client to the
// event feed named in the "event_id" query parameter.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		return nil, fmt.Errorf("event_id query parameter is required")
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:           uuid.New().String(),
		EventID:      eventID,
		Conn:         conn,
		Send:         make(chan notifications.BatchMessage, 256),
		LastActivity: time.Now(),
	}

	m.hub.register <- connection

	m.mu.Lock()
	m.connections[connection.ID] = connection
	m.mu.Unlock()

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// readPump drains client frames so pings are answered; clients never send
// application data on this feed.
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.hub.unregister <- conn
		conn.Conn.Close()

		m.mu.Lock()
		delete(m.connections, conn.ID)
		m.mu.Unlock()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("WebSocket read error", zap.Error(err))
			}
			break
		}
		conn.mu.Lock()
		conn.LastActivity = time.Now()
		conn.mu.Unlock()
	}
}

func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.connections[conn] = true

		case conn := <-h.unregister:
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
			}

		case message := <-h.broadcast:
			for conn := range h.connections {
				if conn.EventID != message.EventID {
					continue
				}
				select {
				case conn.Send <- message:
				default:
					// Slow consumer, drop it
					delete(h.connections, conn)
					close(conn.Send)
				}
			}

		case <-h.stop:
			for conn := range h.connections {
				close(conn.Send)
				conn.Conn.Close()
			}
			return
		}
	}
}

// SendToEvent fans a message out to every client watching the event.
func (m *Manager) SendToEvent(message notifications.BatchMessage) {
	m.hub.broadcast <- message
}

// ConnectionCount reports the number of live connections.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Close terminates every connection and stops the hub.
func (m *Manager) Close() {
	close(m.hub.stop)
}
