package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// board event types
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskMoved   = "task.moved"
	TaskDeleted = "task.deleted"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Event is pushed to every board viewer of a project.
type Event struct {
	Type      string `json:"type"`
	ProjectID uint   `json:"project_id"`
	Task      any    `json:"task"`
}

type client struct {
	projectID uint
	userID    uint
	conn      *websocket.Conn
	send      chan Event
}

// Hub keeps one room of websocket viewers per project.
type Hub struct {
	rooms      map[uint]map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	count      chan countRequest
	done       chan struct{}
}

type countRequest struct {
	projectID uint
	reply     chan int
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run owns the rooms until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
			}
			h.rooms = map[uint]map[*client]bool{}
			return

		case c := <-h.register:
			if h.rooms[c.projectID] == nil {
				h.rooms[c.projectID] = make(map[*client]bool)
			}
			h.rooms[c.projectID][c] = true

		case c := <-h.unregister:
			h.drop(c)

		case ev := <-h.broadcast:
			for c := range h.rooms[ev.ProjectID] {
				select {
				case c.send <- ev:
				default:
					logrus.Warnf("board viewer of project %d is too slow, disconnecting", ev.ProjectID)
					h.drop(c)
				}
			}

		case req := <-h.count:
			req.reply <- len(h.rooms[req.projectID])
		}
	}
}

func (h *Hub) drop(c *client) {
	room := h.rooms[c.projectID]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.projectID)
	}
}

// Broadcast queues an event for the project's room.
func (h *Hub) Broadcast(projectID uint, eventType string, task any) {
	select {
	case h.broadcast <- Event{Type: eventType, ProjectID: projectID, Task: task}:
	case <-h.done:
	}
}

// Viewers reports how many connections watch the board.
func (h *Hub) Viewers(projectID uint) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{projectID: projectID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades the request and joins the project room. Clients only
// listen; anything they send is discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, projectID, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{projectID: projectID, userID: userID, conn: conn, send: make(chan Event, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump(h)
	return nil
}

func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("board socket of user %d: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				logrus.Error("board socket write: ", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
