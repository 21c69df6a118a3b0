package feed

import (
	"net/http"
	"sync"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Event is one directory feed message. Snapshot events carry the full
// channel list, incremental events carry a single channel or id.
type Event struct {
	Type     string            `json:"type"`
	Channel  *domain.Channel   `json:"channel,omitempty"`
	Channels []*domain.Channel `json:"channels,omitempty"`
	ActiveID domain.ChannelID  `json:"active_id,omitempty"`
}

// Server pushes directory changes to connected clients over WebSocket.
// It observes the directory service: each client gets a snapshot on
// connect, then channel_added and active_changed events as they happen.
type Server struct {
	directory ports.DirectoryService

	connections map[*client]struct{}
	mu          sync.RWMutex

	pingInterval time.Duration
	writeTimeout time.Duration
	buffer       int

	logger *zap.SugaredLogger
}

type client struct {
	conn *websocket.Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func NewServer(directory ports.DirectoryService, buffer int, logger *zap.SugaredLogger) *Server {
	if buffer <= 0 {
		buffer = 64
	}
	s := &Server{
		directory:    directory,
		connections:  make(map[*client]struct{}),
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		buffer:       buffer,
		logger:       logger,
	}
	directory.AddObserver(s)
	return s
}

// ChannelAdded implements ports.DirectoryObserver.
func (s *Server) ChannelAdded(channel *domain.Channel) {
	s.broadcast(Event{Type: "channel_added", Channel: channel})
}

// ActiveChanged implements ports.DirectoryObserver.
func (s *Server) ActiveChanged(id domain.ChannelID) {
	s.broadcast(Event{Type: "active_changed", ActiveID: id})
}

func (s *Server) broadcast(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.connections {
		select {
		case c.send <- event:
		default:
			// Slow consumer; drop the connection rather than the feed.
			s.logger.Warnw("dropping slow feed client")
			c.close()
		}
	}
}

func (s *Server) HandleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Event, s.buffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.connections[c] = struct{}{}
	s.mu.Unlock()

	s.logger.Infow("feed client connected", "remote", conn.RemoteAddr().String())

	snapshot := Event{Type: "snapshot", Channels: s.directory.Channels()}
	if active, ok := s.directory.ActiveChannel(); ok {
		snapshot.ActiveID = active
	}
	c.send <- snapshot

	// The feed is one-way; the reader only watches for close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				c.close()
				return
			}
		}
	}()

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case event := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				s.logger.Infow("error writing feed event", "error", err)
				c.close()
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
			}

		case <-c.done:
			s.mu.Lock()
			delete(s.connections, c)
			s.mu.Unlock()
			conn.Close()
			s.logger.Infow("feed client disconnected", "remote", conn.RemoteAddr().String())
			return
		}
	}
}

// ClientCount reports the number of connected feed clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}
