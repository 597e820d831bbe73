package inspector

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cameron-webmatter/buddystate/pkg/binding"
	"github.com/cameron-webmatter/buddystate/pkg/store"
)

// Server streams bus changes to websocket clients. It never writes to the
// bus; anything clients send is read and discarded.
type Server struct {
	bus       *store.EventBus
	tracker   *binding.Tracker
	logger    *zap.Logger
	clients   map[*websocket.Conn]bool
	broadcast chan Message
	mu        sync.RWMutex
	upgrader  websocket.Upgrader
	unwatch   store.Unsubscriber
	done      chan struct{}
	stopOnce  sync.Once
}

type Option func(*Server)

func WithTracker(t *binding.Tracker) Option {
	return func(s *Server) {
		s.tracker = t
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(bus *store.EventBus, opts ...Option) *Server {
	s := &Server{
		bus:       bus,
		logger:    zap.NewNop(),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 256),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins forwarding bus changes to connected clients.
func (s *Server) Start() {
	s.unwatch = s.bus.Watch(s.onChange)
	go s.handleBroadcasts()
}

// Stop detaches from the bus and closes every client connection.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.unwatch != nil {
			s.unwatch()
		}
		close(s.done)

		s.mu.Lock()
		for client := range s.clients {
			client.Close()
			delete(s.clients, client)
		}
		s.mu.Unlock()
	})
}

// Handler mounts the websocket endpoint at base and the JSON snapshot at
// base+"/state".
func (s *Server) Handler(base string) http.Handler {
	mux := http.NewServeMux()
	wsPath := base
	if wsPath == "" {
		wsPath = "/"
	}
	mux.HandleFunc(wsPath, s.HandleWebSocket)
	mux.HandleFunc(base+"/state", s.HandleState)
	return mux
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.bus.Snapshot()); err != nil {
		s.logger.Warn("encode state", zap.Error(err))
	}
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// Registration and the initial snapshot happen under the write lock so
	// the broadcast loop cannot write to conn concurrently.
	s.mu.Lock()
	s.clients[conn] = true
	err = s.write(conn, Message{Type: MsgTypeSnapshot, State: s.bus.Snapshot()})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) onChange(key string, value any) {
	msg := Message{Type: MsgTypeChange, Key: key, Value: value}
	if s.tracker != nil {
		msg.Components = s.tracker.Components(key)
	}

	// Bus watchers run on the caller's goroutine; a slow inspector must not
	// hold up state updates.
	select {
	case s.broadcast <- msg:
	default:
		s.logger.Warn("inspector backlog full, dropping change", zap.String("key", key))
	}
}

func (s *Server) handleBroadcasts() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warn("encode change", zap.String("key", msg.Key), zap.Error(err))
				continue
			}

			var dead []*websocket.Conn
			s.mu.RLock()
			for client := range s.clients {
				if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
					dead = append(dead, client)
				}
			}
			s.mu.RUnlock()

			if len(dead) > 0 {
				s.mu.Lock()
				for _, client := range dead {
					client.Close()
					delete(s.clients, client)
				}
				s.mu.Unlock()
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
