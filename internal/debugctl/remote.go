package debugctl

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// RemoteServer accepts external debug clients over websocket connections
// and sends each of them the JSON events passed to Broadcast. It reads no
// commands from clients, and the Controller does not call Broadcast itself.
// Grounded on the teacher's internal/network/websocket_server.go (a map of
// client connections broadcast to under a mutex); Serve uses errgroup so
// the HTTP listener shuts down on its own failure or on context
// cancellation.
type RemoteServer struct {
	ctl      *Controller
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// SuspendEvent is the JSON payload Broadcast sends to every connected
// client, describing where an activation was suspended.
type SuspendEvent struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Status Status `json:"status"`
}

func NewRemoteServer(ctl *Controller) *RemoteServer {
	return &RemoteServer{
		ctl:      ctl,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		clients:  make(map[string]*websocket.Conn),
	}
}

func (s *RemoteServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug", s.handleConnect)
	return mux
}

// Serve starts the HTTP listener and blocks until ctx is cancelled or the
// listener fails, using errgroup to tie the listener's lifetime to ctx the
// way the teacher's own errgroup dependency (declared, never imported,
// until now) is meant to be used.
func (s *RemoteServer) Serve(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		return server.Close()
	})
	return g.Wait()
}

func (s *RemoteServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := r.RemoteAddr
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()
}

// Broadcast sends ev to every connected client, dropping (and forgetting)
// any connection that errors — matching the teacher's WebSocketBroadcast,
// which marks a failing client closed rather than aborting the broadcast.
func (s *RemoteServer) Broadcast(ev SuspendEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var lastErr error
	for id, conn := range s.clients {
		if werr := conn.WriteMessage(websocket.TextMessage, payload); werr != nil {
			lastErr = werr
			delete(s.clients, id)
		}
	}
	return lastErr
}
