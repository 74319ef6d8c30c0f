// Package server implements the live-compile endpoint: a client opens a
// websocket session, streams brainfuck source, and receives a JSON
// message per compile with either diagnostics or a sequenced MIR summary.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// CompileFunc runs one source string through the full pipeline and
// reports what a live-compile client needs to see.
type CompileFunc func(source string) Result

// Result is what gets serialized back to a websocket client after each
// compile request.
type Result struct {
	OK        bool     `json:"ok"`
	Error     string   `json:"error,omitempty"`
	BodyCount int      `json:"bodyCount,omitempty"`
	Locals    int      `json:"locals,omitempty"`
	Output    string   `json:"output,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Session is one connected client: a stable id, its socket, and the
// channel its writer goroutine drains.
type Session struct {
	ID     string
	conn   *websocket.Conn
	outbox chan []byte
	closed bool
	mu     sync.Mutex
}

func (s *Session) send(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.outbox <- payload:
	default:
		log.Printf("server: session %s outbox full, dropping message", s.ID)
	}
}

func (s *Session) writeLoop() {
	for payload := range s.outbox {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.outbox)
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.conn.Close()
}

// Server accepts live-compile websocket connections and dispatches each
// incoming message to Compile.
type Server struct {
	Compile CompileFunc

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	sessions map[string]*Session
}

// New returns a Server that upgrades any origin (the CLI serves this on
// localhost for editor integrations, not as a public endpoint).
func New(compile CompileFunc) *Server {
	return &Server{
		Compile:  compile,
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket and runs the session
// until the client disconnects.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	session := &Session{
		ID:     uuid.NewString(),
		conn:   conn,
		outbox: make(chan []byte, 32),
	}

	srv.mu.Lock()
	srv.sessions[session.ID] = session
	srv.mu.Unlock()

	go session.writeLoop()
	session.send(map[string]string{"session": session.ID})

	defer func() {
		srv.mu.Lock()
		delete(srv.sessions, session.ID)
		srv.mu.Unlock()
		session.close()
	}()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		result := srv.Compile(string(message))
		session.send(result)
	}
}

// ListenAndServe runs the live-compile server at addr until ctx-like
// shutdown via the returned *http.Server's Close, matching the CLI's
// "serve" subcommand which owns the process lifetime. The *Server is
// returned alongside it so callers can poll SessionCount for a --stats
// summary while the server runs.
func ListenAndServe(addr string, compile CompileFunc) (*http.Server, *Server, error) {
	srv := New(compile)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	ln := make(chan error, 1)
	go func() { ln <- httpServer.ListenAndServe() }()

	select {
	case err := <-ln:
		return nil, nil, fmt.Errorf("server: listen %s: %w", addr, err)
	case <-time.After(50 * time.Millisecond):
		return httpServer, srv, nil
	}
}

// SessionCount reports the number of currently connected clients, polled by
// the CLI's "serve --stats" summary.
func (srv *Server) SessionCount() int {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	return len(srv.sessions)
}
