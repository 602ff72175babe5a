package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// WebServer serves the JSON-RPC endpoint over HTTP and WebSocket.
// POST /jsonrpc carries single requests through the jhttp bridge;
// GET /jsonrpc/ws upgrades to a persistent WebSocket session.
// Both routes require the configured bearer token.
type WebServer struct {
	port   int
	l      *log.Logger
	rpc    *RPCServer
	server *http.Server
	mu     sync.Mutex
}

// NewWebServer creates a web server exposing the given RPC surface.
func NewWebServer(l *log.Logger, rpc *RPCServer, port int) *WebServer {
	return &WebServer{port: port, l: l, rpc: rpc}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.handleWS)))
	return mux
}

// handleWS upgrades the request to a WebSocket and runs a dedicated
// jrpc2 server over it until the peer disconnects.
func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Println("websocket accept failed:", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, nil)
	srv.Start(ch)
	if err := srv.Wait(); err != nil {
		s.l.Println("websocket session ended:", err)
	}
	_ = ch.Close()
}

func (s *WebServer) addr() string {
	return fmt.Sprintf("localhost:%d", s.port)
}

// Start runs the HTTP server until Shutdown is called.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
