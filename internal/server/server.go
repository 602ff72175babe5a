package server

import (
	"context"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// Server accepts CLI connections on the platform socket and runs one
// jrpc2 session per connection. The socket is a Unix domain socket (or
// a Windows named pipe), falling back to loopback TCP when the platform
// socket cannot be created.
type Server struct {
	log      *log.Logger
	rpc      *RPCServer
	socket   string
	port     int
	web      *WebServer
	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewServer creates a socket server for the given RPC surface.
// socket is the configured Unix socket path; empty selects the
// platform default, and LOOM_SOCKET_PATH overrides both.
// webPort enables the HTTP/WebSocket endpoint when non-zero.
func NewServer(l *log.Logger, rpc *RPCServer, socket string, port, webPort int) *Server {
	s := &Server{
		log:    l,
		rpc:    rpc,
		socket: socket,
		port:   port,
	}
	if webPort > 0 {
		s.web = NewWebServer(l, rpc, webPort)
	}
	return s
}

// Start begins listening for incoming connections and blocks until the
// context is canceled. Each connection is served in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	if s.web != nil {
		go func() {
			if err := s.web.Start(); err != nil {
				s.log.Println("web server error:", err)
			}
		}()
	}

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil // Clean shutdown
			default:
			}
			s.log.Println("Error accepting:", err.Error())
			continue
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection runs a jrpc2 session over the newline-delimited
// framing until the client disconnects.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	srv := jrpc2.NewServer(s.rpc.methods, nil)
	srv.Start(channel.Line(conn, conn))
	if err := srv.Wait(); err != nil {
		s.log.Println("session ended:", err.Error())
	}
}

// Shutdown stops the server by closing the listener and removing the
// socket file, then waits briefly for in-flight sessions.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Printf("Error closing listener: %v", err)
		}
		s.listener = nil
	}
	s.mu.Unlock()

	if s.web != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.web.Shutdown(shutdownCtx); err != nil {
			s.log.Printf("Error shutting down web server: %v", err)
		}
	}

	if err := cleanupSocket(s.socket); err != nil {
		s.log.Printf("Error removing socket file: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.log.Println("timed out waiting for sessions to finish")
	}
	return nil
}

// Addr returns the listener address, or "" when the server is not
// listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// removeStale deletes a leftover socket file from a previous run.
func removeStale(path string) {
	_ = os.Remove(path)
}
