package control

import (
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// maxMessageSize bounds a single control request. Shell names are short;
// anything larger is garbage.
const maxMessageSize = 256

// readTimeout caps how long a connection may sit without sending its one
// message. Clients write immediately after connecting.
const readTimeout = 5 * time.Second

// Server accepts short-lived connections on the quickterm control socket and
// drives the toggle handler with one shell name per connection. No response
// is ever written back.
type Server struct {
	socketPath string
	listener   net.Listener
	shells     map[string]bool
	handle     func(shell string) error

	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a control server for the given socket path. shells is
// the set of valid names; anything else read from the socket is dropped
// silently (senders validate names before connecting).
func NewServer(socketPath string, shells []string, handle func(shell string) error) *Server {
	shellSet := make(map[string]bool, len(shells))
	for _, name := range shells {
		shellSet[name] = true
	}
	return &Server{
		socketPath: socketPath,
		shells:     shellSet,
		handle:     handle,
	}
}

// Start binds the socket and begins accepting connections. A stale socket
// file left by a previous daemon instance is removed unconditionally; at
// most one daemon is expected to run.
func (s *Server) Start() error {
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return err
	}

	log.Printf("control server listening on %s", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("control accept error: %v", err)
			continue
		}

		// Per-connection goroutine so a slow client can never stall the
		// accept loop; the daemon's toggle mutex serializes the work.
		go s.handleConnection(conn)
	}
}

// handleConnection reads a single shell-name message. An empty read is the
// peer's orderly close.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	buf := make([]byte, maxMessageSize)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		log.Printf("control read error: %v", err)
		return
	}

	shell := strings.TrimSpace(string(buf[:n]))
	if shell == "" {
		return
	}
	if !s.shells[shell] {
		log.Printf("control: ignoring unknown shell %q", shell)
		return
	}

	if err := s.handle(shell); err != nil {
		log.Printf("toggle %s failed: %v", shell, err)
	}
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
