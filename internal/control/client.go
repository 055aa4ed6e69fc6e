package control

import (
	"fmt"
	"net"
	"time"
)

const dialTimeout = 5 * time.Second

// Send writes one toggle request for shell to the daemon's control socket.
// Fire-and-forget: the daemon never answers.
func Send(socketPath, shell string) error {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(dialTimeout))
	if _, err := conn.Write([]byte(shell + "\n")); err != nil {
		return fmt.Errorf("failed to send toggle request: %w", err)
	}
	return nil
}
