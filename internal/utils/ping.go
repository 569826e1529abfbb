package utils

import (
	"fmt"
	"net"
	"time"
)

// PingHost checks if a TCP service is reachable at host:port. The
// healthcheck command uses it to probe the database listener before
// attempting a full connection.
func PingHost(host, port string, timeout time.Duration) error {
	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}
