package ipc

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultSendTimeout applies when ctx carries no deadline
const DefaultSendTimeout = 2 * time.Second

// Send writes one command line to the server at path and disconnects
func Send(ctx context.Context, path string, cmd Command) error {
	if path == "" {
		path = DefaultSocketPath
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultSendTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("failed to connect to indicator: %w (is it running?)", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(string(cmd) + "\n")); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	if uc, ok := conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}
	return nil
}
