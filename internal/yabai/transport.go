package yabai

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"os/user"
	"strings"
)

// failureMessage prefixes a yabai reply that reports an error
const failureMessage = '\x07'

// DefaultSocketPath returns /tmp/yabai_$USER.socket
func DefaultSocketPath() string {
	name := os.Getenv("USER")
	if name == "" {
		if u, err := user.Current(); err == nil {
			name = u.Username
		}
	}
	return fmt.Sprintf("/tmp/yabai_%s.socket", name)
}

// SocketTransport speaks the yabai control socket protocol
type SocketTransport struct {
	socketPath string
}

// NewSocketTransport creates a transport for the given socket path
func NewSocketTransport(socketPath string) *SocketTransport {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &SocketTransport{socketPath: socketPath}
}

// Send writes one framed message, half-closes, and reads the reply to EOF
func (t *SocketTransport) Send(ctx context.Context, args []string) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", t.socketPath, err)
	}
	defer conn.Close()

	if _, err := conn.Write(encodeMessage(args)); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return nil, fmt.Errorf("failed to close write side: %w", err)
		}
	}

	// Read response with context cancellation support
	respChan := make(chan []byte, 1)
	errChan := make(chan error, 1)

	go func() {
		body, err := io.ReadAll(conn)
		if err != nil {
			errChan <- fmt.Errorf("failed to read response: %w", err)
			return
		}
		respChan <- body
	}()

	select {
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	case err := <-errChan:
		return nil, err
	case body := <-respChan:
		if len(body) > 0 && body[0] == failureMessage {
			return nil, &CommandFailedError{Code: 1, Message: strings.TrimSpace(string(body[1:]))}
		}
		return body, nil
	}
}

// encodeMessage frames args as yabai expects: a little-endian int32 length,
// then every argument NUL-terminated, then a final NUL.
func encodeMessage(args []string) []byte {
	length := 1
	for _, a := range args {
		length += len(a) + 1
	}

	buf := make([]byte, 4, 4+length)
	binary.LittleEndian.PutUint32(buf, uint32(length))
	for _, a := range args {
		buf = append(buf, a...)
		buf = append(buf, 0)
	}
	return append(buf, 0)
}

// ExecTransport runs `yabai -m <args>` as a subprocess
type ExecTransport struct {
	binary string
}

// NewExecTransport creates a transport running the given yabai binary
func NewExecTransport(binary string) *ExecTransport {
	if binary == "" {
		binary = "yabai"
	}
	return &ExecTransport{binary: binary}
}

// Send runs the command and returns stdout
func (t *ExecTransport) Send(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.binary, append([]string{"-m"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &CommandFailedError{Code: exitErr.ExitCode(), Message: strings.TrimSpace(stderr.String())}
		}
		return nil, fmt.Errorf("failed to run %s: %w", t.binary, err)
	}
	return out, nil
}
