package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// DefaultReadTimeout caps how long a silent client can hold the accept loop
const DefaultReadTimeout = 2 * time.Second

// ErrNotSocket is returned when the socket path is occupied by something else
var ErrNotSocket = errors.New("path exists and is not a socket")

// Options configures a Server
type Options struct {
	ReadTimeout time.Duration
	Logger      zerolog.Logger
}

// Server accepts one connection at a time and forwards its command line
type Server struct {
	path        string
	refresher   Refresher
	readTimeout time.Duration
	logger      zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	running  bool
	wg       sync.WaitGroup
}

// NewServer creates a stopped server for path
func NewServer(path string, r Refresher, opts Options) *Server {
	if path == "" {
		path = DefaultSocketPath
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Server{
		path:        path,
		refresher:   r,
		readTimeout: opts.ReadTimeout,
		logger:      opts.Logger,
	}
}

// Path returns the socket path
func (s *Server) Path() string {
	return s.path
}

// Running reports whether the server is listening
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start binds the socket and begins accepting. No-op if already listening.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if err := removeStaleSocket(s.path); err != nil {
		return err
	}

	// Owner-only from the moment the socket file exists
	oldMask := unix.Umask(0o177)
	listener, err := net.Listen("unix", s.path)
	unix.Umask(oldMask)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}

	s.listener = listener
	s.running = true
	s.wg.Add(1)
	go s.acceptLoop(listener)

	s.logger.Info().Str("path", s.path).Msg("IPC server listening")
	return nil
}

// Stop closes the listener, waits for the accept loop and removes the socket
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	err := s.listener.Close()
	s.listener = nil
	s.mu.Unlock()

	s.wg.Wait()

	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) {
		s.logger.Warn().Err(rmErr).Str("path", s.path).Msg("failed to remove socket")
	}

	s.logger.Info().Str("path", s.path).Msg("IPC server stopped")
	return err
}

// acceptLoop handles connections sequentially until Stop is called
func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.Running() {
				return
			}
			s.logger.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		line, err := s.readLine(conn)
		conn.Close()
		if err != nil {
			s.logger.Warn().Err(err).Msg("IPC read error")
			continue
		}
		if line == "" {
			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			s.logger.Warn().Err(err).Msg("IPC command ignored")
			continue
		}

		accepted := Dispatch(s.refresher, cmd)
		s.logger.Debug().Str("command", string(cmd)).Bool("accepted", accepted).Msg("IPC command")
	}
}

// readLine reads up to the first newline, or to EOF if the client closed
// its write side without one
func (s *Server) readLine(conn net.Conn) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
		return "", err
	}

	reader := bufio.NewReader(io.LimitReader(conn, MaxLineLength))
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// removeStaleSocket deletes a leftover socket file but refuses to touch
// anything that isn't a socket
func removeStaleSocket(path string) error {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil
		}
		return fmt.Errorf("failed to stat socket path: %w", err)
	}

	if st.Mode&unix.S_IFMT != unix.S_IFSOCK {
		return fmt.Errorf("%s: %w", path, ErrNotSocket)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}
