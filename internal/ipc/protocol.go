// Package ipc implements the local refresh socket. Clients connect, write a
// single command line and disconnect. No reply is written back.
package ipc

import (
	"fmt"
	"strings"
)

// DefaultSocketPath is where the indicator listens unless configured otherwise
const DefaultSocketPath = "/tmp/yabai-indicator.socket"

// MaxLineLength bounds how much of a connection is read
const MaxLineLength = 256

// Command is a recognized IPC payload
type Command string

const (
	CommandRefresh        Command = "refresh"
	CommandRefreshSpaces  Command = "refresh spaces"
	CommandRefreshWindows Command = "refresh windows"
)

// Commands lists every recognized payload
var Commands = []Command{CommandRefresh, CommandRefreshSpaces, CommandRefreshWindows}

// Refresher is the coordinator surface the server drives
type Refresher interface {
	RequestRefresh() bool
	RequestSpaceRefresh() bool
	RequestWindowRefresh() bool
}

// ParseCommand trims surrounding whitespace from line and matches it
// exactly against the known commands
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	for _, c := range Commands {
		if string(c) == trimmed {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command: %q", trimmed)
}

// Dispatch runs cmd against r. Returns false if the request was debounced.
func Dispatch(r Refresher, cmd Command) bool {
	switch cmd {
	case CommandRefreshSpaces:
		return r.RequestSpaceRefresh()
	case CommandRefreshWindows:
		return r.RequestWindowRefresh()
	default:
		return r.RequestRefresh()
	}
}
