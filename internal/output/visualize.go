package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sys/unix"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

// VisualizationOptions controls the size and glyphs of a display sketch
type VisualizationOptions struct {
	UseUnicode bool
	Width      int
	Height     int
}

// DefaultVisualizationOptions sizes the sketch to the terminal
func DefaultVisualizationOptions() VisualizationOptions {
	width, height := getTerminalSize()
	return VisualizationOptions{
		UseUnicode: supportsUnicode(),
		Width:      width,
		Height:     max(height-4, 8),
	}
}

// VisualizeDisplay sketches the windows of one display on the given space.
// spaceIndex 0 means every space on the display.
func VisualizeDisplay(display models.Display, windows []models.Window, spaceIndex int, opts VisualizationOptions) string {
	if !display.Frame.HasArea() || opts.Width < 4 || opts.Height < 4 {
		return fmt.Sprintf("Display %d (no frame)\n", display.Index)
	}

	style := ASCIIStyle
	if opts.UseUnicode {
		style = UnicodeStyle
	}
	canvas := NewCanvas(opts.Width, opts.Height, style)
	canvas.Box(0, 0, opts.Width, opts.Height)

	// Inner area excludes the display border
	scaleX := float64(opts.Width-2) / display.Frame.Width
	scaleY := float64(opts.Height-2) / display.Frame.Height

	drawn := 0
	for _, win := range windows {
		if win.DisplayIndex != display.Index || (spaceIndex > 0 && win.SpaceIndex != spaceIndex) {
			continue
		}

		x := 1 + int(math.Round((win.Frame.X-display.Frame.X)*scaleX))
		y := 1 + int(math.Round((win.Frame.Y-display.Frame.Y)*scaleY))
		w := int(math.Round(win.Frame.Width * scaleX))
		h := int(math.Round(win.Frame.Height * scaleY))

		// Clamp to the inner area
		x = min(max(x, 1), opts.Width-2)
		y = min(max(y, 1), opts.Height-2)
		w = min(w, opts.Width-1-x)
		h = min(h, opts.Height-1-y)
		if w < 3 || h < 2 {
			continue
		}

		canvas.Box(x, y, w, h)
		if h > 2 {
			canvas.Text(x+1, y+1, windowLabel(win), w-2)
		}
		drawn++
	}

	header := fmt.Sprintf("Display %d (%.0fx%.0f)", display.Index, display.Frame.Width, display.Frame.Height)
	if spaceIndex > 0 {
		header += fmt.Sprintf(", space %d", spaceIndex)
	}
	return fmt.Sprintf("%s\n%s\nTotal: %d windows\n", header, canvas.String(), drawn)
}

// PrintVisualization writes sketches of every display, colored unless
// color is disabled
func PrintVisualization(w io.Writer, displays []models.Display, windows []models.Window, spaceIndex int, opts VisualizationOptions) error {
	if len(displays) == 0 {
		_, err := fmt.Fprintln(w, "No displays found")
		return err
	}

	var sb strings.Builder
	for i, d := range displays {
		if !d.Frame.HasArea() {
			continue
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(VisualizeDisplay(d, windows, spaceIndex, opts))
	}

	if color.NoColor {
		_, err := fmt.Fprint(w, sb.String())
		return err
	}
	_, err := color.New(color.FgCyan).Fprint(w, sb.String())
	return err
}

func windowLabel(win models.Window) string {
	if win.Title == "" {
		return win.App
	}
	return win.App + ": " + win.Title
}

// getTerminalSize returns the current terminal dimensions
func getTerminalSize() (width, height int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		// Default to 80x24 if we can't detect
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// supportsUnicode checks LANG and LC_ALL for a UTF-8 locale
func supportsUnicode() bool {
	return strings.Contains(os.Getenv("LANG"), "UTF-8") || strings.Contains(os.Getenv("LC_ALL"), "UTF-8")
}
