package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

const check = "✓"

// PrintDisplaysTable prints displays in a table format
func PrintDisplaysTable(w io.Writer, displays []models.Display) {
	table := tablewriter.NewWriter(w)
	table.Header("Index", "ID", "UUID", "Origin", "Size")

	for _, d := range displays {
		table.Append(
			strconv.Itoa(d.Index),
			strconv.FormatUint(d.ID, 10),
			d.UUID,
			fmt.Sprintf("%.0f,%.0f", d.Frame.X, d.Frame.Y),
			fmt.Sprintf("%.0fx%.0f", d.Frame.Width, d.Frame.Height),
		)
	}

	table.Render()
}

// PrintSpacesTable prints spaces in a table format
func PrintSpacesTable(w io.Writer, spaces []models.Space) {
	table := tablewriter.NewWriter(w)
	table.Header("Yabai", "Index", "ID", "Type", "Display", "Visible", "Active", "UUID")

	for _, sp := range spaces {
		index := "-"
		if sp.Type == models.SpaceStandard {
			index = strconv.Itoa(sp.Index)
		}

		table.Append(
			strconv.Itoa(sp.YabaiIndex),
			index,
			strconv.FormatUint(sp.SpaceID, 10),
			sp.Type.String(),
			strconv.Itoa(sp.Display),
			flag(sp.Visible),
			flag(sp.Active),
			truncate(sp.UUID, 12),
		)
	}

	table.Render()
}

// PrintWindowsTable prints windows sorted by space, then ID
func PrintWindowsTable(w io.Writer, windows []models.Window) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "App", "Title", "Display", "Space", "Size")

	sorted := make([]models.Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SpaceIndex != sorted[j].SpaceIndex {
			return sorted[i].SpaceIndex < sorted[j].SpaceIndex
		}
		return sorted[i].ID < sorted[j].ID
	})

	for _, win := range sorted {
		table.Append(
			strconv.FormatUint(win.ID, 10),
			truncate(win.App, 20),
			truncate(win.Title, 30),
			strconv.Itoa(win.DisplayIndex),
			strconv.Itoa(win.SpaceIndex),
			fmt.Sprintf("%.0fx%.0f", win.Frame.Width, win.Frame.Height),
		)
	}

	table.Render()
}

// Helper functions

func flag(b bool) string {
	if b {
		return check
	}
	return ""
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
