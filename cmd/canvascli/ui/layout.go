package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Frame dimensions shared by every view.
const (
	// ArtWidth is the fixed width of the right-hand art pane.
	ArtWidth = 35
	// ContentIndent is the left margin of the content column.
	ContentIndent = 2
	// MinimumTerminalWidth below which the art pane is dropped.
	MinimumTerminalWidth = 60
)

var asciiArt = []string{
	"         ████████          ",
	"     ███  ██████   ███     ",
	"   █████           ████    ",
	" █████      ██      █████  ",
	"       ██        ██        ",
	"██                       ██",
	"████ ██             ██ ████",
	"████                   ████",
	"██                      ███",
	"       ██        ██        ",
	" █████      ██      █████  ",
	"   █████           █████   ",
	"     ███   █████   ███     ",
	"         ████████          ",
}

// HeaderInfo is what the status header renders. It is read-only here; the
// session it reflects is owned by the application loop.
type HeaderInfo struct {
	LoggedIn bool
	Username string
	Now      time.Time
}

// Frame composes a full screen: two-line status header, left content
// column (title, content, menu anchored near the bottom) and the
// fixed-width art pane on the right.
func Frame(styles Styles, width, height int, header HeaderInfo, title, content, menu string) string {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	head := renderHeader(styles, width, header)

	contentWidth := width - ContentIndent
	artPane := ""
	if width >= MinimumTerminalWidth {
		contentWidth = width - ArtWidth - ContentIndent*2
		artPane = renderArt(styles, height-3)
	}

	column := renderColumn(styles, contentWidth, height-3, title, content, menu)
	column = lipgloss.NewStyle().PaddingLeft(ContentIndent).Render(column)

	var body string
	if artPane != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(width-ArtWidth).Render(column),
			artPane)
	} else {
		body = column
	}

	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}

func renderHeader(styles Styles, width int, h HeaderInfo) string {
	status := fmt.Sprintf("Logged in: %t", h.LoggedIn)
	clock := h.Now.Format("15:04 - 02/01/2006")

	gap := width - lipgloss.Width(status) - lipgloss.Width(clock) - 1
	if gap < 1 {
		gap = 1
	}
	line1 := styles.Header.Render(status) + strings.Repeat(" ", gap) + styles.Header.Render(clock)

	name := h.Username
	if !h.LoggedIn {
		name = "N/A"
	}
	line2 := styles.Header.Render("Name: " + name)

	return line1 + "\n" + line2 + "\n"
}

func renderColumn(styles Styles, width, height int, title, content, menu string) string {
	titleLine := styles.Title.Render(title)

	contentBlock := ""
	if content != "" {
		contentBlock = lipgloss.NewStyle().Width(width).Render(content)
	}

	top := lipgloss.JoinVertical(lipgloss.Left, titleLine, "", contentBlock)

	// Anchor the menu near the bottom of the column.
	menuHeight := lipgloss.Height(menu)
	fill := height - lipgloss.Height(top) - menuHeight - 1
	if fill < 1 {
		fill = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		strings.Repeat("\n", fill-1),
		menu)
}

func renderArt(styles Styles, height int) string {
	pad := (height - len(asciiArt)) / 2
	if pad < 0 {
		pad = 0
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("\n", pad))
	for _, line := range asciiArt {
		b.WriteString(styles.Art.Width(ArtWidth).Align(lipgloss.Center).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
