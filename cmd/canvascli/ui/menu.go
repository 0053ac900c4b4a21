package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultKind discriminates what a menu interaction produced.
type ResultKind int

const (
	// ResultNone means the event changed cursor state only.
	ResultNone ResultKind = iota
	// ResultSelected carries the index of the confirmed list row.
	ResultSelected
	// ResultAction carries the name of the confirmed horizontal action.
	ResultAction
	// ResultCancelled means the user backed out of the menu.
	ResultCancelled
)

// Result is the tagged outcome of a single menu event. Callers must
// discriminate on Kind: Index is only meaningful for ResultSelected and
// Action only for ResultAction.
type Result struct {
	Kind   ResultKind
	Index  int
	Action string
}

// Menu is a single-pane list menu with an optional horizontal action row.
//
// Rows whose index is not in the selectable set render as section
// separators and are never reachable by cursor movement. The cursor is
// always a member of the selectable set while any selectable row exists.
// Vertical movement has no wraparound; moving down past the last list row
// enters the action row (when one is configured) and moving up from the
// action row returns to the last list row.
type Menu struct {
	items      []string
	selectable []int // sorted ascending
	cursor     int   // index into items; -1 when nothing is selectable
	actions    []string
	actionIdx  int
	onActions  bool

	styles Styles
	width  int
}

// NewMenu creates a menu over items. selectable lists the row indices the
// cursor may land on; nil means every row is selectable.
func NewMenu(styles Styles, items []string, selectable []int) Menu {
	if selectable == nil {
		selectable = make([]int, len(items))
		for i := range items {
			selectable[i] = i
		}
	}
	cursor := -1
	if len(selectable) > 0 {
		cursor = selectable[0]
		for _, i := range selectable[1:] {
			if i < cursor {
				cursor = i
			}
		}
	}
	return Menu{
		items:      items,
		selectable: append([]int(nil), selectable...),
		cursor:     cursor,
		styles:     styles,
	}
}

// WithActions adds a horizontal action row below the list. Confirming on
// the row yields ResultAction carrying ActionName of the chosen label.
func (m Menu) WithActions(labels ...string) Menu {
	m.actions = labels
	m.actionIdx = 0
	// A menu with no selectable rows starts on the action row.
	if m.cursor < 0 && len(labels) > 0 {
		m.onActions = true
	}
	return m
}

// SetWidth sets the render width for menu rows.
func (m *Menu) SetWidth(w int) { m.width = w }

// Cursor returns the current list cursor, or -1 when the menu has no
// selectable rows or the cursor sits on the action row.
func (m Menu) Cursor() int {
	if m.onActions {
		return -1
	}
	return m.cursor
}

// OnActionRow reports whether the cursor sits on the horizontal row.
func (m Menu) OnActionRow() bool { return m.onActions }

// ActionName derives the short identifier a confirmed action reports:
// lowercased, runs of non-alphanumerics collapsed to single underscores.
func ActionName(label string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// Update translates a key event into cursor movement or a Result.
func (m Menu) Update(msg tea.KeyMsg) (Menu, Result) {
	switch msg.Type {
	case tea.KeyUp:
		m.moveUp()
	case tea.KeyDown:
		m.moveDown()
	case tea.KeyLeft:
		if m.onActions && m.actionIdx > 0 {
			m.actionIdx--
		}
	case tea.KeyRight:
		if m.onActions && m.actionIdx < len(m.actions)-1 {
			m.actionIdx++
		}
	case tea.KeyEnter:
		if m.onActions {
			return m, Result{Kind: ResultAction, Action: ActionName(m.actions[m.actionIdx])}
		}
		if m.cursor >= 0 {
			return m, Result{Kind: ResultSelected, Index: m.cursor}
		}
	case tea.KeyEsc:
		return m, Result{Kind: ResultCancelled}
	}
	return m, Result{Kind: ResultNone}
}

func (m *Menu) moveDown() {
	if m.onActions {
		return
	}
	next := -1
	for _, i := range m.selectable {
		if i > m.cursor && (next == -1 || i < next) {
			next = i
		}
	}
	if next >= 0 {
		m.cursor = next
		return
	}
	// Past the last selectable row: drop onto the action row if present.
	if len(m.actions) > 0 {
		m.onActions = true
	}
}

func (m *Menu) moveUp() {
	if m.onActions {
		m.onActions = false
		// Return to the largest selectable row; stay on the action row
		// when the list has none.
		if m.cursor < 0 {
			m.onActions = true
		}
		return
	}
	prev := -1
	for _, i := range m.selectable {
		if i < m.cursor && i > prev {
			prev = i
		}
	}
	if prev >= 0 {
		m.cursor = prev
	}
}

// View renders the full menu. Rendering is a pure function of the menu
// state: the same state always produces the same rows.
func (m Menu) View() string {
	width := m.width
	if width <= 0 {
		width = 40
	}

	selectable := make(map[int]bool, len(m.selectable))
	for _, i := range m.selectable {
		selectable[i] = true
	}

	rows := make([]string, 0, len(m.items)+1)
	for idx, item := range m.items {
		switch {
		case !selectable[idx]:
			rows = append(rows, m.styles.MenuSection.Width(width).Align(lipgloss.Center).Render(item))
		case idx == m.cursor && !m.onActions:
			rows = append(rows, m.styles.MenuSelected.Width(width).Render("> "+item))
		default:
			rows = append(rows, m.styles.MenuItem.Width(width).Render("  "+item))
		}
	}

	if len(m.actions) > 0 {
		cells := make([]string, len(m.actions))
		for i, label := range m.actions {
			if m.onActions && i == m.actionIdx {
				cells[i] = m.styles.ActionSelected.Render(label)
			} else {
				cells[i] = m.styles.ActionItem.Render(label)
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return strings.Join(rows, "\n")
}
