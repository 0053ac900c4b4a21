package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmKind discriminates the outcome of a confirm-dialog event.
type ConfirmKind int

const (
	ConfirmNone ConfirmKind = iota
	ConfirmAccepted
	ConfirmDeclined
)

// Confirm is a binary accept/cancel dialog with no cursor: Enter accepts,
// Esc declines, everything else is ignored.
type Confirm struct {
	message string
	styles  Styles
}

// NewConfirm creates a confirm dialog showing message.
func NewConfirm(styles Styles, message string) Confirm {
	return Confirm{message: message, styles: styles}
}

// Update maps a key event to an outcome.
func (c Confirm) Update(msg tea.KeyMsg) ConfirmKind {
	switch msg.Type {
	case tea.KeyEnter:
		return ConfirmAccepted
	case tea.KeyEsc:
		return ConfirmDeclined
	}
	return ConfirmNone
}

// View renders the message and the key hint.
func (c Confirm) View() string {
	var b strings.Builder
	b.WriteString(c.styles.Body.Render(c.message))
	b.WriteString("\n\n")
	b.WriteString(c.styles.Muted.Render("Press Enter to confirm or Esc to cancel"))
	return b.String()
}
