package app

import (
	"fmt"

	"canvascli/cmd/canvascli/ui"
)

// View renders the current frame. Every view goes through the same
// two-region frame: status header plus content column, art pane on the
// right. Rendering is a pure function of the model; redrawing an
// unchanged model produces an identical frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := ui.HeaderInfo{
		LoggedIn: m.session.LoggedIn,
		Username: m.session.Username,
		Now:      m.now(),
	}

	if m.loading {
		content := m.spin.View() + " " + m.styles.Body.Render(m.loadingText)
		return ui.Frame(m.styles, m.width, m.height, header, "Please Wait", content, "")
	}

	var title, content, menu string
	switch m.mode {
	case mainMenuView:
		title = "Main Menu"
		menu = m.menu.View()

	case coursesView:
		title = "Available Courses"
		menu = m.menu.View()

	case assignmentsView:
		title = fmt.Sprintf("Assignments for %s", m.course.Name)
		menu = m.menu.View()

	case assignmentDetailView:
		title = "Assignment Details"
		content = m.detailContent()
		menu = m.menu.View()

	case fileBrowserView:
		title = "File Browser"
		content = m.styles.Muted.Render("Current directory: " + m.browser.Dir())
		menu = m.browser.View()

	case confirmSubmitView:
		title = "Confirm"
		content = m.confirm.View()

	case settingsView:
		title = "Settings"
		token := "Not Set"
		if m.api != nil {
			token = m.api.Token()
		}
		content = m.styles.Muted.Render("Current Access Token: " + token)
		menu = m.menu.View()

	case tokenInputView:
		title = "Input"
		content = m.styles.Body.Render("Enter new Access Token:") + "\n\n" + m.tokenInput.View()

	case messageView:
		title = m.messageTitle
		content = m.messageText
		if m.resultMenu != nil {
			menu = m.resultMenu.View()
		} else {
			menu = m.styles.Muted.Render("Press any key to continue")
		}
	}

	return ui.Frame(m.styles, m.width, m.height, header, title, content, menu)
}
