package app

import (
	"fmt"
	"strings"

	"canvascli/cmd/canvascli/ui"
	"canvascli/internal/canvas"
)

const backLabel = "[ Go Back ]"

// enterMainMenu switches to the top-level menu.
func (m Model) enterMainMenu() Model {
	m.mode = mainMenuView
	m.menu = ui.NewMenu(m.styles, []string{"Canvas", "Settings", "Exit"}, nil)
	m.menu.SetWidth(m.contentWidth())
	return m
}

// enterCourses switches to the course list built from m.courses.
func (m Model) enterCourses() Model {
	items := make([]string, 0, len(m.courses)+1)
	for _, course := range m.courses {
		items = append(items, course.Name)
	}
	items = append(items, backLabel)

	m.mode = coursesView
	m.menu = ui.NewMenu(m.styles, items, nil)
	m.menu.SetWidth(m.contentWidth())
	return m
}

// enterAssignments switches to the grouped assignment list for the
// selected course. Separator rows are not selectable; every other row
// maps to an assignment except the trailing back row.
func (m Model) enterAssignments() Model {
	var notSubmitted, submitted []canvas.Assignment
	for _, a := range m.assignments {
		if a.Submitted {
			submitted = append(submitted, a)
		} else {
			notSubmitted = append(notSubmitted, a)
		}
	}

	items := []string{"NOT SUBMITTED"}
	rows := make(map[int]canvas.Assignment)
	var selectable []int

	for _, a := range notSubmitted {
		rows[len(items)] = a
		selectable = append(selectable, len(items))
		items = append(items, m.formatAssignmentItem(a))
	}
	items = append(items, "SUBMITTED")
	for _, a := range submitted {
		rows[len(items)] = a
		selectable = append(selectable, len(items))
		items = append(items, m.formatAssignmentItem(a))
	}
	backRow := len(items)
	selectable = append(selectable, backRow)
	items = append(items, backLabel)

	m.mode = assignmentsView
	m.rowAssignments = rows
	m.backRow = backRow
	m.menu = ui.NewMenu(m.styles, items, selectable)
	m.menu.SetWidth(m.contentWidth())
	return m
}

func (m Model) formatAssignmentItem(a canvas.Assignment) string {
	return fmt.Sprintf("%s (Due: %s)", a.Name, m.api.FormatDueDate(a.DueAt))
}

// enterDetail switches to the detail view for the selected assignment.
func (m Model) enterDetail() Model {
	m.mode = assignmentDetailView
	m.menu = ui.NewMenu(m.styles, []string{"Upload Local File", backLabel}, nil)
	m.menu.SetWidth(m.contentWidth())
	return m
}

// detailContent renders the assignment facts plus its description through
// the markdown renderer.
func (m Model) detailContent() string {
	a := m.assignment

	types := "No File Format"
	if len(a.SubmissionTypes) > 0 {
		types = strings.Join(a.SubmissionTypes, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Assignment: %s\n", a.Name)
	fmt.Fprintf(&b, "Due Date: %s\n", m.api.FormatDueDate(a.DueAt))
	fmt.Fprintf(&b, "File Format: %s\n", types)
	if a.Submitted {
		b.WriteString(m.styles.Success.Render("Already submitted") + "\n")
	}

	if a.Description != "" {
		b.WriteString("\n")
		if m.renderer != nil {
			if md, err := m.renderer.Render(a.Description); err == nil {
				b.WriteString(md)
				return b.String()
			}
		}
		b.WriteString(m.styles.Muted.Render(a.Description))
	}
	return b.String()
}

// enterSettings switches to the settings menu.
func (m Model) enterSettings() Model {
	confirmStatus := "Enabled"
	if !m.settings.ConfirmSubmit {
		confirmStatus = "Disabled"
	}
	items := []string{
		"Save Token",
		fmt.Sprintf("Toggle Confirmation Prompt (%s)", confirmStatus),
		"Logout",
		backLabel,
	}

	m.mode = settingsView
	m.menu = ui.NewMenu(m.styles, items, nil)
	m.menu.SetWidth(m.contentWidth())
	return m
}

// enterTokenInput switches to the token entry prompt.
func (m Model) enterTokenInput() Model {
	m.mode = tokenInputView
	m.tokenInput.SetValue("")
	m.tokenInput.Focus()
	return m
}

// showMessage switches to a dismissable dialog: the next keypress
// navigates to returnTo.
func (m Model) showMessage(title, text string, returnTo viewMode) Model {
	m.mode = messageView
	m.messageTitle = title
	m.messageText = text
	m.returnMode = returnTo
	m.resultMenu = nil
	return m
}

// showFailedSubmission shows a submission failure with a horizontal
// retry/back action row. Retry is a fresh run of the whole workflow.
func (m Model) showFailedSubmission(result canvas.SubmissionResult) Model {
	m.mode = messageView
	m.messageTitle = "Error"
	m.messageText = fmt.Sprintf(
		"Failed to upload file or submit assignment.\n\nError details:\n%s", result.Message)

	menu := ui.NewMenu(m.styles, nil, nil).WithActions("Retry", "Go Back")
	menu.SetWidth(m.contentWidth())
	m.resultMenu = &menu
	return m
}

// enter rebuilds the view a dismissed message returns to.
func (m Model) enter(mode viewMode) Model {
	switch mode {
	case coursesView:
		return m.enterCourses()
	case assignmentsView:
		return m.enterAssignments()
	case assignmentDetailView:
		return m.enterDetail()
	case settingsView:
		return m.enterSettings()
	case tokenInputView:
		return m.enterTokenInput()
	default:
		return m.enterMainMenu()
	}
}
