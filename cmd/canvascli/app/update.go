package app

import (
	"fmt"
	"path/filepath"

	"canvascli/cmd/canvascli/ui"
	"canvascli/internal/canvas"
	"canvascli/internal/config"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Update is the single event loop for the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetWidth(m.contentWidth())
		m.browser.SetHeight(msg.Height - 12)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tokenCheckedMsg:
		return m.onTokenChecked(msg)

	case coursesMsg:
		return m.onCourses(msg)

	case assignmentsMsg:
		return m.onAssignments(msg)

	case submittedMsg:
		return m.onSubmitted(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		// One network call at a time: input is dropped while loading.
		if m.loading {
			return m, nil
		}
		return m.onKey(msg)
	}

	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case mainMenuView:
		return m.mainMenuKey(msg)
	case coursesView:
		return m.coursesKey(msg)
	case assignmentsView:
		return m.assignmentsKey(msg)
	case assignmentDetailView:
		return m.detailKey(msg)
	case fileBrowserView:
		return m.browserKey(msg)
	case confirmSubmitView:
		return m.confirmKey(msg)
	case settingsView:
		return m.settingsKey(msg)
	case tokenInputView:
		return m.tokenInputKey(msg)
	case messageView:
		return m.messageKey(msg)
	}
	return m, nil
}

func (m Model) mainMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.Result
	m.menu, result = m.menu.Update(msg)

	switch result.Kind {
	case ui.ResultSelected:
		switch result.Index {
		case 0:
			if !m.session.LoggedIn {
				return m.showMessage("Error", "Please log in first.", mainMenuView), nil
			}
			return m.startLoadCourses()
		case 1:
			return m.enterSettings(), nil
		case 2:
			m.quitting = true
			return m, tea.Quit
		}
	case ui.ResultCancelled:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startLoadCourses() (tea.Model, tea.Cmd) {
	m.loading = true
	m.loadingText = "Loading courses..."
	return m, tea.Batch(m.spin.Tick, m.coursesCmd())
}

func (m Model) coursesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.Result
	m.menu, result = m.menu.Update(msg)

	switch result.Kind {
	case ui.ResultSelected:
		if result.Index >= len(m.courses) {
			return m.enterMainMenu(), nil
		}
		m.course = m.courses[result.Index]
		m.loading = true
		m.loadingText = "Loading assignments..."
		return m, tea.Batch(m.spin.Tick, m.assignmentsCmd(m.course.ID))
	case ui.ResultCancelled:
		return m.enterMainMenu(), nil
	}
	return m, nil
}

func (m Model) assignmentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.Result
	m.menu, result = m.menu.Update(msg)

	switch result.Kind {
	case ui.ResultSelected:
		if result.Index == m.backRow {
			return m.enterCourses(), nil
		}
		if a, ok := m.rowAssignments[result.Index]; ok {
			m.assignment = a
			return m.enterDetail(), nil
		}
	case ui.ResultCancelled:
		return m.enterCourses(), nil
	}
	return m, nil
}

func (m Model) detailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.Result
	m.menu, result = m.menu.Update(msg)

	switch result.Kind {
	case ui.ResultSelected:
		switch result.Index {
		case 0:
			m.mode = fileBrowserView
			m.browser = ui.NewFileBrowser(m.styles, m.opts.StartDir)
			m.browser.SetHeight(m.height - 12)
			return m, nil
		case 1:
			return m.enterAssignments(), nil
		}
	case ui.ResultCancelled:
		return m.enterAssignments(), nil
	}
	return m, nil
}

func (m Model) browserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.BrowseResult
	m.browser, result = m.browser.Update(msg)

	switch result.Kind {
	case ui.BrowsePicked:
		m.pendingFile = result.Path
		if m.settings.ConfirmSubmit {
			m.mode = confirmSubmitView
			m.confirm = ui.NewConfirm(m.styles, fmt.Sprintf(
				"You are about to submit the following file:\n\n"+
					"File: %s\nFor assignment: %s\n\n"+
					"Do you want to proceed with the submission?",
				filepath.Base(result.Path), m.assignment.Name))
			return m, nil
		}
		return m.startSubmit()
	case ui.BrowseCancelled:
		return m.enterDetail(), nil
	}
	return m, nil
}

// startSubmit kicks off the three-stage submission workflow for the
// pending file.
func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	m.loading = true
	m.loadingText = fmt.Sprintf("Uploading file: %s...", filepath.Base(m.pendingFile))
	return m, tea.Batch(m.spin.Tick,
		m.submitCmd(m.assignment.CourseID, m.assignment.ID, m.pendingFile))
}

func (m Model) confirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.confirm.Update(msg) {
	case ui.ConfirmAccepted:
		return m.startSubmit()
	case ui.ConfirmDeclined:
		// Declining is a cancellation, never a failure.
		return m.showMessage("Notice", "File upload cancelled.", assignmentDetailView), nil
	}
	return m, nil
}

func (m Model) settingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.Result
	m.menu, result = m.menu.Update(msg)

	switch result.Kind {
	case ui.ResultSelected:
		switch result.Index {
		case 0:
			return m.enterTokenInput(), nil
		case 1:
			m.settings.ConfirmSubmit = !m.settings.ConfirmSubmit
			if err := config.SaveSettings(m.opts.ConfigDir, m.settings); err != nil {
				m.logger.Warn("settings save failed", zap.Error(err))
			}
			state := "enabled"
			if !m.settings.ConfirmSubmit {
				state = "disabled"
			}
			return m.showMessage("Settings Updated",
				fmt.Sprintf("Confirmation prompt %s.", state), settingsView), nil
		case 2:
			return m.logout(), nil
		case 3:
			return m.enterMainMenu(), nil
		}
	case ui.ResultCancelled:
		return m.enterMainMenu(), nil
	}
	return m, nil
}

func (m Model) logout() Model {
	m.api = nil
	m.session = Session{}
	if err := config.SaveToken(m.opts.ConfigDir, ""); err != nil {
		m.logger.Warn("token clear failed", zap.Error(err))
	}
	return m.showMessage("Success", "Logged out successfully!", settingsView)
}

func (m Model) tokenInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		token := m.tokenInput.Value()
		if token == "" {
			return m.enterSettings(), nil
		}
		m.loading = true
		m.loadingText = "Validating token..."
		return m, tea.Batch(m.spin.Tick, m.checkTokenCmd(token, true))
	case tea.KeyEsc:
		return m.enterSettings(), nil
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m Model) messageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.resultMenu != nil {
		menu, result := m.resultMenu.Update(msg)
		m.resultMenu = &menu
		switch result.Kind {
		case ui.ResultAction:
			if result.Action == "retry" {
				return m.startSubmit()
			}
			return m.enterDetail(), nil
		case ui.ResultCancelled:
			return m.enterDetail(), nil
		}
		return m, nil
	}

	// Dismissable dialog: any key returns to the previous view.
	return m.enter(m.returnMode), nil
}

func (m Model) onTokenChecked(msg tokenCheckedMsg) (tea.Model, tea.Cmd) {
	m.loading = false

	if msg.err != nil {
		// Auth failure downgrades to logged out; it is never fatal.
		m.logger.Warn("token validation failed", zap.Error(msg.err))
		if msg.persist {
			return m.showMessage("Error", "Invalid Token. Please try again.", settingsView), nil
		}
		return m.showMessage("Error",
			"Saved access token is invalid. Please set a new token in Settings.", mainMenuView), nil
	}

	m.api = canvas.New(m.opts.BaseURL, msg.token, m.logger)
	m.session = Session{LoggedIn: true, Username: msg.user.Name}

	if msg.persist {
		if err := config.SaveToken(m.opts.ConfigDir, msg.token); err != nil {
			m.logger.Warn("token save failed", zap.Error(err))
		}
		return m.showMessage("Success",
			"Access Token saved and validated successfully!", settingsView), nil
	}

	// Startup validation succeeded: go straight to the course list.
	return m.startLoadCourses()
}

func (m Model) onCourses(msg coursesMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil || len(msg.courses) == 0 {
		if msg.err != nil {
			m.logger.Warn("course listing failed", zap.Error(msg.err))
		}
		return m.showMessage("Error", "No courses found.", mainMenuView), nil
	}
	m.courses = msg.courses
	return m.enterCourses(), nil
}

func (m Model) onAssignments(msg assignmentsMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil || len(msg.assignments) == 0 {
		if msg.err != nil {
			m.logger.Warn("assignment listing failed", zap.Error(msg.err))
		}
		return m.showMessage("Notice", "No assignments found for this course.", coursesView), nil
	}
	m.assignments = msg.assignments
	return m.enterAssignments(), nil
}

func (m Model) onSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.result.Success {
		return m.showMessage("Success", msg.result.Message, assignmentDetailView), nil
	}
	return m.showFailedSubmission(msg.result), nil
}
