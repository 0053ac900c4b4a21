package app

import (
	"context"

	"canvascli/internal/canvas"

	tea "github.com/charmbracelet/bubbletea"
)

// Network results delivered back into Update. Each command runs exactly
// one round-trip; the model stays in the loading state until its message
// arrives, so calls never overlap.

type tokenCheckedMsg struct {
	token   string
	user    canvas.User
	persist bool
	err     error
}

type coursesMsg struct {
	courses []canvas.Course
	err     error
}

type assignmentsMsg struct {
	assignments []canvas.Assignment
	err         error
}

type submittedMsg struct {
	result canvas.SubmissionResult
}

// checkTokenCmd validates token against users/self. persist marks tokens
// the user just typed, which are saved on success.
func (m Model) checkTokenCmd(token string, persist bool) tea.Cmd {
	api := canvas.New(m.opts.BaseURL, token, m.logger)
	return func() tea.Msg {
		user, err := api.ActiveUser(context.Background())
		return tokenCheckedMsg{token: token, user: user, persist: persist, err: err}
	}
}

func (m Model) coursesCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		courses, err := api.Courses(context.Background())
		return coursesMsg{courses: courses, err: err}
	}
}

func (m Model) assignmentsCmd(courseID int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		assignments, err := api.Assignments(context.Background(), courseID)
		return assignmentsMsg{assignments: assignments, err: err}
	}
}

func (m Model) submitCmd(courseID, assignmentID int64, path string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		return submittedMsg{result: api.SubmitFile(context.Background(), courseID, assignmentID, path)}
	}
}
