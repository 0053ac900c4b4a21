package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"canvascli/internal/config"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLMS serves the whole API surface the session touches, plus the
// independent upload target.
type fakeLMS struct {
	api            *httptest.Server
	upload         *httptest.Server
	registerStatus int
	uploadCalls    atomic.Int64
}

func newFakeLMS(t *testing.T) *fakeLMS {
	t.Helper()
	f := &fakeLMS{registerStatus: http.StatusCreated}

	f.upload = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.uploadCalls.Add(1)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 55}`))
	}))
	t.Cleanup(f.upload.Close)

	f.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/users/self":
			w.Write([]byte(`{"id": 1, "name": "Test Student"}`))
		case "/courses":
			w.Write([]byte(`[{"id": 1, "name": "Calc"}]`))
		case "/courses/1/assignments":
			w.Write([]byte(`[{"id": 9, "course_id": 1, "name": "Homework", "due_at": null, "submission_types": ["online_upload"]}]`))
		case "/courses/1/students/submissions":
			w.Write([]byte(`[]`))
		case "/courses/1/assignments/9/submissions/self/files":
			fmt.Fprintf(w, `{"upload_url": %q, "upload_params": {"key": "v"}}`, f.upload.URL)
		case "/courses/1/assignments/9/submissions":
			w.WriteHeader(f.registerStatus)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.api.Close)

	return f
}

// newSessionModel builds a model wired to the fake LMS with a saved valid
// token and a start directory containing exactly one file.
func newSessionModel(t *testing.T, lms *fakeLMS, confirmSubmit bool) Model {
	t.Helper()

	cfgDir := t.TempDir()
	require.NoError(t, config.SaveToken(cfgDir, "abc"))
	require.NoError(t, config.SaveSettings(cfgDir, config.Settings{ConfirmSubmit: confirmSubmit}))

	startDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(startDir, "essay.txt"), []byte("hello"), 0o644))

	return New(Options{
		BaseURL:   lms.api.URL,
		ConfigDir: cfgDir,
		StartDir:  startDir,
		Now:       func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
}

// deliver executes a command and feeds every resulting message back into
// the model, skipping spinner ticks, until the model goes quiet.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = deliver(t, m, c)
		}
		return m
	case spinner.TickMsg:
		return m
	default:
		next, followup := m.Update(msg)
		return deliver(t, next.(Model), followup)
	}
}

func press(t *testing.T, m Model, key tea.KeyType) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return deliver(t, next.(Model), cmd)
}

func TestSession_EndToEndSubmission(t *testing.T) {
	lms := newFakeLMS(t)
	m := newSessionModel(t, lms, false)

	// Startup: saved token validates, session populates, and the model
	// auto-navigates into the course list.
	m = deliver(t, m, m.Init())
	require.Equal(t, coursesView, m.mode)
	assert.True(t, m.Session().LoggedIn)
	assert.Equal(t, "Test Student", m.Session().Username)

	// Select course "Calc".
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, assignmentsView, m.mode)
	require.Len(t, m.assignments, 1)

	// First selectable row is the undated assignment.
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, assignmentDetailView, m.mode)
	assert.Equal(t, int64(9), m.assignment.ID)

	// Upload Local File -> browser; pick the only file. With
	// confirm_submit=false the workflow starts with no prompt.
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, fileBrowserView, m.mode)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)

	require.Equal(t, messageView, m.mode)
	assert.Equal(t, "Success", m.messageTitle)
	assert.NotEmpty(t, m.messageText)
	assert.Equal(t, int64(1), lms.uploadCalls.Load())
}

func TestSession_ConfirmationGate(t *testing.T) {
	lms := newFakeLMS(t)
	m := newSessionModel(t, lms, true)

	m = deliver(t, m, m.Init())
	m = press(t, m, tea.KeyEnter) // course
	m = press(t, m, tea.KeyEnter) // assignment
	m = press(t, m, tea.KeyEnter) // upload local file
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter) // pick file

	// confirm_submit=true interposes the prompt before stage 1.
	require.Equal(t, confirmSubmitView, m.mode)
	assert.Equal(t, int64(0), lms.uploadCalls.Load())

	// Declining is a cancellation, not a failure.
	m = press(t, m, tea.KeyEsc)
	require.Equal(t, messageView, m.mode)
	assert.Equal(t, "Notice", m.messageTitle)
	assert.Contains(t, m.messageText, "cancelled")
	assert.Equal(t, int64(0), lms.uploadCalls.Load())

	// Dismiss returns to the assignment details.
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, assignmentDetailView, m.mode)
}

func TestSession_ConfirmationAcceptRunsWorkflow(t *testing.T) {
	lms := newFakeLMS(t)
	m := newSessionModel(t, lms, true)

	m = deliver(t, m, m.Init())
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, confirmSubmitView, m.mode)

	m = press(t, m, tea.KeyEnter)
	require.Equal(t, messageView, m.mode)
	assert.Equal(t, "Success", m.messageTitle)
	assert.Equal(t, int64(1), lms.uploadCalls.Load())
}

func TestSession_FailedSubmissionOffersRetry(t *testing.T) {
	lms := newFakeLMS(t)
	lms.registerStatus = http.StatusBadRequest
	m := newSessionModel(t, lms, false)

	m = deliver(t, m, m.Init())
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)

	require.Equal(t, messageView, m.mode)
	require.NotNil(t, m.resultMenu)
	assert.Contains(t, m.messageText, "register")

	// Retry is a fresh run of the whole workflow.
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, messageView, m.mode)
	assert.Equal(t, int64(2), lms.uploadCalls.Load())

	// Go Back returns to the assignment details.
	m = press(t, m, tea.KeyRight)
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, assignmentDetailView, m.mode)
}

func TestSession_InvalidSavedTokenStaysLoggedOut(t *testing.T) {
	lms := newFakeLMS(t)

	cfgDir := t.TempDir()
	require.NoError(t, config.SaveToken(cfgDir, "wrong"))

	m := New(Options{BaseURL: lms.api.URL, ConfigDir: cfgDir})
	m = deliver(t, m, m.Init())

	require.Equal(t, messageView, m.mode)
	assert.False(t, m.Session().LoggedIn)

	// Dismiss to the main menu; Canvas demands a login first.
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, mainMenuView, m.mode)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, messageView, m.mode)
	assert.Contains(t, m.messageText, "log in")
}

func TestSession_NoTokenShowsNotice(t *testing.T) {
	m := New(Options{ConfigDir: t.TempDir()})
	require.Equal(t, messageView, m.mode)
	assert.Contains(t, m.messageText, "No access token")

	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, mainMenuView, m.mode)
}

func TestSession_InputIgnoredWhileLoading(t *testing.T) {
	m := New(Options{ConfigDir: t.TempDir()})
	m.loading = true
	m.mode = mainMenuView

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, mainMenuView, next.(Model).mode)
}

func TestSession_SettingsToggleAndLogout(t *testing.T) {
	lms := newFakeLMS(t)
	m := newSessionModel(t, lms, true)
	m = deliver(t, m, m.Init())

	// Back out of the courses list into the main menu, then Settings.
	m = press(t, m, tea.KeyEsc)
	require.Equal(t, mainMenuView, m.mode)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, settingsView, m.mode)

	// Toggle the confirmation prompt and verify it persisted.
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, messageView, m.mode)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, settingsView, m.mode)

	saved, err := config.LoadSettings(m.opts.ConfigDir)
	require.NoError(t, err)
	assert.False(t, saved.ConfirmSubmit)

	// Logout clears the session and the stored token.
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, messageView, m.mode)
	assert.False(t, m.Session().LoggedIn)

	token, err := config.LoadToken(m.opts.ConfigDir)
	require.NoError(t, err)
	assert.Empty(t, token)
}
