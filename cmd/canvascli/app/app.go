// Package app implements the interactive canvascli session: a single
// bubbletea program that drives the menu engine through course browsing,
// assignment browsing, and the file-submission workflow.
//
// The session is strictly sequential. At most one network call is ever in
// flight; while it runs the model is in the loading state, shows a
// spinner, and ignores input. The only suspension points are terminal
// input and that single network round-trip.
package app

import (
	"time"

	"canvascli/cmd/canvascli/ui"
	"canvascli/internal/canvas"
	"canvascli/internal/config"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// Session is the single source of truth for "who is logged in". It is
// owned by the application model, written only when a token validates or
// the user logs out, and read by the header renderer.
type Session struct {
	LoggedIn bool
	Username string
}

type viewMode int

const (
	mainMenuView viewMode = iota
	coursesView
	assignmentsView
	assignmentDetailView
	fileBrowserView
	confirmSubmitView
	settingsView
	tokenInputView
	messageView
)

// Options configures a session.
type Options struct {
	// BaseURL overrides the API root; empty selects the default.
	BaseURL string
	// ConfigDir holds the settings and token files.
	ConfigDir string
	// StartDir is where the file browser opens; empty means the
	// current directory.
	StartDir string
	Logger   *zap.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Model is the bubbletea model for the whole session.
type Model struct {
	opts   Options
	logger *zap.Logger
	styles ui.Styles

	api      *canvas.Client
	session  Session
	settings config.Settings

	mode       viewMode
	menu       ui.Menu
	browser    ui.FileBrowser
	confirm    ui.Confirm
	tokenInput textinput.Model
	spin       spinner.Model
	renderer   *glamour.TermRenderer

	loading     bool
	loadingText string

	width  int
	height int

	courses        []canvas.Course
	course         canvas.Course
	assignments    []canvas.Assignment
	rowAssignments map[int]canvas.Assignment
	backRow        int
	assignment     canvas.Assignment
	pendingFile    string

	messageTitle string
	messageText  string
	// returnMode is where a dismissed message navigates back to.
	returnMode viewMode
	// resultMenu is set on submission-failure dialogs, which carry a
	// horizontal retry/back action row instead of being dismissable.
	resultMenu *ui.Menu

	now          func() time.Time
	initialToken string
	quitting     bool
}

// New creates the session model. Settings and token problems degrade to
// defaults; they never prevent the session from starting.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	settings, err := config.LoadSettings(opts.ConfigDir)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", zap.Error(err))
	}

	styles := ui.DefaultStyles()

	input := textinput.New()
	input.Placeholder = "Access token"
	input.CharLimit = 256

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)
	if err != nil {
		logger.Warn("markdown renderer unavailable", zap.Error(err))
		renderer = nil
	}

	m := Model{
		opts:       opts,
		logger:     logger,
		styles:     styles,
		settings:   settings,
		tokenInput: input,
		spin:       spin,
		renderer:   renderer,
		now:        nowFn,
	}
	m = m.enterMainMenu()

	token, err := config.LoadToken(opts.ConfigDir)
	if err != nil {
		logger.Warn("token file unreadable", zap.Error(err))
	}
	if token == "" {
		return m.showMessage("Notice",
			"No access token found. Please set a token in Settings.", mainMenuView)
	}
	m.initialToken = token
	m.loading = true
	m.loadingText = "Validating saved access token..."
	return m
}

// Init validates any saved token and, on success, auto-navigates into the
// course list.
func (m Model) Init() tea.Cmd {
	if m.initialToken == "" {
		return m.spin.Tick
	}
	return tea.Batch(m.spin.Tick, m.checkTokenCmd(m.initialToken, false))
}

// Session returns the current session state.
func (m Model) Session() Session { return m.session }

func (m Model) contentWidth() int {
	w := m.width - ui.ArtWidth - ui.ContentIndent*2
	if w < 20 {
		w = 40
	}
	return w
}
