package main

import (
	"fmt"
	"os"

	"canvascli/cmd/canvascli/app"
	"canvascli/internal/canvas"
	"canvascli/internal/config"
	"canvascli/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose   bool
	baseURL   string
	configDir string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "canvascli",
	Short: "Interactive terminal client for the Canvas LMS",
	Long: `canvascli is a full-screen terminal client for a Canvas-style LMS:
browse your courses and upcoming assignments, and submit a local file
to an assignment without leaving the terminal.

Run without arguments to start the interactive session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := configDir
		if dir == "" {
			var err error
			dir, err = config.DefaultDir()
			if err != nil {
				return fmt.Errorf("resolve config directory: %w", err)
			}
		}

		// The TUI owns the terminal; logs go to a file under the
		// config directory.
		logger = logging.New(dir, verbose)
		defer func() { _ = logger.Sync() }()

		model := app.New(app.Options{
			BaseURL:   baseURL,
			ConfigDir: dir,
			Logger:    logger,
		})

		// bubbletea restores the terminal from the alternate screen on
		// both normal exit and panics, so an abnormal exit never leaves
		// the terminal in raw mode.
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("session ended abnormally", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", canvas.DefaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory for settings, token, and logs (default ~/.canvascli)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
