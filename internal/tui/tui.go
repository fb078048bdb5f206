package tui

import (
	"time"

	"taskdesk/internal/board"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Repo   board.Repository
	Logger log.FieldLogger
	// Timeout bounds every backend call made from the UI.
	Timeout time.Duration
	// RefetchDelay is how long after a create/edit the list is re-fetched. 0 disables it.
	RefetchDelay time.Duration
	Theme        string
	Glyphs       string
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	applyGlyphPreference(opts.Glyphs)

	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
