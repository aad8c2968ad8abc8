package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joacominatel/askdb/internal/config"
	"github.com/joacominatel/askdb/internal/logging"
	"github.com/joacominatel/askdb/internal/tui"
	"github.com/joacominatel/askdb/internal/voice"
)

// runTUI starts the terminal UI. Logs go to the log file because bubbletea
// owns the terminal.
func runTUI(ctx context.Context, rt *runtime) error {
	f, err := logging.OpenFile(rt.cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	rt.log = logging.New(rt.cfg.Log, f, rt.opts.verbose)

	var initial *config.Connection
	if rt.opts.dsn != "" || rt.opts.connection != "" {
		conn, err := rt.connection()
		if err != nil {
			return err
		}
		initial = &conn
	}

	listener, speaker := voice.FromConfig(rt.cfg.Voice, rt.cfg.SpeechKey(), rt.log)

	model := tui.NewModel(tui.Deps{
		Config:     rt.cfg,
		NewService: rt.newService,
		Listener:   listener,
		Speaker:    speaker,
		Log:        rt.log,
		Initial:    initial,
	})

	rt.log.Info("starting tui", "version", Version)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(tui.Model); ok && m.Service() != nil {
		_ = m.Service().Disconnect()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
