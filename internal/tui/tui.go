// Package tui implements the live count monitor behind `ofsd watch`.
package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
	"github.com/ofsd-io/ofsd/internal/watcher"
)

// Source supplies counts and perspective names.
type Source interface {
	Count(ctx context.Context, source models.BadgeSource) query.Result
	Perspectives(ctx context.Context) ([]string, error)
}

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the monitor. It refreshes every settings.Polling.DefaultRefreshInterval
// seconds and whenever the plugin starts or stops.
func Run(src Source, settings *models.Settings, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ref := &programRef{}
	deriver := badge.NewDeriver(badge.NewThresholds(settings))
	model := NewModel(src, deriver, settings)

	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.Set(p)
	defer ref.Clear()

	if w, err := watcher.New(logger); err != nil {
		logger.Debug("plugin status updates disabled", zap.Error(err))
	} else if err := w.Start(); err != nil {
		logger.Debug("plugin status updates disabled", zap.Error(err))
	} else {
		defer w.Stop()
		go forwardWatcherEvents(w, ref)
	}

	_, err := p.Run()
	return err
}

// forwardWatcherEvents turns plugin start/stop into a status message.
func forwardWatcherEvents(w *watcher.Watcher, ref *programRef) {
	for ev := range w.Events() {
		switch ev.Type {
		case watcher.EventPluginChanged, watcher.EventPluginRemoved:
			ref.Send(pluginStatusCmd()())
		case watcher.EventSettingsChanged:
			ref.Send(SettingsChangedMsg{})
		}
	}
}
