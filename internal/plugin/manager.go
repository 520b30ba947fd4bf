// Package plugin coordinates configured buttons: it keeps one poll loop per
// action context and routes deck events to the forwarder.
package plugin

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/forwarder"
	"github.com/ofsd-io/ofsd/internal/models"
)

// Action is one configured button.
type Action struct {
	Context  string
	UUID     string
	Settings models.ActionSettings

	// Unavailable is set when the count script could not be set up. The
	// context is not polled again until it is reconfigured.
	Unavailable bool
	alerted     bool

	LastCount   int
	LastState   models.DueTasksState
	LastUpdated time.Time

	interval time.Duration
	stop     chan struct{}
}

// Status is a read-only snapshot of an Action.
type Status struct {
	Context     string
	Source      models.BadgeSource
	Perspective string
	Interval    time.Duration
	Unavailable bool
	LastCount   int
	LastState   models.DueTasksState
	LastUpdated time.Time
}

// Config wires a Manager.
type Config struct {
	Forwarder *forwarder.Forwarder
	Deriver   *badge.Deriver
	Queue     *automation.Queue // optional; its timeout follows settings reloads
	Settings  *models.Settings
	Logger    *zap.Logger
}

// Manager tracks configured buttons and refreshes their badges.
type Manager struct {
	fwd     *forwarder.Forwarder
	deriver *badge.Deriver
	queue   *automation.Queue
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	settings   *models.Settings
	actions    map[string]*Action // keyed by context
	onChangeFn func()

	intervalFn func(models.ActionSettings, *models.Settings) time.Duration
}

// NewManager creates a Manager. Close stops its poll loops.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := cfg.Settings
	if settings == nil {
		settings = models.NewSettings()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		fwd:        cfg.Forwarder,
		deriver:    cfg.Deriver,
		queue:      cfg.Queue,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		settings:   settings,
		actions:    make(map[string]*Action),
		intervalFn: refreshInterval,
	}
}

func refreshInterval(a models.ActionSettings, s *models.Settings) time.Duration {
	return a.Interval(s.Polling.DefaultRefreshInterval, s.Polling.MinRefreshInterval)
}

// SetOnChange sets a callback invoked whenever a badge or the set of
// actions changes.
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChangeFn = fn
}

func (m *Manager) notifyChange() {
	m.mu.RLock()
	fn := m.onChangeFn
	m.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Appear starts tracking a context and refreshes it right away.
func (m *Manager) Appear(ctxID, uuid string, settings models.ActionSettings) {
	m.mu.Lock()
	if old, ok := m.actions[ctxID]; ok {
		close(old.stop)
	}
	a := &Action{
		Context:  ctxID,
		UUID:     uuid,
		Settings: settings,
		interval: m.intervalFn(settings, m.settings),
		stop:     make(chan struct{}),
	}
	m.actions[ctxID] = a
	stop, interval := a.stop, a.interval
	m.mu.Unlock()

	m.fwd.Track(ctxID)
	m.startLoop(ctxID, stop, interval)
	m.logger.Info("action appeared",
		zap.String("context", ctxID),
		zap.String("source", string(settings.Source())),
		zap.Duration("interval", interval))

	m.RefreshAsync(ctxID)
	m.notifyChange()
}

// Disappear stops tracking a context. A query still running for it is
// discarded when it completes.
func (m *Manager) Disappear(ctxID string) {
	m.mu.Lock()
	a, ok := m.actions[ctxID]
	if ok {
		close(a.stop)
		delete(m.actions, ctxID)
	}
	m.mu.Unlock()

	m.fwd.Untrack(ctxID)
	if ok {
		m.logger.Info("action disappeared", zap.String("context", ctxID))
		m.notifyChange()
	}
}

// UpdateSettings applies new per-action settings. Reconfiguring clears the
// unavailable flag, restarts the poll loop if the interval changed and
// refreshes right away.
func (m *Manager) UpdateSettings(ctxID string, settings models.ActionSettings) {
	m.mu.Lock()
	a, ok := m.actions[ctxID]
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("settings for unknown context", zap.String("context", ctxID))
		return
	}
	a.Settings = settings
	a.Unavailable = false
	a.alerted = false
	interval := m.intervalFn(settings, m.settings)
	restart := interval != a.interval
	if restart {
		close(a.stop)
		a.stop = make(chan struct{})
		a.interval = interval
	}
	stop := a.stop
	m.mu.Unlock()

	if restart {
		m.startLoop(ctxID, stop, interval)
	}
	m.logger.Info("action settings changed",
		zap.String("context", ctxID),
		zap.String("source", string(settings.Source())),
		zap.String("perspective", settings.TargetPerspective()),
		zap.Duration("interval", interval))
	m.RefreshAsync(ctxID)
}

func (m *Manager) startLoop(ctxID string, stop <-chan struct{}, interval time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				m.Refresh(ctxID)
			}
		}
	}()
}

// RefreshAsync refreshes a context without blocking the caller.
func (m *Manager) RefreshAsync(ctxID string) {
	if m.ctx.Err() != nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Refresh(ctxID)
	}()
}

// Refresh queries and pushes the badge for one context. Unavailable
// contexts are skipped.
func (m *Manager) Refresh(ctxID string) {
	m.mu.RLock()
	a, ok := m.actions[ctxID]
	var source models.BadgeSource
	var skip bool
	if ok {
		source = a.Settings.Source()
		skip = a.Unavailable
	}
	m.mu.RUnlock()
	if !ok || skip {
		return
	}

	res, outcome, err := m.fwd.RefreshBadge(m.ctx, ctxID, source)
	if err != nil {
		m.logger.Warn("failed to push badge", zap.String("context", ctxID), zap.Error(err))
	}
	if outcome != forwarder.Delivered {
		return
	}

	alert := false
	m.mu.Lock()
	if cur, ok := m.actions[ctxID]; ok && cur == a {
		a.LastCount = res.Count
		a.LastState = m.deriver.Derive(res.Count, res.Source)
		a.LastUpdated = time.Now()
		if automation.IsUnavailable(res.Err) {
			a.Unavailable = true
			alert = !a.alerted
			a.alerted = true
		}
	}
	m.mu.Unlock()

	if automation.IsTransient(res.Err) {
		m.logger.Debug("count failed, retrying on next poll", zap.String("context", ctxID), zap.Error(res.Err))
	}

	if alert {
		m.logger.Error("count script unavailable, pausing context until reconfigured",
			zap.String("context", ctxID), zap.Error(res.Err))
		if err := m.fwd.Alert(m.ctx, ctxID); err != nil {
			m.logger.Warn("failed to show alert", zap.Error(err))
		}
		if err := m.fwd.Log(m.ctx, "ofsd: "+res.Err.Error()); err != nil {
			m.logger.Debug("failed to mirror log to deck", zap.Error(err))
		}
	}
	m.notifyChange()
}

// RefreshAll refreshes every available context.
func (m *Manager) RefreshAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.actions))
	for id := range m.actions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.RefreshAsync(id)
	}
}

// ResetAll clears every badge without querying.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.actions))
	for id, a := range m.actions {
		a.LastCount = 0
		a.LastState = models.DueTasksStateNone
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.fwd.ResetBadge(m.ctx, id); err != nil {
			m.logger.Warn("failed to reset badge", zap.String("context", id), zap.Error(err))
		}
	}
	m.notifyChange()
}

// ReloadSettings applies new global settings: thresholds, script timeout
// and refresh intervals. Every context is then refreshed.
func (m *Manager) ReloadSettings(settings *models.Settings) {
	if settings == nil {
		return
	}
	m.deriver.SetThresholds(badge.NewThresholds(settings))
	if m.queue != nil {
		m.queue.SetTimeout(settings.Automation.ScriptTimeout)
	}

	type loop struct {
		ctxID    string
		stop     chan struct{}
		interval time.Duration
	}

	// A global reconfigure counts as reconfiguring every context.
	m.mu.Lock()
	m.settings = settings
	var restart []loop
	for id, a := range m.actions {
		a.Unavailable = false
		a.alerted = false
		interval := m.intervalFn(a.Settings, settings)
		if interval != a.interval {
			close(a.stop)
			a.stop = make(chan struct{})
			a.interval = interval
			restart = append(restart, loop{id, a.stop, interval})
		}
	}
	m.mu.Unlock()

	for _, l := range restart {
		m.startLoop(l.ctxID, l.stop, l.interval)
	}
	m.logger.Info("settings reloaded",
		zap.Int("short_threshold", settings.Badge.ShortThreshold),
		zap.Duration("script_timeout", settings.Automation.ScriptTimeout))
	m.RefreshAll()
}

// Settings returns the active global settings.
func (m *Manager) Settings() *models.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Action returns a snapshot of one context.
func (m *Manager) Action(ctxID string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actions[ctxID]
	if !ok {
		return Status{}, false
	}
	return a.status(), true
}

// Actions returns snapshots of every context.
func (m *Manager) Actions() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Status, 0, len(m.actions))
	for _, a := range m.actions {
		out = append(out, a.status())
	}
	return out
}

func (a *Action) status() Status {
	return Status{
		Context:     a.Context,
		Source:      a.Settings.Source(),
		Perspective: a.Settings.TargetPerspective(),
		Interval:    a.interval,
		Unavailable: a.Unavailable,
		LastCount:   a.LastCount,
		LastState:   a.LastState,
		LastUpdated: a.LastUpdated,
	}
}

// Close stops all poll loops and waits for running refreshes.
func (m *Manager) Close() {
	m.cancel()
	m.mu.Lock()
	for id, a := range m.actions {
		close(a.stop)
		delete(m.actions, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
