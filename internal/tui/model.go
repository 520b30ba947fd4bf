package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
)

// Model is the root Bubbletea model for the monitor.
type Model struct {
	src      Source
	deriver  *badge.Deriver
	settings *models.Settings

	// Count data
	results     []query.Result
	loading     bool
	lastUpdated time.Time

	// Perspective panel
	showPerspectives   bool
	perspectives       []string
	perspectivesErr    error
	loadingPerspective bool
	offset             int

	plugin PluginStatusMsg
	err    error

	spinner spinner.Model
	width   int
	height  int
}

// NewModel creates the initial monitor model.
func NewModel(src Source, deriver *badge.Deriver, settings *models.Settings) Model {
	if settings == nil {
		settings = models.NewSettings()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = stateShortStyle
	return Model{
		src:      src,
		deriver:  deriver,
		settings: settings,
		loading:  true,
		spinner:  sp,
	}
}

func (m Model) refreshEvery() time.Duration {
	secs := m.settings.Polling.DefaultRefreshInterval
	if secs < m.settings.Polling.MinRefreshInterval {
		secs = m.settings.Polling.MinRefreshInterval
	}
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadCountsCmd(m.src),
		pluginStatusCmd(),
		m.spinner.Tick,
		refreshTick(m.refreshEvery()),
	)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case CountsLoadedMsg:
		m.results = msg.Snapshot.Results
		m.plugin = PluginStatusMsg{Running: msg.Snapshot.PluginRunning, PID: msg.Snapshot.PluginPID}
		m.loading = false
		m.lastUpdated = msg.Snapshot.Updated
		return m, nil

	case PerspectivesLoadedMsg:
		m.perspectives = msg.Names
		m.perspectivesErr = msg.Err
		m.loadingPerspective = false
		m.offset = 0
		return m, nil

	case PluginStatusMsg:
		m.plugin = msg
		return m, nil

	case refreshTickMsg:
		cmds := []tea.Cmd{refreshTick(m.refreshEvery())}
		if !m.loading {
			m.loading = true
			cmds = append(cmds, loadCountsCmd(m.src))
		}
		return m, tea.Batch(cmds...)

	case SettingsChangedMsg:
		return m, reloadSettingsCmd()

	case settingsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.settings = msg.settings
		m.deriver.SetThresholds(badge.NewThresholds(msg.settings))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		cmds := []tea.Cmd{loadCountsCmd(m.src)}
		if m.showPerspectives && !m.loadingPerspective {
			m.loadingPerspective = true
			cmds = append(cmds, loadPerspectivesCmd(m.src))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, keys.Perspectives):
		m.showPerspectives = !m.showPerspectives
		if m.showPerspectives && m.perspectives == nil && !m.loadingPerspective {
			m.loadingPerspective = true
			return m, loadPerspectivesCmd(m.src)
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.offset < len(m.perspectives)-1 {
			m.offset++
		}
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.offset > 0 {
			m.offset--
		}
		return m, nil
	}
	return m, nil
}
