package plugin

import (
	"encoding/json"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/streamdeck"
)

// PerspectiveURL returns the URL that opens a perspective in the task app.
// An empty name opens the app itself.
func PerspectiveURL(name string) string {
	if name == "" {
		return "omnifocus:///"
	}
	return "omnifocus:///perspective/" + url.PathEscape(name)
}

// HandleEvent routes one deck event. It never blocks on automation: queries
// run on their own goroutines.
func (m *Manager) HandleEvent(msg streamdeck.Message) {
	switch msg.Event {
	case streamdeck.EventWillAppear:
		settings, ok := m.actionSettings(msg)
		if !ok {
			return
		}
		m.Appear(msg.Context, msg.Action, settings)

	case streamdeck.EventWillDisappear:
		m.Disappear(msg.Context)

	case streamdeck.EventDidReceiveSettings:
		settings, ok := m.actionSettings(msg)
		if !ok {
			return
		}
		m.UpdateSettings(msg.Context, settings)

	case streamdeck.EventKeyUp:
		m.KeyUp(msg.Context)

	case streamdeck.EventPropertyInspectorDidAppear:
		m.SendPerspectivesAsync(msg.Action, msg.Context)

	case streamdeck.EventSendToPlugin:
		var req models.InspectorRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			m.logger.Warn("bad property inspector message", zap.String("context", msg.Context), zap.Error(err))
			return
		}
		if req.EventType != models.EventGetPerspectives {
			m.logger.Debug("ignoring property inspector message", zap.String("eventType", req.EventType))
			return
		}
		m.SendPerspectivesAsync(msg.Action, msg.Context)

	case streamdeck.EventSystemDidWakeUp:
		m.logger.Info("refreshing all actions", zap.String("trigger", msg.Event))
		m.RefreshAll()

	case streamdeck.EventApplicationDidLaunch, streamdeck.EventApplicationDidTerminate:
		m.handleApplication(msg)

	default:
		m.logger.Debug("unhandled event", zap.String("event", msg.Event))
	}
}

// IsTaskApp reports whether a deck application identifier, usually a bundle
// ID such as "com.omnigroup.OmniFocus4", belongs to the app named appName.
// Spaces in appName are ignored, so "OmniFocus 4" matches only version 4.
func IsTaskApp(application, appName string) bool {
	key := strings.ToLower(strings.ReplaceAll(appName, " ", ""))
	if key == "" {
		return false
	}
	return strings.Contains(strings.ToLower(application), key)
}

func (m *Manager) handleApplication(msg streamdeck.Message) {
	p, err := msg.ApplicationPayload()
	if err != nil {
		m.logger.Warn("bad application payload", zap.String("event", msg.Event), zap.Error(err))
		return
	}
	appName := m.Settings().Automation.AppName
	if !IsTaskApp(p.Application, appName) {
		m.logger.Debug("ignoring other application", zap.String("application", p.Application), zap.String("event", msg.Event))
		return
	}

	if msg.Event == streamdeck.EventApplicationDidLaunch {
		m.logger.Info("task app launched, refreshing all actions", zap.String("application", p.Application))
		m.RefreshAll()
		return
	}
	m.logger.Info("task app quit, clearing badges", zap.String("application", p.Application))
	m.ResetAll()
}

func (m *Manager) actionSettings(msg streamdeck.Message) (models.ActionSettings, bool) {
	p, err := msg.ActionPayload()
	if err != nil {
		m.logger.Warn("bad action payload", zap.String("context", msg.Context), zap.Error(err))
		return models.ActionSettings{}, false
	}
	settings, err := models.ParseActionSettings(p.Settings)
	if err != nil {
		m.logger.Warn("bad action settings, using defaults", zap.String("context", msg.Context), zap.Error(err))
	}
	return settings, true
}

// KeyUp opens the configured perspective and refreshes the badge.
func (m *Manager) KeyUp(ctxID string) {
	m.mu.RLock()
	a, ok := m.actions[ctxID]
	var target string
	if ok {
		target = a.Settings.TargetPerspective()
	}
	m.mu.RUnlock()
	if !ok {
		return
	}

	u := PerspectiveURL(target)
	if err := m.fwd.OpenURL(m.ctx, u); err != nil {
		m.logger.Warn("failed to open perspective", zap.String("url", u), zap.Error(err))
	}
	m.RefreshAsync(ctxID)
}

// SendPerspectivesAsync answers a property inspector with the perspective
// list without blocking the caller.
func (m *Manager) SendPerspectivesAsync(action, ctxID string) {
	if m.ctx.Err() != nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := m.fwd.SendPerspectiveList(m.ctx, action, ctxID); err != nil {
			m.logger.Warn("failed to send perspective list", zap.String("context", ctxID), zap.Error(err))
		}
	}()
}
