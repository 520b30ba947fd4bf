package tray

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/monitor"
)

//go:embed icon.png
var iconData []byte

var (
	opts        Options
	countItems  = map[models.BadgeSource]*systray.MenuItem{}
	pluginItem  *systray.MenuItem
	updatedItem *systray.MenuItem
	refreshItem *systray.MenuItem
	quitItem    *systray.MenuItem

	refreshCh = make(chan struct{}, 1)
	stopOnce  sync.Once
	stopCh    = make(chan struct{})
)

// Run starts the tray. This blocks the calling goroutine (must be main).
func Run(o Options) {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if !o.Primary.Valid() {
		o.Primary = models.BadgeSourceOverdue
	}
	if o.Interval <= 0 {
		o.Interval = time.Minute
	}
	opts = o
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("ofsd: starting")

	header := systray.AddMenuItem("ofsd", "")
	header.Disable()

	systray.AddSeparator()

	for _, s := range models.BadgeSources {
		item := systray.AddMenuItem(monitor.CountLine(s, nil), "")
		item.Disable()
		countItems[s] = item
	}

	systray.AddSeparator()

	pluginItem = systray.AddMenuItem("Plugin: checking...", "")
	pluginItem.Disable()
	updatedItem = systray.AddMenuItem("Not updated yet", "")
	updatedItem.Disable()

	systray.AddSeparator()

	refreshItem = systray.AddMenuItem("Refresh Now", "Query the task app again")
	quitItem = systray.AddMenuItem("Quit", "Close the menu-bar monitor")

	go poll()
	go handleClicks()
}

func onQuit() {
	stopOnce.Do(func() { close(stopCh) })
}

func handleClicks() {
	for {
		select {
		case <-stopCh:
			return
		case <-refreshItem.ClickedCh:
			select {
			case refreshCh <- struct{}{}:
			default:
			}
		case <-quitItem.ClickedCh:
			Quit()
			return
		}
	}
}

// poll refreshes immediately, then on every tick or manual refresh.
func poll() {
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		Update(monitor.Collect(context.Background(), opts.Source))
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		case <-refreshCh:
		}
	}
}

// Update refreshes the menu items, title and tooltip.
func Update(snap monitor.Snapshot) {
	for _, s := range models.BadgeSources {
		if r, ok := snap.Count(s); ok {
			countItems[s].SetTitle(monitor.CountLine(s, &r))
		}
	}
	if snap.PluginRunning {
		pluginItem.SetTitle(fmt.Sprintf("Plugin: running (PID %d)", snap.PluginPID))
	} else {
		pluginItem.SetTitle("Plugin: not running")
	}
	updatedItem.SetTitle("Updated " + snap.Updated.Format("15:04:05"))

	systray.SetTitle(monitor.Title(snap, opts.Primary))
	systray.SetTooltip(monitor.Tooltip(snap))

	if r, ok := snap.Count(opts.Primary); ok && opts.Deriver != nil {
		opts.Logger.Debug("tray updated",
			zap.String("source", string(opts.Primary)),
			zap.Int("count", r.Count),
			zap.Stringer("state", opts.Deriver.Derive(r.Count, r.Source)))
	}
}
