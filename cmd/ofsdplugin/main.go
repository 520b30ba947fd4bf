// Package main is the entry point for the Stream Deck plugin process.
// The deck launches it with -port -pluginUUID -registerEvent -info.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/buildinfo"
	"github.com/ofsd-io/ofsd/internal/config"
	"github.com/ofsd-io/ofsd/internal/forwarder"
	"github.com/ofsd-io/ofsd/internal/logging"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/plugin"
	"github.com/ofsd-io/ofsd/internal/query"
	"github.com/ofsd-io/ofsd/internal/streamdeck"
	"github.com/ofsd-io/ofsd/internal/watcher"
)

func main() {
	args, err := streamdeck.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ofsdplugin: %v\n", err)
		os.Exit(2)
	}

	settings, settingsErr := config.LoadSettings()
	if settingsErr != nil {
		settings = models.NewSettings()
	}

	logger, err := newLogger(settings.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ofsdplugin: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync(logger) }()

	if settingsErr != nil {
		logger.Warn("failed to load settings, using defaults", zap.Error(settingsErr))
	}

	if err := run(args, settings, logger); err != nil {
		logger.Error("plugin stopped", zap.Error(err))
		_ = logging.Sync(logger)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if err := config.EnsureGlobalLogsDir(); err != nil {
		return nil, err
	}
	path, err := config.PluginLogFile()
	if err != nil {
		return nil, err
	}
	return logging.NewFileLogger(path, level)
}

func run(args *streamdeck.LaunchArgs, settings *models.Settings, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		zap.String("version", buildinfo.Version),
		zap.Int("port", args.Port),
		zap.String("deck_version", args.Info.Application.Version),
		zap.String("app", settings.Automation.AppName))

	queue := automation.NewQueue(settings.Automation.ScriptTimeout, logger.Named("automation"))
	defer queue.Stop()

	osa := automation.NewOSAScript(settings.Automation.AppName, logger.Named("automation"))
	tasks := query.New(automation.Serialized(osa, queue), logger.Named("query"))
	deriver := badge.NewDeriver(badge.NewThresholds(settings))

	client, err := streamdeck.Dial(ctx, args.Port, args.PluginUUID, args.RegisterEvent, logger.Named("streamdeck"))
	if err != nil {
		return err
	}
	defer client.Close()

	fwd := forwarder.New(client, tasks, deriver, logger.Named("forwarder"))
	mgr := plugin.NewManager(plugin.Config{
		Forwarder: fwd,
		Deriver:   deriver,
		Queue:     queue,
		Settings:  settings,
		Logger:    logger.Named("plugin"),
	})
	defer mgr.Close()

	warnIfOldDeck(ctx, args.Info, fwd, logger)

	info := models.NewPluginInfo(args.Port, os.Getpid(), args.PluginUUID)
	info.PluginVersion = buildinfo.Version
	if err := config.SavePluginInfo(info); err != nil {
		logger.Warn("failed to write plugin info", zap.Error(err))
	}

	// plugin.yaml carries the button count for `ofsd status`. Guarded so a
	// late refresh cannot rewrite the file after it is removed.
	var infoMu sync.Mutex
	infoRemoved := false
	mgr.SetOnChange(func() {
		n := len(mgr.Actions())
		infoMu.Lock()
		defer infoMu.Unlock()
		if infoRemoved || n == info.Actions {
			return
		}
		info.Actions = n
		if err := config.SavePluginInfo(info); err != nil {
			logger.Debug("failed to update plugin info", zap.Error(err))
		}
	})
	defer func() {
		infoMu.Lock()
		defer infoMu.Unlock()
		infoRemoved = true
		if err := config.RemovePluginInfo(); err != nil {
			logger.Warn("failed to remove plugin info", zap.Error(err))
		}
	}()

	w, err := watcher.New(logger.Named("watcher"))
	if err != nil {
		logger.Warn("settings hot reload disabled", zap.Error(err))
	} else if err := w.Start(); err != nil {
		logger.Warn("settings hot reload disabled", zap.Error(err))
	} else {
		defer w.Stop()
		go watchSettings(ctx, w, osa, mgr, logger)
	}

	return client.Run(ctx, mgr.HandleEvent)
}

type deckLogger interface {
	Log(ctx context.Context, msg string) error
}

// warnIfOldDeck logs, here and in the deck's own log, when the deck app is
// older than the plugin supports. It reports whether it warned.
func warnIfOldDeck(ctx context.Context, info streamdeck.Info, deck deckLogger, logger *zap.Logger) bool {
	err := streamdeck.CheckAppVersion(info)
	if err == nil {
		return false
	}
	logger.Warn("unsupported deck version", zap.Error(err))
	if logErr := deck.Log(ctx, "ofsd: "+err.Error()); logErr != nil {
		logger.Debug("failed to mirror log to deck", zap.Error(logErr))
	}
	return true
}

// watchSettings reloads global settings when settings.yaml changes.
func watchSettings(ctx context.Context, w *watcher.Watcher, osa *automation.OSAScript, mgr *plugin.Manager, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.Events():
			if ev.Type != watcher.EventSettingsChanged && ev.Type != watcher.EventSettingsRemoved {
				continue
			}
			settings, err := config.LoadSettings()
			if err != nil {
				logger.Warn("ignoring invalid settings", zap.String("path", ev.Path), zap.Error(err))
				continue
			}
			osa.SetAppName(settings.Automation.AppName)
			mgr.ReloadSettings(settings)
		}
	}
}
