// Package tray implements the menu-bar count monitor behind `ofsd tray`.
package tray

import (
	"time"

	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/monitor"
)

// Options configures the tray.
type Options struct {
	Source   monitor.Source
	Deriver  *badge.Deriver
	Primary  models.BadgeSource // shown next to the icon
	Interval time.Duration
	Logger   *zap.Logger
}
