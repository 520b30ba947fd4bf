// Package monitor collects every badge count at once for the desktop
// monitors (`ofsd watch` and `ofsd tray`).
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/config"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
)

// Source supplies counts. *query.TaskQuery implements it.
type Source interface {
	Count(ctx context.Context, source models.BadgeSource) query.Result
}

// Snapshot is one refresh of every badge source.
type Snapshot struct {
	Results       []query.Result
	PluginRunning bool
	PluginPID     int
	Updated       time.Time
}

// Count returns the result for a source.
func (s Snapshot) Count(source models.BadgeSource) (query.Result, bool) {
	for _, r := range s.Results {
		if r.Source == source {
			return r, true
		}
	}
	return query.Result{}, false
}

// Collect queries every source in display order and checks whether the deck
// plugin is running. The bridge serializes the calls, so this can take up to
// one script timeout per source.
func Collect(ctx context.Context, src Source) Snapshot {
	snap := Snapshot{}
	for _, s := range models.BadgeSources {
		snap.Results = append(snap.Results, src.Count(ctx, s))
	}
	running, info, err := config.IsPluginRunning()
	if err == nil && running && info != nil {
		snap.PluginRunning = true
		snap.PluginPID = info.PID
	}
	snap.Updated = time.Now()
	return snap
}

// Title is the short text for a menu bar: the primary count, or nothing when
// it is zero or failed.
func Title(snap Snapshot, primary models.BadgeSource) string {
	r, ok := snap.Count(primary)
	if !ok || r.Err != nil {
		return ""
	}
	return badge.Title(r.Count)
}

// Tooltip summarizes every count on one line.
func Tooltip(snap Snapshot) string {
	parts := make([]string, 0, len(snap.Results))
	for _, r := range snap.Results {
		if r.Err != nil {
			parts = append(parts, r.Source.Label()+" ?")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", r.Source.Label(), r.Count))
	}
	return "ofsd: " + strings.Join(parts, ", ")
}

// CountLine renders one source as "Overdue: 3". A nil result renders as a
// placeholder.
func CountLine(s models.BadgeSource, r *query.Result) string {
	label := strings.ToUpper(s.Label()[:1]) + s.Label()[1:]
	switch {
	case r == nil:
		return label + ": -"
	case r.Err != nil:
		return label + ": unavailable"
	default:
		return fmt.Sprintf("%s: %d", label, r.Count)
	}
}
