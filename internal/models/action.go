// Package models contains shared data structures used across the application.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BadgeSource selects which task count drives a button's badge.
// The values double as the setting values written by the property inspector.
type BadgeSource string

const (
	BadgeSourceOverdue BadgeSource = "overdueCount"
	BadgeSourceToday   BadgeSource = "todayCount"
	BadgeSourceFlagged BadgeSource = "flaggedCount"
)

// BadgeSources lists every source in display order.
var BadgeSources = []BadgeSource{BadgeSourceOverdue, BadgeSourceToday, BadgeSourceFlagged}

// Valid reports whether s is one of the known sources.
func (s BadgeSource) Valid() bool {
	switch s {
	case BadgeSourceOverdue, BadgeSourceToday, BadgeSourceFlagged:
		return true
	}
	return false
}

// Label returns the short human name ("overdue", "today", "flagged").
func (s BadgeSource) Label() string {
	return strings.TrimSuffix(string(s), "Count")
}

// ParseBadgeSource accepts either the setting value ("todayCount") or the
// short label ("today").
func ParseBadgeSource(s string) (BadgeSource, error) {
	s = strings.TrimSpace(s)
	for _, src := range BadgeSources {
		if s == string(src) || strings.EqualFold(s, src.Label()) {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown badge source %q (want overdue, today or flagged)", s)
}

// FlexInt decodes a JSON number or numeric string. Property inspectors store
// text-field values as strings, so both forms show up in practice.
// Anything unparseable decodes to zero.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := strconv.Atoi(n.String()); err == nil {
			*f = FlexInt(i)
			return nil
		}
		if fl, err := n.Float64(); err == nil {
			*f = FlexInt(int(fl))
			return nil
		}
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = FlexInt(i)
			return nil
		}
	}

	*f = 0
	return nil
}

// ActionSettings holds the settings of one configured button (action context).
// The deck owns this data; the plugin only reads it.
type ActionSettings struct {
	Perspective       string      `json:"perspective,omitempty"`
	CustomPerspective string      `json:"customPerspective,omitempty"`
	RefreshInterval   FlexInt     `json:"refreshInterval,omitempty"`
	BadgeCount        BadgeSource `json:"badgeCount,omitempty"`
}

// ParseActionSettings decodes the raw settings object sent with deck events.
// A missing or empty object yields zero settings.
func ParseActionSettings(raw json.RawMessage) (ActionSettings, error) {
	var s ActionSettings
	if len(raw) == 0 || string(raw) == "null" {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return ActionSettings{}, fmt.Errorf("failed to decode action settings: %w", err)
	}
	return s, nil
}

// Source returns the configured badge source, defaulting to overdue.
func (a ActionSettings) Source() BadgeSource {
	if a.BadgeCount.Valid() {
		return a.BadgeCount
	}
	return BadgeSourceOverdue
}

// TargetPerspective returns the perspective a key press should open.
// A custom perspective name overrides the selected one.
func (a ActionSettings) TargetPerspective() string {
	if custom := strings.TrimSpace(a.CustomPerspective); custom != "" {
		return custom
	}
	return strings.TrimSpace(a.Perspective)
}

// Interval returns the refresh interval, falling back to def seconds when unset
// and never going below min seconds.
func (a ActionSettings) Interval(def, min int) time.Duration {
	secs := int(a.RefreshInterval)
	if secs <= 0 {
		secs = def
	}
	if secs < min {
		secs = min
	}
	return time.Duration(secs) * time.Second
}
