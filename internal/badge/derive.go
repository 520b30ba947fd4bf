// Package badge maps task counts to the three-level badge state.
package badge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/ofsd-io/ofsd/internal/models"
)

// DefaultShortThreshold is used when no valid threshold is configured.
const DefaultShortThreshold = 5

// Thresholds configures the count-to-state mapping.
type Thresholds struct {
	Short int
}

// NewThresholds builds thresholds from global settings.
func NewThresholds(settings *models.Settings) Thresholds {
	if settings == nil {
		return Thresholds{Short: DefaultShortThreshold}
	}
	return Thresholds{Short: settings.Badge.ShortThreshold}
}

// Deriver turns counts into badge states. Safe for concurrent use.
type Deriver struct {
	mu         sync.RWMutex
	thresholds Thresholds
}

// NewDeriver creates a deriver. A threshold below 1 is replaced by the default.
func NewDeriver(t Thresholds) *Deriver {
	return &Deriver{thresholds: normalize(t)}
}

func normalize(t Thresholds) Thresholds {
	if t.Short < 1 {
		t.Short = DefaultShortThreshold
	}
	return t
}

// Thresholds returns the active thresholds.
func (d *Deriver) Thresholds() Thresholds {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.thresholds
}

// SetThresholds swaps the thresholds after a settings reload.
func (d *Deriver) SetThresholds(t Thresholds) {
	d.mu.Lock()
	d.thresholds = normalize(t)
	d.mu.Unlock()
}

// Derive maps a count to a state. The source only decides which count the
// caller passed in; the mapping is identical for every source.
func (d *Deriver) Derive(count int, _ models.BadgeSource) models.DueTasksState {
	short := d.Thresholds().Short
	switch {
	case count <= 0:
		return models.DueTasksStateNone
	case count < short:
		return models.DueTasksStateShort
	default:
		return models.DueTasksStateLong
	}
}

// Clamp forces a count into the valid range.
func Clamp(count int) int {
	if count < 0 {
		return 0
	}
	return count
}

// ParseCount parses script output as a count. Negative values clamp to 0.
// Fractions are truncated. Anything else is an error and a zero count.
func ParseCount(output string) (int, error) {
	s := strings.TrimSpace(output)
	if s == "" {
		return 0, fmt.Errorf("empty output")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Clamp(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return Clamp(int(f)), nil
}

// Title is the text shown on the button: the count, or nothing when zero.
func Title(count int) string {
	if count <= 0 {
		return ""
	}
	return strconv.Itoa(count)
}
