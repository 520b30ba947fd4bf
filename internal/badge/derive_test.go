package badge

import (
	"testing"

	"github.com/ofsd-io/ofsd/internal/models"
)

func TestDerive(t *testing.T) {
	d := NewDeriver(Thresholds{Short: 5})

	tests := []struct {
		name     string
		count    int
		expected models.DueTasksState
	}{
		{"zero", 0, models.DueTasksStateNone},
		{"negative", -4, models.DueTasksStateNone},
		{"one", 1, models.DueTasksStateShort},
		{"three", 3, models.DueTasksStateShort},
		{"just below threshold", 4, models.DueTasksStateShort},
		{"at threshold", 5, models.DueTasksStateLong},
		{"twelve", 12, models.DueTasksStateLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Derive(tt.count, models.BadgeSourceOverdue); got != tt.expected {
				t.Errorf("Derive(%d) = %v, want %v", tt.count, got, tt.expected)
			}
		})
	}
}

func TestDeriveIndependentOfSource(t *testing.T) {
	d := NewDeriver(Thresholds{Short: 3})
	for count := -2; count <= 10; count++ {
		want := d.Derive(count, models.BadgeSourceOverdue)
		for _, src := range models.BadgeSources {
			if got := d.Derive(count, src); got != want {
				t.Errorf("Derive(%d, %s) = %v, want %v", count, src, got, want)
			}
		}
	}
}

func TestThresholdOfOne(t *testing.T) {
	d := NewDeriver(Thresholds{Short: 1})
	if got := d.Derive(1, models.BadgeSourceToday); got != models.DueTasksStateLong {
		t.Errorf("Derive(1) = %v, want long when threshold is 1", got)
	}
}

func TestNewDeriverDefaults(t *testing.T) {
	if got := NewDeriver(Thresholds{}).Thresholds().Short; got != DefaultShortThreshold {
		t.Errorf("Short = %d, want %d", got, DefaultShortThreshold)
	}
	if got := NewThresholds(nil).Short; got != DefaultShortThreshold {
		t.Errorf("NewThresholds(nil).Short = %d", got)
	}
	s := models.NewSettings()
	s.Badge.ShortThreshold = 8
	if got := NewThresholds(s).Short; got != 8 {
		t.Errorf("NewThresholds().Short = %d, want 8", got)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"7", 7, false},
		{" 12\n", 12, false},
		{"-3", 0, false},
		{"4.0", 4, false},
		{"", 0, true},
		{"missing value", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	if Title(0) != "" || Title(-1) != "" || Title(42) != "42" {
		t.Error("unexpected titles")
	}
}

func TestSetThresholds(t *testing.T) {
	d := NewDeriver(Thresholds{Short: 5})
	if got := d.Derive(7, models.BadgeSourceToday); got != models.DueTasksStateLong {
		t.Fatalf("Derive(7) = %v, want long", got)
	}
	d.SetThresholds(Thresholds{Short: 10})
	if got := d.Derive(7, models.BadgeSourceToday); got != models.DueTasksStateShort {
		t.Errorf("after reload Derive(7) = %v, want short", got)
	}
	d.SetThresholds(Thresholds{Short: -1})
	if d.Thresholds().Short != DefaultShortThreshold {
		t.Errorf("Short = %d, want default", d.Thresholds().Short)
	}
}
