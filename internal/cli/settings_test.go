package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
)

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(s *models.Settings) bool
		wantErr bool
		invalid bool
	}{
		{
			name:  "threshold",
			key:   "badge.short_threshold",
			value: "10",
			check: func(s *models.Settings) bool { return s.Badge.ShortThreshold == 10 },
		},
		{
			name:    "threshold not a number",
			key:     "badge.short_threshold",
			value:   "ten",
			wantErr: true,
		},
		{
			name:    "threshold zero fails validation",
			key:     "badge.short_threshold",
			value:   "0",
			check:   func(s *models.Settings) bool { return s.Badge.ShortThreshold == 0 },
			invalid: true,
		},
		{
			name:  "app name",
			key:   "automation.app_name",
			value: "OmniFocus 4",
			check: func(s *models.Settings) bool { return s.Automation.AppName == "OmniFocus 4" },
		},
		{
			name:  "script timeout",
			key:   "automation.script_timeout",
			value: "750ms",
			check: func(s *models.Settings) bool { return s.Automation.ScriptTimeout == 750*time.Millisecond },
		},
		{
			name:    "script timeout bad duration",
			key:     "automation.script_timeout",
			value:   "5",
			wantErr: true,
		},
		{
			name:  "default interval",
			key:   "polling.default_refresh_interval",
			value: "30",
			check: func(s *models.Settings) bool { return s.Polling.DefaultRefreshInterval == 30 },
		},
		{
			name:    "default interval below minimum",
			key:     "polling.default_refresh_interval",
			value:   "2",
			check:   func(s *models.Settings) bool { return s.Polling.DefaultRefreshInterval == 2 },
			invalid: true,
		},
		{
			name:  "log level is lowercased",
			key:   "logging.level",
			value: "DEBUG",
			check: func(s *models.Settings) bool { return s.Logging.Level == "debug" },
		},
		{
			name:    "unknown key",
			key:     "badge.long_threshold",
			value:   "9",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.NewSettings()
			err := applySetting(s, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applySetting() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !tt.check(s) {
				t.Errorf("applySetting(%q, %q) did not update settings: %+v", tt.key, tt.value, s)
			}
			if verr := s.Validate(); (verr != nil) != tt.invalid {
				t.Errorf("Validate() error = %v, want invalid %v", verr, tt.invalid)
			}
		})
	}
}

func TestWriteCountsPlain(t *testing.T) {
	results := []query.Result{
		{Source: models.BadgeSourceOverdue, Count: 0},
		{Source: models.BadgeSourceToday, Count: 3},
		{Source: models.BadgeSourceFlagged, Count: 12, Err: errors.New("boom")},
	}
	var buf bytes.Buffer
	writeCounts(&buf, results, badge.NewDeriver(badge.Thresholds{Short: 5}), false)

	want := strings.Join([]string{
		"overdue\t0\tnone",
		"today\t3\tshort",
		"flagged\t12\tlong",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("writeCounts() =\n%q\nwant\n%q", buf.String(), want)
	}
}
