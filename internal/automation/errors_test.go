package automation

import (
	"context"
	"errors"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
		transient   bool
	}{
		{"unavailable", unavailable("overdueCount", errors.New("no osascript")), true, false},
		{"execution", execution("overdueCount", context.DeadlineExceeded), false, true},
		{"malformed", Malformed("overdueCount", errors.New("NaN")), false, true},
		{"plain", errors.New("other"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnavailable(tt.err); got != tt.unavailable {
				t.Errorf("IsUnavailable(%v) = %v, want %v", tt.err, got, tt.unavailable)
			}
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}

func TestScriptErrorUnwrapsCause(t *testing.T) {
	err := execution("todayCount", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable")
	}

	var se *ScriptError
	if !errors.As(err, &se) || se.Script != "todayCount" {
		t.Errorf("errors.As = %+v", se)
	}
	if got, want := err.Error(), "todayCount: script execution failed: context deadline exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
