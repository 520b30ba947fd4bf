// Package automation runs scripts against the task application through the
// OS scripting bridge. Calls are serialized: the bridge is not safe to drive
// concurrently against the same application.
package automation

import (
	"context"
)

// Script names. Count scripts share their names with the badge source setting values.
const (
	ScriptOverdueCount    = "overdueCount"
	ScriptTodayCount      = "todayCount"
	ScriptFlaggedCount    = "flaggedCount"
	ScriptPerspectiveList = "perspectiveList"
)

// Script is a prepared script handle.
type Script struct {
	Name     string
	Language string
	Source   string
}

// Bridge is the automation capability: prepare a script by name, then run it.
// Execute returns the raw script output; parsing belongs to the caller.
type Bridge interface {
	SetupScript(name string) (*Script, error)
	Execute(ctx context.Context, script *Script, args ...string) (string, error)
}
