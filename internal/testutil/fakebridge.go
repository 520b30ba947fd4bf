// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ofsd-io/ofsd/internal/automation"
)

// Response is one scripted reply of the fake bridge.
type Response struct {
	Output string
	Err    error
	Delay  time.Duration // waits this long (or until ctx ends) before replying
}

// FakeBridge is an in-memory automation.Bridge. Replies are queued per script
// name; once a queue is drained the last reply repeats.
type FakeBridge struct {
	mu        sync.Mutex
	replies   map[string][]Response
	last      map[string]Response
	calls     map[string]int
	setupErrs map[string]error

	// Gate, when set, blocks every Execute until it is closed or ctx ends.
	Gate chan struct{}
}

// NewFakeBridge creates an empty fake bridge.
func NewFakeBridge() *FakeBridge {
	return &FakeBridge{
		replies:   make(map[string][]Response),
		last:      make(map[string]Response),
		calls:     make(map[string]int),
		setupErrs: make(map[string]error),
	}
}

// Queue appends replies for a script.
func (f *FakeBridge) Queue(script string, replies ...Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[script] = append(f.replies[script], replies...)
}

// Set replaces all replies for a script with a single repeating one.
func (f *FakeBridge) Set(script string, r Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[script] = nil
	f.last[script] = r
}

// FailSetup makes SetupScript fail for a script.
func (f *FakeBridge) FailSetup(script string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setupErrs[script] = err
}

// Calls returns how many times a script was executed.
func (f *FakeBridge) Calls(script string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[script]
}

// SetupScript implements automation.Bridge.
func (f *FakeBridge) SetupScript(name string) (*automation.Script, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.setupErrs[name]; err != nil {
		return nil, &automation.ScriptError{Script: name, Kind: automation.ErrScriptUnavailable, Err: err}
	}
	return &automation.Script{Name: name, Language: "JavaScript"}, nil
}

// Execute implements automation.Bridge.
func (f *FakeBridge) Execute(ctx context.Context, script *automation.Script, args ...string) (string, error) {
	if script == nil {
		return "", errors.New("nil script")
	}

	f.mu.Lock()
	f.calls[script.Name]++
	r, ok := f.last[script.Name]
	if q := f.replies[script.Name]; len(q) > 0 {
		r, ok = q[0], true
		f.replies[script.Name] = q[1:]
		f.last[script.Name] = r
	}
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", &automation.ScriptError{Script: script.Name, Kind: automation.ErrScriptExecution, Err: ctx.Err()}
		}
	}

	if r.Delay > 0 {
		t := time.NewTimer(r.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return "", &automation.ScriptError{Script: script.Name, Kind: automation.ErrScriptExecution, Err: ctx.Err()}
		}
	}

	if !ok {
		return "", &automation.ScriptError{Script: script.Name, Kind: automation.ErrScriptExecution, Err: errors.New("no reply scripted")}
	}
	return r.Output, r.Err
}
