// Package query fetches task counts and perspective names from the task
// application. Failures stop here: counts fall back to zero and perspective
// lists to empty, with the classified error reported alongside.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
)

// Result is the outcome of a count query. Count is always usable (>= 0);
// Err is set when the count is a fallback.
type Result struct {
	Source models.BadgeSource
	Count  int
	Err    error
}

// OK reports whether the count came from the application.
func (r Result) OK() bool {
	return r.Err == nil
}

// TaskQuery runs the count and perspective scripts.
type TaskQuery struct {
	bridge automation.Bridge
	logger *zap.Logger

	mu      sync.Mutex
	scripts map[string]*automation.Script
}

// New creates a TaskQuery over the given bridge.
func New(bridge automation.Bridge, logger *zap.Logger) *TaskQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskQuery{
		bridge:  bridge,
		logger:  logger,
		scripts: make(map[string]*automation.Script),
	}
}

// RunSetupScript prepares the named script. Successful handles are reused;
// failures are not cached so a later call can retry.
func (q *TaskQuery) RunSetupScript(name string) (*automation.Script, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if s, ok := q.scripts[name]; ok {
		return s, nil
	}
	s, err := q.bridge.SetupScript(name)
	if err != nil {
		return nil, err
	}
	q.scripts[name] = s
	return s, nil
}

// FetchDueCount runs a count script and parses its output.
func (q *TaskQuery) FetchDueCount(ctx context.Context, script *automation.Script) (int, error) {
	out, err := q.bridge.Execute(ctx, script)
	if err != nil {
		return 0, err
	}
	n, err := badge.ParseCount(out)
	if err != nil {
		return 0, automation.Malformed(script.Name, err)
	}
	return n, nil
}

// FetchPerspectives runs the perspective script. The list may be empty.
func (q *TaskQuery) FetchPerspectives(ctx context.Context) ([]string, error) {
	script, err := q.RunSetupScript(automation.ScriptPerspectiveList)
	if err != nil {
		return nil, err
	}
	out, err := q.bridge.Execute(ctx, script)
	if err != nil {
		return nil, err
	}
	names, err := ParsePerspectives(out)
	if err != nil {
		return nil, automation.Malformed(script.Name, err)
	}
	return names, nil
}

// Count fetches the count for source. It never fails: on error the count is 0
// and Result.Err says why.
func (q *TaskQuery) Count(ctx context.Context, source models.BadgeSource) Result {
	if !source.Valid() {
		source = models.BadgeSourceOverdue
	}
	res := Result{Source: source}

	script, err := q.RunSetupScript(string(source))
	if err != nil {
		q.logger.Error("count script unavailable", zap.String("source", string(source)), zap.Error(err))
		res.Err = err
		return res
	}

	n, err := q.FetchDueCount(ctx, script)
	if err != nil {
		q.logger.Warn("count query failed", zap.String("source", string(source)), zap.Error(err))
		res.Err = err
		return res
	}
	res.Count = n
	return res
}

// Perspectives fetches the perspective names. The returned slice is never
// nil; on error it is empty and err says why.
func (q *TaskQuery) Perspectives(ctx context.Context) ([]string, error) {
	names, err := q.FetchPerspectives(ctx)
	if err != nil {
		q.logger.Warn("perspective query failed", zap.Error(err))
		return []string{}, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ParsePerspectives decodes the perspective script output, a JSON array of
// names. Blank names are dropped; order is preserved.
func ParsePerspectives(output string) ([]string, error) {
	s := strings.TrimSpace(output)
	if s == "" {
		return []string{}, nil
	}
	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("perspective list is not a JSON string array: %w", err)
	}
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}
