package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultBinary is the macOS script runner.
const DefaultBinary = "osascript"

// OSAScript runs embedded scripts through osascript.
type OSAScript struct {
	mu      sync.RWMutex
	appName string
	binary  string
	logger  *zap.Logger
}

// NewOSAScript creates a bridge targeting appName (e.g. "OmniFocus").
func NewOSAScript(appName string, logger *zap.Logger) *OSAScript {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSAScript{
		appName: appName,
		binary:  DefaultBinary,
		logger:  logger,
	}
}

// SetBinary overrides the runner binary (used by tests).
func (o *OSAScript) SetBinary(binary string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.binary = binary
}

// SetAppName retargets later calls at another application.
func (o *OSAScript) SetAppName(appName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.appName = appName
}

// AppName returns the targeted application.
func (o *OSAScript) AppName() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.appName
}

func (o *OSAScript) target() (appName, binary string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.appName, o.binary
}

// SetupScript resolves an embedded script and checks that the runner exists.
func (o *OSAScript) SetupScript(name string) (*Script, error) {
	script, err := LookupScript(name)
	if err != nil {
		return nil, unavailable(name, err)
	}
	_, binary := o.target()
	if _, err := exec.LookPath(binary); err != nil {
		return nil, unavailable(name, fmt.Errorf("%s not found: %w", binary, err))
	}
	return script, nil
}

// Execute runs the script with the application name as its first argument.
// The context bounds the call; a cancelled or expired context kills the runner.
func (o *OSAScript) Execute(ctx context.Context, script *Script, args ...string) (string, error) {
	if script == nil {
		return "", unavailable("<nil>", errors.New("no script handle"))
	}

	appName, binary := o.target()
	cmdArgs := []string{"-l", script.Language, "-e", script.Source, appName}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, binary, cmdArgs...)
	cmd.Env = scriptEnv(os.Environ())
	cmd.WaitDelay = 500 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	o.logger.Debug("script finished",
		zap.String("script", script.Name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", execution(script.Name, ctxErr)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", execution(script.Name, err)
		}
		return "", execution(script.Name, fmt.Errorf("%w: %s", err, msg))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// scriptEnv forces a UTF-8 locale so perspective names survive the round trip.
func scriptEnv(env []string) []string {
	env = setEnv(env, "LANG", "en_US.UTF-8")
	return setEnv(env, "LC_ALL", "en_US.UTF-8")
}

// setEnv sets or replaces an environment variable in a slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
