package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueStopped is returned for calls made after Stop.
var ErrQueueStopped = errors.New("automation queue stopped")

type jobResult struct {
	out string
	err error
}

type job struct {
	id     string
	name   string
	ctx    context.Context
	fn     func(ctx context.Context) (string, error)
	result chan jobResult
}

// Queue runs automation calls one at a time on a single worker goroutine.
// Each call is bounded by the queue timeout; waiting callers give up when
// their own context ends.
type Queue struct {
	jobs   chan *job
	done   chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger

	mu      sync.RWMutex
	timeout time.Duration

	stopOnce sync.Once
}

// NewQueue creates and starts a queue.
func NewQueue(timeout time.Duration, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{
		jobs:    make(chan *job),
		done:    make(chan struct{}),
		logger:  logger,
		timeout: timeout,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// SetTimeout changes the per-call timeout for calls started afterwards.
func (q *Queue) SetTimeout(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.timeout = d
}

// Timeout returns the current per-call timeout.
func (q *Queue) Timeout() time.Duration {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.timeout
}

// Stop stops the worker after the current call finishes.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}

// Do enqueues fn and waits for its result.
func (q *Queue) Do(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) (string, error) {
	j := &job{
		id:     uuid.NewString(),
		name:   name,
		ctx:    ctx,
		fn:     fn,
		result: make(chan jobResult, 1),
	}

	select {
	case q.jobs <- j:
	case <-ctx.Done():
		return "", execution(name, fmt.Errorf("waiting for queue: %w", ctx.Err()))
	case <-q.done:
		return "", execution(name, ErrQueueStopped)
	}

	select {
	case r := <-j.result:
		return r.out, r.err
	case <-ctx.Done():
		return "", execution(name, ctx.Err())
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case j := <-q.jobs:
			q.exec(j)
		}
	}
}

func (q *Queue) exec(j *job) {
	if err := j.ctx.Err(); err != nil {
		j.result <- jobResult{err: execution(j.name, err)}
		return
	}

	timeout := q.Timeout()
	ctx, cancel := context.WithTimeout(j.ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := j.fn(ctx)
	if ctx.Err() != nil && !errors.Is(err, ErrScriptExecution) {
		err = execution(j.name, ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		q.logger.Warn("automation call timed out",
			zap.String("job", j.id),
			zap.String("script", j.name),
			zap.Duration("timeout", timeout),
		)
	} else {
		q.logger.Debug("automation call done",
			zap.String("job", j.id),
			zap.String("script", j.name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
	j.result <- jobResult{out: out, err: err}
}

// Serialized wraps a bridge so every Execute goes through the queue.
// SetupScript is not an automation call and runs directly.
func Serialized(b Bridge, q *Queue) Bridge {
	return &serializedBridge{bridge: b, queue: q}
}

type serializedBridge struct {
	bridge Bridge
	queue  *Queue
}

func (s *serializedBridge) SetupScript(name string) (*Script, error) {
	return s.bridge.SetupScript(name)
}

func (s *serializedBridge) Execute(ctx context.Context, script *Script, args ...string) (string, error) {
	name := "<nil>"
	if script != nil {
		name = script.Name
	}
	return s.queue.Do(ctx, name, func(ctx context.Context) (string, error) {
		return s.bridge.Execute(ctx, script, args...)
	})
}
