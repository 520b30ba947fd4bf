// Package forwarder pushes badge updates and perspective lists to the deck.
//
// Each tracked context runs a small state machine:
//
//	Idle -> Querying -> (Deliver | DeliverEmpty) -> Idle
//
// A refresh requested while the context is Querying is dropped. A context
// that is untracked while Querying never receives the result.
package forwarder

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
	"github.com/ofsd-io/ofsd/internal/streamdeck"
)

// Sender delivers events to the deck.
type Sender interface {
	Send(ctx context.Context, msg streamdeck.Outbound) error
}

// Source supplies counts and perspective names. *query.TaskQuery implements it.
type Source interface {
	Count(ctx context.Context, source models.BadgeSource) query.Result
	Perspectives(ctx context.Context) ([]string, error)
}

// Phase is where a context is in its refresh cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseQuerying
)

// Outcome says what happened to a refresh request.
type Outcome int

const (
	// Delivered means the badge (or list) was sent.
	Delivered Outcome = iota
	// Coalesced means a query was already in flight; nothing was done.
	Coalesced
	// Discarded means the context went away before the result arrived.
	Discarded
	// Untracked means the context is not known.
	Untracked
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Coalesced:
		return "coalesced"
	case Discarded:
		return "discarded"
	case Untracked:
		return "untracked"
	default:
		return "unknown"
	}
}

type entry struct {
	gen   uint64
	phase Phase
}

// removedLimit bounds how many removed contexts are remembered.
const removedLimit = 256

type removal struct {
	ctxID string
	gen   uint64
}

// Forwarder sends deck updates for tracked contexts.
type Forwarder struct {
	sender  Sender
	source  Source
	deriver *badge.Deriver
	logger  *zap.Logger

	mu       sync.Mutex
	nextGen  uint64
	contexts map[string]*entry
	// removed maps recently untracked contexts to their last generation.
	removed      map[string]uint64
	removedOrder []removal
}

// New creates a Forwarder.
func New(sender Sender, source Source, deriver *badge.Deriver, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{
		sender:   sender,
		source:   source,
		deriver:  deriver,
		logger:   logger,
		contexts: make(map[string]*entry),
		removed:  make(map[string]uint64),
	}
}

// Track starts tracking a context. Tracking an already tracked context
// resets it, which also invalidates any query in flight for it.
func (f *Forwarder) Track(ctxID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextGen++
	f.contexts[ctxID] = &entry{gen: f.nextGen}
	delete(f.removed, ctxID)
}

// Untrack forgets a context. Results still in flight for it are dropped,
// and nothing more is sent to it until it is tracked again.
func (f *Forwarder) Untrack(ctxID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.contexts[ctxID]
	if !ok {
		return
	}
	delete(f.contexts, ctxID)

	f.removed[ctxID] = e.gen
	f.removedOrder = append(f.removedOrder, removal{ctxID: ctxID, gen: e.gen})
	if len(f.removedOrder) > removedLimit {
		old := f.removedOrder[0]
		f.removedOrder = f.removedOrder[1:]
		if f.removed[old.ctxID] == old.gen {
			delete(f.removed, old.ctxID)
		}
	}
}

// Phase returns the context's phase. Untracked contexts are Idle.
func (f *Forwarder) Phase(ctxID string) Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.contexts[ctxID]; ok {
		return e.phase
	}
	return PhaseIdle
}

// begin moves a context to Querying. It fails if the context is untracked
// or already querying.
func (f *Forwarder) begin(ctxID string) (uint64, Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.contexts[ctxID]
	if !ok {
		return 0, Untracked
	}
	if e.phase == PhaseQuerying {
		return 0, Coalesced
	}
	e.phase = PhaseQuerying
	return e.gen, Delivered
}

// finish returns a context to Idle and reports whether gen is still the
// live generation.
func (f *Forwarder) finish(ctxID string, gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.contexts[ctxID]
	if !ok || e.gen != gen {
		return false
	}
	e.phase = PhaseIdle
	return true
}

// live reports whether gen is still the generation of a tracked context.
func (f *Forwarder) live(ctxID string, gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.contexts[ctxID]
	return ok && e.gen == gen
}

func (f *Forwarder) generation(ctxID string) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.contexts[ctxID]
	if !ok {
		return 0, false
	}
	return e.gen, true
}

func (f *Forwarder) wasRemoved(ctxID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contexts[ctxID]; ok {
		return false
	}
	_, ok := f.removed[ctxID]
	return ok
}

// sendLive sends msg only while gen is the context's live generation. It is
// checked before every message, so a context removed between two messages
// gets neither the rest of the batch nor anything later.
func (f *Forwarder) sendLive(ctx context.Context, ctxID string, gen uint64, msg streamdeck.Outbound) (bool, error) {
	if !f.live(ctxID, gen) {
		return false, nil
	}
	return true, f.sender.Send(ctx, msg)
}

// RefreshBadge queries the count for source and pushes the derived badge to
// the context. The query result is returned even when nothing was sent.
func (f *Forwarder) RefreshBadge(ctx context.Context, ctxID string, source models.BadgeSource) (query.Result, Outcome, error) {
	gen, outcome := f.begin(ctxID)
	if outcome != Delivered {
		f.logger.Debug("refresh skipped", zap.String("context", ctxID), zap.Stringer("outcome", outcome))
		return query.Result{Source: source}, outcome, nil
	}

	res := f.source.Count(ctx, source)

	if !f.finish(ctxID, gen) {
		f.logger.Debug("dropping result for removed context", zap.String("context", ctxID))
		return res, Discarded, nil
	}

	state := f.deriver.Derive(res.Count, res.Source)
	sent, err := f.sendBadge(ctx, ctxID, gen, state, res.Count)
	if err != nil {
		return res, Delivered, err
	}
	if !sent {
		f.logger.Debug("context removed during delivery", zap.String("context", ctxID))
		return res, Discarded, nil
	}
	return res, Delivered, nil
}

// sendBadge pushes a state and title to a context. It reports false when the
// context went away before both were sent.
func (f *Forwarder) sendBadge(ctx context.Context, ctxID string, gen uint64, state models.DueTasksState, count int) (bool, error) {
	ok, err := f.sendLive(ctx, ctxID, gen, streamdeck.SetState(ctxID, int(state)))
	if err != nil {
		return ok, fmt.Errorf("failed to set state for %s: %w", ctxID, err)
	}
	if !ok {
		return false, nil
	}
	ok, err = f.sendLive(ctx, ctxID, gen, streamdeck.SetTitle(ctxID, badge.Title(count)))
	if err != nil {
		return ok, fmt.Errorf("failed to set title for %s: %w", ctxID, err)
	}
	return ok, nil
}

// ResetBadge clears a context's badge without querying. Untracked contexts
// are left alone.
func (f *Forwarder) ResetBadge(ctx context.Context, ctxID string) error {
	gen, ok := f.generation(ctxID)
	if !ok {
		return nil
	}
	_, err := f.sendBadge(ctx, ctxID, gen, models.DueTasksStateNone, 0)
	return err
}

// SendPerspectiveList fetches the perspective names and sends them to the
// property inspector of a context. Exactly one payload is sent per call: a
// failed fetch sends an empty list.
//
// A context the deck has never shown (an inspector opened before
// willAppear) is answered. A context that was removed, before or during the
// fetch, is not.
func (f *Forwarder) SendPerspectiveList(ctx context.Context, action, ctxID string) (Outcome, error) {
	gen, tracked := f.generation(ctxID)
	if !tracked && f.wasRemoved(ctxID) {
		f.logger.Debug("ignoring perspective request for removed context", zap.String("context", ctxID))
		return Discarded, nil
	}

	names, err := f.source.Perspectives(ctx)
	if err != nil {
		f.logger.Warn("sending empty perspective list", zap.String("context", ctxID), zap.Error(err))
		names = nil
	}

	msg := streamdeck.SendToPropertyInspector(action, ctxID, models.NewPerspectivePayload(names))
	var sent bool
	if tracked {
		sent, err = f.sendLive(ctx, ctxID, gen, msg)
	} else if !f.wasRemoved(ctxID) {
		sent, err = true, f.sender.Send(ctx, msg)
	}
	if err != nil {
		return Delivered, fmt.Errorf("failed to send perspective list to %s: %w", ctxID, err)
	}
	if !sent {
		f.logger.Debug("dropping perspective list for removed context", zap.String("context", ctxID))
		return Discarded, nil
	}
	return Delivered, nil
}

// Alert flashes the alert icon on a tracked context.
func (f *Forwarder) Alert(ctx context.Context, ctxID string) error {
	gen, ok := f.generation(ctxID)
	if !ok {
		return nil
	}
	if _, err := f.sendLive(ctx, ctxID, gen, streamdeck.ShowAlert(ctxID)); err != nil {
		return fmt.Errorf("failed to show alert on %s: %w", ctxID, err)
	}
	return nil
}

// OpenURL asks the deck to open a URL.
func (f *Forwarder) OpenURL(ctx context.Context, url string) error {
	if err := f.sender.Send(ctx, streamdeck.OpenURL(url)); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Log writes a line to the deck's own log.
func (f *Forwarder) Log(ctx context.Context, msg string) error {
	return f.sender.Send(ctx, streamdeck.LogMessage(msg))
}
