package forwarder

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/badge"
	"github.com/ofsd-io/ofsd/internal/models"
	"github.com/ofsd-io/ofsd/internal/query"
	"github.com/ofsd-io/ofsd/internal/streamdeck"
	"github.com/ofsd-io/ofsd/internal/testutil"
)

const (
	testAction  = "io.ofsd.badges.due"
	testContext = "ctx-1"
)

func newTestForwarder(fb *testutil.FakeBridge) (*Forwarder, *testutil.FakeSender) {
	sender := testutil.NewFakeSender()
	f := New(sender, query.New(fb, nil), badge.NewDeriver(badge.Thresholds{Short: 5}), nil)
	return f, sender
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func badgeOf(t *testing.T, sent []streamdeck.Outbound) (int, string) {
	t.Helper()
	if len(sent) != 2 {
		t.Fatalf("sent %d events, want setState + setTitle: %+v", len(sent), sent)
	}
	state, ok := sent[0].Payload.(streamdeck.StatePayload)
	if !ok || sent[0].Event != streamdeck.EventSetState {
		t.Fatalf("first event = %+v, want setState", sent[0])
	}
	title, ok := sent[1].Payload.(streamdeck.TitlePayload)
	if !ok || sent[1].Event != streamdeck.EventSetTitle {
		t.Fatalf("second event = %+v, want setTitle", sent[1])
	}
	return state.State, title.Title
}

func perspectivesOf(t *testing.T, msg streamdeck.Outbound) []string {
	t.Helper()
	if msg.Event != streamdeck.EventSendToPropertyInspector {
		t.Fatalf("event = %q, want sendToPropertyInspector", msg.Event)
	}
	p, ok := msg.Payload.(models.Payload)
	if !ok {
		t.Fatalf("payload is %T, want models.Payload", msg.Payload)
	}
	if p.EventType != models.EventGetPerspectives {
		t.Errorf("eventType = %q", p.EventType)
	}
	if p.Perspectives == nil {
		t.Error("perspectives is nil, want a list")
	}
	return p.Perspectives
}

func TestRefreshBadge(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		wantState models.DueTasksState
		wantTitle string
	}{
		{"none", "0", models.DueTasksStateNone, ""},
		{"short", "3", models.DueTasksStateShort, "3"},
		{"long", "12", models.DueTasksStateLong, "12"},
		{"malformed clamps to none", "missing value", models.DueTasksStateNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBridge()
			fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: tt.output})
			f, sender := newTestForwarder(fb)
			f.Track(testContext)

			_, outcome, err := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
			if err != nil {
				t.Fatalf("RefreshBadge() error = %v", err)
			}
			if outcome != Delivered {
				t.Fatalf("outcome = %v, want delivered", outcome)
			}
			state, title := badgeOf(t, sender.For(testContext))
			if models.DueTasksState(state) != tt.wantState {
				t.Errorf("state = %d, want %v", state, tt.wantState)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if f.Phase(testContext) != PhaseIdle {
				t.Error("context not back to idle")
			}
		})
	}
}

func TestRefreshBadgeUntracked(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: "4"})
	f, sender := newTestForwarder(fb)

	_, outcome, _ := f.RefreshBadge(context.Background(), "nobody", models.BadgeSourceOverdue)
	if outcome != Untracked {
		t.Errorf("outcome = %v, want untracked", outcome)
	}
	if len(sender.Sent()) != 0 || fb.Calls(automation.ScriptOverdueCount) != 0 {
		t.Error("untracked context was queried or updated")
	}
}

func TestTimeoutGivesNoneAndEmptyList(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: "9", Delay: time.Second})
	fb.Set(automation.ScriptPerspectiveList, testutil.Response{Output: `["Inbox"]`, Delay: time.Second})

	q := automation.NewQueue(20*time.Millisecond, nil)
	defer q.Stop()

	sender := testutil.NewFakeSender()
	f := New(sender, query.New(automation.Serialized(fb, q), nil), badge.NewDeriver(badge.Thresholds{Short: 5}), nil)
	f.Track(testContext)

	res, outcome, err := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
	if err != nil || outcome != Delivered {
		t.Fatalf("RefreshBadge() = %v, %v", outcome, err)
	}
	if !automation.IsTransient(res.Err) {
		t.Errorf("Err = %v, want a transient execution error", res.Err)
	}
	state, title := badgeOf(t, sender.For(testContext))
	if models.DueTasksState(state) != models.DueTasksStateNone || title != "" {
		t.Errorf("badge = %d %q, want none", state, title)
	}

	sender.Reset()
	if _, err := f.SendPerspectiveList(context.Background(), testAction, testContext); err != nil {
		t.Fatalf("SendPerspectiveList() error = %v", err)
	}
	sent := sender.For(testContext)
	if len(sent) != 1 {
		t.Fatalf("sent %d payloads, want exactly 1", len(sent))
	}
	if got := perspectivesOf(t, sent[0]); len(got) != 0 {
		t.Errorf("perspectives = %v, want empty", got)
	}
}

func TestContextRemovedMidQuery(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: "7"})
	fb.Gate = make(chan struct{})
	f, sender := newTestForwarder(fb)
	f.Track(testContext)

	done := make(chan Outcome, 1)
	go func() {
		_, outcome, _ := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
		done <- outcome
	}()

	waitFor(t, "query in flight", func() bool { return fb.Calls(automation.ScriptOverdueCount) == 1 })
	f.Untrack(testContext)
	close(fb.Gate)

	if got := <-done; got != Discarded {
		t.Errorf("outcome = %v, want discarded", got)
	}
	if sent := sender.For(testContext); len(sent) != 0 {
		t.Errorf("sent %+v to removed context", sent)
	}
}

func TestReappearedContextDropsOldResult(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: "7"})
	fb.Gate = make(chan struct{})
	f, sender := newTestForwarder(fb)
	f.Track(testContext)

	done := make(chan Outcome, 1)
	go func() {
		_, outcome, _ := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
		done <- outcome
	}()

	waitFor(t, "query in flight", func() bool { return fb.Calls(automation.ScriptOverdueCount) == 1 })
	f.Track(testContext)
	if f.Phase(testContext) != PhaseIdle {
		t.Error("re-tracked context should start idle")
	}
	close(fb.Gate)

	if got := <-done; got != Discarded {
		t.Errorf("outcome = %v, want discarded", got)
	}
	if len(sender.Sent()) != 0 {
		t.Error("stale result delivered")
	}
}

func TestRefreshCoalesced(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: "2"})
	fb.Gate = make(chan struct{})
	f, sender := newTestForwarder(fb)
	f.Track(testContext)

	done := make(chan Outcome, 1)
	go func() {
		_, outcome, _ := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
		done <- outcome
	}()
	waitFor(t, "querying phase", func() bool { return f.Phase(testContext) == PhaseQuerying })

	_, outcome, _ := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
	if outcome != Coalesced {
		t.Errorf("second refresh = %v, want coalesced", outcome)
	}

	close(fb.Gate)
	if got := <-done; got != Delivered {
		t.Errorf("first refresh = %v, want delivered", got)
	}
	if n := fb.Calls(automation.ScriptOverdueCount); n != 1 {
		t.Errorf("script ran %d times, want 1", n)
	}
	state, _ := badgeOf(t, sender.For(testContext))
	if models.DueTasksState(state) != models.DueTasksStateShort {
		t.Errorf("state = %d, want short", state)
	}
}

func TestSendPerspectiveListIdempotent(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptPerspectiveList, testutil.Response{Output: `["Inbox","Forecast","Flagged"]`})
	f, sender := newTestForwarder(fb)

	for i := 0; i < 2; i++ {
		if _, err := f.SendPerspectiveList(context.Background(), testAction, testContext); err != nil {
			t.Fatalf("SendPerspectiveList() error = %v", err)
		}
	}

	sent := sender.For(testContext)
	if len(sent) != 2 {
		t.Fatalf("sent %d payloads, want 2", len(sent))
	}
	first, second := perspectivesOf(t, sent[0]), perspectivesOf(t, sent[1])
	if !reflect.DeepEqual(first, second) {
		t.Errorf("payloads differ: %v vs %v", first, second)
	}
	if want := []string{"Inbox", "Forecast", "Flagged"}; !reflect.DeepEqual(first, want) {
		t.Errorf("perspectives = %v, want %v", first, want)
	}
	if sent[0].Action != testAction {
		t.Errorf("action = %q", sent[0].Action)
	}
}

func TestSendPerspectiveListRemovedMidFetch(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptPerspectiveList, testutil.Response{Output: `["Inbox"]`})
	fb.Gate = make(chan struct{})
	f, sender := newTestForwarder(fb)
	f.Track(testContext)

	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := f.SendPerspectiveList(context.Background(), testAction, testContext)
		done <- outcome
	}()

	waitFor(t, "fetch in flight", func() bool { return fb.Calls(automation.ScriptPerspectiveList) == 1 })
	f.Untrack(testContext)
	close(fb.Gate)

	if got := <-done; got != Discarded {
		t.Errorf("outcome = %v, want discarded", got)
	}
	if len(sender.Sent()) != 0 {
		t.Error("payload sent after removal")
	}
}

func TestResetBadgeAndAlert(t *testing.T) {
	f, sender := newTestForwarder(testutil.NewFakeBridge())
	f.Track(testContext)

	if err := f.ResetBadge(context.Background(), testContext); err != nil {
		t.Fatal(err)
	}
	state, title := badgeOf(t, sender.For(testContext))
	if state != 0 || title != "" {
		t.Errorf("reset badge = %d %q", state, title)
	}

	if err := f.Alert(context.Background(), testContext); err != nil {
		t.Fatal(err)
	}
	if len(sender.For(testContext, streamdeck.EventShowAlert)) != 1 {
		t.Error("alert not sent")
	}
}

func TestRemovedDuringDelivery(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptOverdueCount, testutil.Response{Output: "9"})
	f, sender := newTestForwarder(fb)
	f.Track(testContext)

	sender.OnSend = func(msg streamdeck.Outbound) {
		if msg.Event == streamdeck.EventSetState {
			f.Untrack(testContext)
		}
	}

	_, outcome, err := f.RefreshBadge(context.Background(), testContext, models.BadgeSourceOverdue)
	if err != nil {
		t.Fatalf("RefreshBadge() error = %v", err)
	}
	if outcome != Discarded {
		t.Errorf("outcome = %v, want discarded", outcome)
	}
	if got := sender.For(testContext, streamdeck.EventSetTitle); len(got) != 0 {
		t.Errorf("setTitle sent after removal: %+v", got)
	}
	if got := len(sender.Sent()); got != 1 {
		t.Errorf("sent %d events, want only the setState in progress", got)
	}
}

func TestRemovedContextGetsNothing(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptPerspectiveList, testutil.Response{Output: `["Inbox"]`})
	f, sender := newTestForwarder(fb)
	f.Track(testContext)
	f.Untrack(testContext)

	outcome, err := f.SendPerspectiveList(context.Background(), testAction, testContext)
	if err != nil {
		t.Fatalf("SendPerspectiveList() error = %v", err)
	}
	if outcome != Discarded {
		t.Errorf("perspective list outcome = %v, want discarded", outcome)
	}
	if n := fb.Calls(automation.ScriptPerspectiveList); n != 0 {
		t.Errorf("perspective script ran %d times for a removed context", n)
	}

	if err := f.ResetBadge(context.Background(), testContext); err != nil {
		t.Fatal(err)
	}
	if err := f.Alert(context.Background(), testContext); err != nil {
		t.Fatal(err)
	}
	if got := sender.Sent(); len(got) != 0 {
		t.Errorf("sent %+v to a removed context", got)
	}

	// Showing the button again makes it reachable.
	f.Track(testContext)
	if outcome, _ := f.SendPerspectiveList(context.Background(), testAction, testContext); outcome != Delivered {
		t.Errorf("outcome after re-track = %v, want delivered", outcome)
	}
}

func TestSendPerspectiveListNeverTracked(t *testing.T) {
	fb := testutil.NewFakeBridge()
	fb.Set(automation.ScriptPerspectiveList, testutil.Response{Output: `["Inbox"]`})
	f, sender := newTestForwarder(fb)

	outcome, err := f.SendPerspectiveList(context.Background(), testAction, "ctx-new")
	if err != nil {
		t.Fatalf("SendPerspectiveList() error = %v", err)
	}
	if outcome != Delivered {
		t.Errorf("outcome = %v, want delivered", outcome)
	}
	if got := sender.For("ctx-new"); len(got) != 1 {
		t.Fatalf("sent %d payloads, want 1", len(got))
	}
}

func TestRemovedSetIsBounded(t *testing.T) {
	f, _ := newTestForwarder(testutil.NewFakeBridge())
	for i := 0; i < removedLimit+10; i++ {
		id := fmt.Sprintf("ctx-%d", i)
		f.Track(id)
		f.Untrack(id)
	}
	if n := len(f.removed); n != removedLimit {
		t.Errorf("remembered %d removed contexts, want %d", n, removedLimit)
	}
	if f.wasRemoved("ctx-0") {
		t.Error("oldest removal should have been forgotten")
	}
	if !f.wasRemoved(fmt.Sprintf("ctx-%d", removedLimit+9)) {
		t.Error("latest removal forgotten")
	}
}
