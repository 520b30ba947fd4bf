package streamdeck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// fakeDeck accepts one plugin connection, records what it reads and
// writes the queued events.
type fakeDeck struct {
	registered chan Registration
	received   chan map[string]any
	send       []string
}

func (d *fakeDeck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	ctx := r.Context()

	var reg Registration
	if err := wsjson.Read(ctx, conn, &reg); err != nil {
		return
	}
	d.registered <- reg

	for _, raw := range d.send {
		if err := conn.Write(ctx, websocket.MessageText, []byte(raw)); err != nil {
			return
		}
	}

	for {
		var msg map[string]any
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		d.received <- msg
		if msg["event"] == "bye" {
			return
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientRoundTrip(t *testing.T) {
	deck := &fakeDeck{
		registered: make(chan Registration, 1),
		received:   make(chan map[string]any, 4),
		send: []string{
			`{"event":"willAppear","action":"io.ofsd.badges.due","context":"ctx1","payload":{"settings":{"badgeCount":"todayCount"}}}`,
			`not json`,
			`{"event":"keyUp","context":"ctx1"}`,
		},
	}
	srv := httptest.NewServer(deck)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := DialURL(ctx, wsURL(srv), "UUID-1", "registerPlugin", nil)
	if err != nil {
		t.Fatalf("DialURL() error = %v", err)
	}
	defer c.Close()

	reg := <-deck.registered
	if reg.Event != "registerPlugin" || reg.UUID != "UUID-1" {
		t.Errorf("registration = %+v", reg)
	}

	events := make(chan Message, 4)
	go c.Run(ctx, func(m Message) { events <- m })

	first := <-events
	if first.Event != EventWillAppear || first.Context != "ctx1" {
		t.Fatalf("first event = %+v", first)
	}
	p, err := first.ActionPayload()
	if err != nil {
		t.Fatalf("ActionPayload() error = %v", err)
	}
	if !strings.Contains(string(p.Settings), "todayCount") {
		t.Errorf("settings = %s", p.Settings)
	}

	second := <-events
	if second.Event != EventKeyUp {
		t.Errorf("undecodable message not skipped, got %+v", second)
	}

	if err := c.Send(ctx, SetTitle("ctx1", "3")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	got := <-deck.received
	if got["event"] != EventSetTitle || got["context"] != "ctx1" {
		t.Errorf("deck received %v", got)
	}
	payload, _ := got["payload"].(map[string]any)
	if payload["title"] != "3" {
		t.Errorf("title = %v, want 3", payload["title"])
	}

	if err := c.Send(ctx, Outbound{Event: "bye"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	<-deck.received
}

func TestOutboundEncoding(t *testing.T) {
	tests := []struct {
		name string
		msg  Outbound
		want string
	}{
		{"state", SetState("c", 2), `{"event":"setState","context":"c","payload":{"state":2}}`},
		{"alert", ShowAlert("c"), `{"event":"showAlert","context":"c"}`},
		{"url", OpenURL("omnifocus:///"), `{"event":"openUrl","payload":{"url":"omnifocus:///"}}`},
		{"pi", SendToPropertyInspector("a", "c", map[string]int{"x": 1}), `{"event":"sendToPropertyInspector","action":"a","context":"c","payload":{"x":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}
