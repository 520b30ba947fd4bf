package streamdeck

import (
	"encoding/json"
	"fmt"
)

// Events received from the deck.
const (
	EventKeyUp                      = "keyUp"
	EventWillAppear                 = "willAppear"
	EventWillDisappear              = "willDisappear"
	EventDidReceiveSettings         = "didReceiveSettings"
	EventPropertyInspectorDidAppear = "propertyInspectorDidAppear"
	EventSendToPlugin               = "sendToPlugin"
	EventSystemDidWakeUp            = "systemDidWakeUp"
	EventApplicationDidLaunch       = "applicationDidLaunch"
	EventApplicationDidTerminate    = "applicationDidTerminate"
)

// Events sent to the deck.
const (
	EventSetTitle                = "setTitle"
	EventSetState                = "setState"
	EventShowAlert               = "showAlert"
	EventSendToPropertyInspector = "sendToPropertyInspector"
	EventOpenURL                 = "openUrl"
	EventLogMessage              = "logMessage"
)

// TargetBoth shows a title on the hardware key and in the deck app.
const TargetBoth = 0

// Message is an inbound deck event.
type Message struct {
	Action  string          `json:"action,omitempty"`
	Event   string          `json:"event"`
	Context string          `json:"context,omitempty"`
	Device  string          `json:"device,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Coordinates locate a key on the device.
type Coordinates struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// ActionPayload is the payload of key, appear and settings events.
type ActionPayload struct {
	Settings        json.RawMessage `json:"settings,omitempty"`
	Coordinates     Coordinates     `json:"coordinates"`
	State           int             `json:"state"`
	IsInMultiAction bool            `json:"isInMultiAction"`
}

// ApplicationPayload is the payload of application launch/terminate events.
type ApplicationPayload struct {
	Application string `json:"application"`
}

// ActionPayload decodes the payload as an ActionPayload.
func (m Message) ActionPayload() (ActionPayload, error) {
	var p ActionPayload
	if len(m.Payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return p, fmt.Errorf("failed to decode %s payload: %w", m.Event, err)
	}
	return p, nil
}

// ApplicationPayload decodes the payload as an ApplicationPayload.
func (m Message) ApplicationPayload() (ApplicationPayload, error) {
	var p ApplicationPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return p, fmt.Errorf("failed to decode %s payload: %w", m.Event, err)
	}
	return p, nil
}

// Outbound is an event sent to the deck.
type Outbound struct {
	Event   string `json:"event"`
	Action  string `json:"action,omitempty"`
	Context string `json:"context,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Registration is the first message on a new connection.
type Registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

// TitlePayload is the payload of setTitle.
type TitlePayload struct {
	Title  string `json:"title"`
	Target int    `json:"target"`
}

// StatePayload is the payload of setState.
type StatePayload struct {
	State int `json:"state"`
}

// URLPayload is the payload of openUrl.
type URLPayload struct {
	URL string `json:"url"`
}

// LogPayload is the payload of logMessage.
type LogPayload struct {
	Message string `json:"message"`
}

// SetTitle builds a setTitle event.
func SetTitle(context, title string) Outbound {
	return Outbound{Event: EventSetTitle, Context: context, Payload: TitlePayload{Title: title, Target: TargetBoth}}
}

// SetState builds a setState event.
func SetState(context string, state int) Outbound {
	return Outbound{Event: EventSetState, Context: context, Payload: StatePayload{State: state}}
}

// ShowAlert builds a showAlert event.
func ShowAlert(context string) Outbound {
	return Outbound{Event: EventShowAlert, Context: context}
}

// SendToPropertyInspector builds a sendToPropertyInspector event.
func SendToPropertyInspector(action, context string, payload any) Outbound {
	return Outbound{Event: EventSendToPropertyInspector, Action: action, Context: context, Payload: payload}
}

// OpenURL builds an openUrl event.
func OpenURL(url string) Outbound {
	return Outbound{Event: EventOpenURL, Payload: URLPayload{URL: url}}
}

// LogMessage builds a logMessage event.
func LogMessage(msg string) Outbound {
	return Outbound{Event: EventLogMessage, Payload: LogPayload{Message: msg}}
}
