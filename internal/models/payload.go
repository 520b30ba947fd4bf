package models

// EventGetPerspectives is both the property inspector's request and the
// plugin's reply event type.
const EventGetPerspectives = "getPerspectives"

// Payload is the message sent to the property inspector with the perspective list.
// Built fresh for every send.
type Payload struct {
	EventType    string   `json:"eventType"`
	Perspectives []string `json:"perspectives"`
}

// NewPerspectivePayload builds a perspective list payload. A nil list is sent
// as an empty array so the inspector always receives the key.
func NewPerspectivePayload(perspectives []string) Payload {
	list := make([]string, len(perspectives))
	copy(list, perspectives)
	return Payload{
		EventType:    EventGetPerspectives,
		Perspectives: list,
	}
}

// InspectorRequest is what the property inspector sends with sendToPlugin.
type InspectorRequest struct {
	EventType string `json:"eventType"`
}
