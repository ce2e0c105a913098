package chat

import "encoding/json"

// EventType names a socket event.
type EventType string

const (
	// TypeAddUser announces that the connection speaks for a user id.
	TypeAddUser EventType = "add-user"

	// TypeSendMsg asks the server to relay a message to another user.
	TypeSendMsg EventType = "send-msg"

	// TypeMsgReceive carries a relayed message text to its recipient.
	TypeMsgReceive EventType = "msg-receive"
)

// Event is the envelope of every socket frame in both directions.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SendPayload is the payload of a send-msg event.
type SendPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// EncodeEvent builds a frame of the given type around payload.
func EncodeEvent(eventType EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: eventType, Payload: raw})
}
