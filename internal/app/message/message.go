/*
Package message contains the persisted chat message model and the Message Service that
appends messages and reads back the history of a two-person conversation.

Persisting a message and relaying it over a live socket are independent: this package
never touches the socket layer.
*/
package message

import (
	"context"
	"time"
)

// Message is an immutable chat message between exactly two participants.
type Message struct {
	ID   string
	Text string

	// Participants holds the two user ids in the order they were supplied (sender first).
	Participants [2]string

	// Sender is always one of Participants.
	Sender string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds an unsaved Message from sender to recipient.
func New(senderID, recipientID, text string) Message {
	return Message{
		Text:         text,
		Participants: [2]string{senderID, recipientID},
		Sender:       senderID,
	}
}

// Pair returns the participant ids in canonical (sorted) order. Two messages belong to
// the same conversation exactly when their pairs are equal.
func Pair(a, b string) (low, high string) {
	if b < a {
		return b, a
	}
	return a, b
}

// HistoryEntry is one message of a conversation as seen by one of its participants.
type HistoryEntry struct {
	FromSelf bool   `json:"fromSelf"`
	Message  string `json:"message"`
}

// Store persists messages.
type Store interface {
	// AddMessage stores m and returns it with ID and timestamps filled in.
	AddMessage(ctx context.Context, m Message) (Message, error)

	// ListConversation returns every message whose participant set is exactly {a, b},
	// ordered by UpdatedAt ascending; insertion order breaks ties.
	ListConversation(ctx context.Context, a, b string) ([]Message, error)
}
