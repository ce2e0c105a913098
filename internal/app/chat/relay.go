package chat

import (
	"github.com/rs/zerolog"

	"chatterbox/internal/pkg/logx"
)

// Relay forwards message text to the connection currently announced for a recipient.
// Delivery is fire-and-forget: nothing is queued for absent recipients and the sender
// is never told the outcome.
type Relay struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewRelay returns a Relay reading presence from registry.
func NewRelay(registry *Registry) *Relay {
	return &Relay{
		registry: registry,
		logger:   logx.Component("relay"),
	}
}

// Forward pushes text to the connection mapped to recipientID. It reports whether the
// frame was queued; an absent recipient, the sender's own connection and a full send
// buffer all drop the message silently.
func (r *Relay) Forward(sender *Client, recipientID, text string) bool {
	target, ok := r.registry.Lookup(recipientID)
	if !ok {
		r.logger.Debug().Str("to", recipientID).Msg("recipient offline, message dropped")
		return false
	}
	if target == sender {
		return false
	}

	frame, err := EncodeEvent(TypeMsgReceive, text)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to encode msg-receive frame")
		return false
	}

	return target.deliver(frame)
}
