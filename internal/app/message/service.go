package message

import (
	"context"

	"github.com/rs/zerolog"

	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
)

// Service appends messages and reads conversation history.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService returns a Service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: logx.Component("messages"),
	}
}

// Add stores a message from senderID to recipientID. A failed save is reported as the
// validation-style ErrMessageNotSaved rather than a fault.
func (s *Service) Add(ctx context.Context, senderID, recipientID, text string) error {
	saved, err := s.store.AddMessage(ctx, New(senderID, recipientID, text))
	if err != nil {
		s.logger.Error().Err(err).
			Str("from", senderID).
			Str("to", recipientID).
			Msg("failed to store message")
		return errs.Wrap(errs.ErrMessageNotSaved, err)
	}

	s.logger.Debug().Str("message_id", saved.ID).Msg("message stored")
	return nil
}

// History returns the conversation between self and peer in update order, each entry
// flagged with whether self sent it.
func (s *Service) History(ctx context.Context, self, peer string) ([]HistoryEntry, error) {
	messages, err := s.store.ListConversation(ctx, self, peer)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStoreUnavailable, err)
	}

	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, HistoryEntry{
			FromSelf: m.Sender == self,
			Message:  m.Text,
		})
	}
	return entries, nil
}
