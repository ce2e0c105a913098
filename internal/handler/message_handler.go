package handler

import (
	"net/http"

	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/req"
	"chatterbox/internal/pkg/resp"
)

type AddMessageInput struct {
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type GetMessagesInput struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// MessageStatus is the body of addmsg in both outcomes.
type MessageStatus struct {
	Msg string `json:"msg"`
}

const messageAdded = "Message added successfully"

// HandleAddMessage stores a message. A failed save answers with a msg body, not a fault.
func HandleAddMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input AddMessageInput
		if customErr := req.BindAndValidate(w, r, &input); customErr != nil {
			resp.RespondFailure(w, r, customErr)
			return
		}

		err := deps.Messages.Add(r.Context(), input.From, input.To, input.Message)
		if errs.HasCode(err, errs.ErrMessageNotSaved) {
			resp.RespondSuccess(w, r, MessageStatus{Msg: errs.NewError(errs.ErrMessageNotSaved).Message})
			return
		}
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, MessageStatus{Msg: messageAdded})
	}
}

// HandleGetMessages returns the conversation between from and to as seen by from.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input GetMessagesInput
		if customErr := req.BindAndValidate(w, r, &input); customErr != nil {
			resp.RespondFailure(w, r, customErr)
			return
		}

		history, err := deps.Messages.History(r.Context(), input.From, input.To)
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, history)
	}
}
