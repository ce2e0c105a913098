/*
Package resp provides helper functions for constructing and sending HTTP JSON responses.

Successful calls answer with the endpoint's own payload. Validation-style failures are
normal JSON bodies carrying status:false and a msg, while unexpected failures are sent
to a generic fault response with no structured body.
*/
package resp

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
)

// Failure is the body written for validation-style failures.
type Failure struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

// RespondJSON sets the Content-Type and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.FromRequest(r).Error().
			Err(err).
			Int("http_status", httpStatus).
			Msg("Error encoding JSON response")

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends payload with HTTP 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, payload any) {
	RespondJSON(w, r, http.StatusOK, payload)
}

// RespondFailure sends a {status:false,msg} body using the error's HTTP status.
func RespondFailure(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, Failure{Status: false, Msg: customErr.Message})
}

// RespondFault logs err and writes the unstructured 500 response.
func RespondFault(w http.ResponseWriter, r *http.Request, err error) {
	logx.FromRequest(r).Error().Err(err).Msg("Request failed with unexpected error")

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Dispatch answers with RespondFailure for validation-style CustomErrors and with
// RespondFault for faults and any other error.
func Dispatch(w http.ResponseWriter, r *http.Request, err error) {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) && !customErr.IsFault() {
		RespondFailure(w, r, customErr)
		return
	}

	RespondFault(w, r, err)
}
