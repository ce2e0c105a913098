/*
Package handler provides HTTP handler functions for accounts, avatars, messages and the
socket endpoint.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatterbox/internal/app/user"
	"chatterbox/internal/pkg/req"
	"chatterbox/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the success body of register and login.
type AuthResponse struct {
	Status bool         `json:"status"`
	User   user.Profile `json:"user"`
}

// HandleRegister processes the request to create a new user account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindAndValidate(w, r, &input); customErr != nil {
			resp.RespondFailure(w, r, customErr)
			return
		}

		profile, err := deps.Users.Register(r.Context(), input.Username, input.Email, input.Password)
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, AuthResponse{Status: true, User: profile})
	}
}

// HandleLogin verifies a username and password pair.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindAndValidate(w, r, &input); customErr != nil {
			resp.RespondFailure(w, r, customErr)
			return
		}

		profile, err := deps.Users.Login(r.Context(), input.Username, input.Password)
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, AuthResponse{Status: true, User: profile})
	}
}

// HandleListUsers returns every user except the one named in the path.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := deps.Users.ListContacts(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, contacts)
	}
}
