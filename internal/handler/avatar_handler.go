package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatterbox/internal/pkg/req"
	"chatterbox/internal/pkg/resp"
)

type SetAvatarInput struct {
	Image string `json:"image" validate:"required"`
}

// HandleSetAvatar overwrites the avatar of the user named in the path.
func HandleSetAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SetAvatarInput
		if customErr := req.BindAndValidate(w, r, &input); customErr != nil {
			resp.RespondFailure(w, r, customErr)
			return
		}

		state, err := deps.Avatars.SetAvatar(r.Context(), chi.URLParam(r, "id"), input.Image)
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, state)
	}
}

// HandleAvatarDownload redirects to a presigned link for the mirrored avatar.
func HandleAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := deps.Avatars.DownloadURL(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.Dispatch(w, r, err)
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
