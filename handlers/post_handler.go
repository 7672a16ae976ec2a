package handlers

import (
	"net/http"

	"PostGenius/models"
	"PostGenius/utils"

	"github.com/gorilla/mux"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

// CreatePost schedules a new post. When the draft carries an editing id it
// behaves like UpdatePost, mirroring the single form of the UI.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}

	post, err := h.posts.ScheduleOrUpdate(r.Context(), draft, draft.IsScheduling)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if draft.EditingPostID != "" {
		status = http.StatusOK
	}
	utils.RespondWithJSON(w, status, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}
	draft.EditingPostID = mux.Vars(r)["id"]

	post, err := h.posts.ScheduleOrUpdate(r.Context(), draft, false)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TogglePause(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.TogglePause(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) PublishNow(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.PublishNow(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	draft, err := h.posts.StartEdit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, draft)
}

func (h *Handler) PublishImmediate(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}

	result, err := h.posts.PublishImmediate(r.Context(), draft)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) RunTick(w http.ResponseWriter, r *http.Request) {
	report, err := h.scheduler.Tick(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}
