package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"PostGenius/services"
	"PostGenius/utils"

	"github.com/gorilla/mux"
)

type Handler struct {
	posts     *services.PostService
	scheduler *services.Scheduler
	content   services.ContentGenerator
	settings  *services.SettingsService
}

func NewHandler(posts *services.PostService, scheduler *services.Scheduler, content services.ContentGenerator, settings *services.SettingsService) *Handler {
	return &Handler{
		posts:     posts,
		scheduler: scheduler,
		content:   content,
		settings:  settings,
	}
}

// Routes registers every endpoint on r. Middleware is applied by the caller.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/posts", h.ListPosts).Methods("GET")
	api.HandleFunc("/posts", h.CreatePost).Methods("POST")
	api.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	api.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	api.HandleFunc("/posts/{id}", h.DeletePost).Methods("DELETE")
	api.HandleFunc("/posts/{id}/toggle-pause", h.TogglePause).Methods("POST")
	api.HandleFunc("/posts/{id}/publish", h.PublishNow).Methods("POST")
	api.HandleFunc("/posts/{id}/draft", h.StartEdit).Methods("GET")

	api.HandleFunc("/publish", h.PublishImmediate).Methods("POST")

	api.HandleFunc("/generate/text", h.GenerateText).Methods("POST")
	api.HandleFunc("/generate/image", h.GenerateImage).Methods("POST")

	api.HandleFunc("/settings", h.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.SaveSettings).Methods("PUT")

	api.HandleFunc("/scheduler/tick", h.RunTick).Methods("POST")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// respondWithServiceError maps the service error taxonomy onto HTTP statuses.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		publishErr    *services.PublishError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
	case errors.Is(err, services.ErrScheduleTooSoon):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case services.IsConfigurationError(err):
		utils.RespondWithError(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, services.ErrPostNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrPostPublished), errors.Is(err, services.ErrPublishInProgress):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &publishErr):
		utils.RespondWithError(w, http.StatusBadGateway, publishErr.Message)
	case errors.Is(err, services.ErrGenerationFailed):
		utils.RespondWithError(w, http.StatusBadGateway, err.Error())
	default:
		utils.Errorf("[API] unexpected error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
