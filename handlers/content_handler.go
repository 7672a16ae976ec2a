package handlers

import (
	"net/http"
	"strings"

	"PostGenius/models"
	"PostGenius/services"
	"PostGenius/utils"
)

func (h *Handler) GenerateText(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	apiKey, err := h.settings.GeminiAPIKey(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	text, err := h.content.GenerateText(r.Context(), req.Topic, req.Tone, req.CTA, apiKey)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.GenerateResponse{Content: text})
}

func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	apiKey, err := h.settings.GeminiAPIKey(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	image, err := h.content.GenerateImage(r.Context(), imagePrompt(req), apiKey)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.GenerateResponse{ImageSource: image})
}

func imagePrompt(req models.GenerateImageRequest) string {
	for _, candidate := range []string{req.Prompt, req.Topic, req.Content} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, services.Masked(settings))
}

// SaveSettings stores new credentials. A masked key echoed back from
// GetSettings leaves the stored key untouched.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var incoming models.Settings
	if !decodeJSON(w, r, &incoming) {
		return
	}

	if strings.Contains(incoming.GeminiAPIKey, "*") {
		current, err := h.settings.Load(r.Context())
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		incoming.GeminiAPIKey = current.GeminiAPIKey
	}
	if err := h.settings.Save(r.Context(), incoming); err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, services.Masked(incoming))
}
