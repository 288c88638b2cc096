package voice

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/controle-c/jarvis/internal/rest"
	log "github.com/sirupsen/logrus"
)

// maxUploadBytes bounds the recorded audio blob (10 MiB).
const maxUploadBytes = 10 << 20

type replyDTO struct {
	Response string   `json:"response"`
	Items    []string `json:"items,omitempty"`
	Audio    *string  `json:"audio"`
}

type speakRequest struct {
	Text string `json:"text"`
}

type stateDTO struct {
	State string `json:"state"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

// Transcribe accepts a multipart recording and returns the assistant's
// reply. The audio field is null when synthesis failed and the client should
// speak the response itself.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Missing audio upload",
			Details: "multipart field 'audio' is required",
		})
		return
	}
	defer file.Close()

	reply, err := h.service.Transcribe(r.Context(), file, header.Filename)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto := replyDTO{Response: reply.Response, Items: reply.Items}
	if reply.Audio != nil {
		encoded := base64.StdEncoding.EncodeToString(reply.Audio)
		dto.Audio = &encoded
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Speak synthesizes the given text and streams the audio back.
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Text must not be empty"})
		return
	}

	audio, err := h.service.Speak(r.Context(), req.Text)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Errorf("failed to stream synthesized audio: %v", err)
	}
}

// GetState reports the current voice session state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	state, err := h.service.State(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stateDTO{State: string(state)}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAssistantDisabled):
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Voice assistant is disabled"})
	case errors.Is(err, ErrBusy):
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrPipelineUnavailable):
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Voice pipeline is unavailable",
			Details: err.Error(),
		})
	case errors.Is(err, ErrSynthesisFailed):
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Speech synthesis failed",
			Details: err.Error(),
		})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
