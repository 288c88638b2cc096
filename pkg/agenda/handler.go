package agenda

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/controle-c/jarvis/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartTime   time.Time `json:"start"`
	EndTime     time.Time `json:"end"`
	AllDay      bool      `json:"allDay,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, ok := h.parseTimeParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.parseTimeParam(w, r, "to")
	if !ok {
		return
	}

	events, err := h.service.EventsWithin(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetWeek returns the positioned weekly grid for the week containing "date".
// The optional "secondaryDate" is the other view's cursor; the fetch range
// covers both windows plus the lookahead buffer.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date format",
			Details: "'date' must be in RFC3339 or YYYY-MM-DD format",
		})
		return
	}

	var secondary time.Time
	if raw := r.URL.Query().Get("secondaryDate"); raw != "" {
		secondary, err = parseDate(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid secondaryDate format",
				Details: "'secondaryDate' must be in RFC3339 or YYYY-MM-DD format",
			})
			return
		}
	}

	grid, err := h.service.WeekGrid(r.Context(), date, secondary)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(grid); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating agenda event")
	w.Header().Set("Content-Type", "application/json")

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.EndTime.Before(dto.StartTime) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Event end must not be before start"})
		return
	}

	created, err := h.service.CreateEvent(r.Context(), dtoToEvent(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	eventId := vars["eventId"]

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID != "" && dto.ID != eventId {
		http.Error(w, "Event id in body does not match URL", http.StatusBadRequest)
		return
	}
	dto.ID = eventId
	if dto.EndTime.Before(dto.StartTime) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Event end must not be before start"})
		return
	}

	updated, err := h.service.UpdateEvent(r.Context(), dtoToEvent(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventId := vars["eventId"]

	if err := h.service.DeleteEvent(r.Context(), eventId); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	t, err := parseDate(r.URL.Query().Get(name))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid " + name + " (date) format",
			Details: "'" + name + "' must be in RFC3339 or YYYY-MM-DD format",
		})
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoData) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Calendar is unavailable",
			Details: err.Error(),
		})
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		AllDay:      e.AllDay,
	}
}

func dtoToEvent(dto EventDTO) Event {
	return Event{
		ID:          dto.ID,
		Summary:     dto.Summary,
		Description: dto.Description,
		Location:    dto.Location,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		AllDay:      dto.AllDay,
	}
}
