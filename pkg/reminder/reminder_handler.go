package reminder

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/controle-c/jarvis/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// defaultUpcomingDays is the lookahead used when the request does not name
// one.
const defaultUpcomingDays = 7

type ReminderDTO struct {
	Id      int    `json:"id,omitempty"`
	Title   string `json:"title"`
	At      string `json:"at"`
	RRule   string `json:"rrule,omitempty"`
	Enabled bool   `json:"enabled"`
}

type OccurrenceDTO struct {
	ReminderId int    `json:"reminderId"`
	Title      string `json:"title"`
	At         string `json:"at"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating reminder")
	w.Header().Set("Content-Type", "application/json")

	reminder, ok := h.decodeReminder(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateReminder(r.Context(), reminder)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(reminderToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	reminders, err := h.service.GetReminders(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]ReminderDTO, 0, len(reminders))
	for _, reminder := range reminders {
		dtos = append(dtos, reminderToDTO(reminder))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["reminderId"])
	if err != nil {
		http.Error(w, "Invalid reminder id", http.StatusBadRequest)
		return
	}

	reminder, ok := h.decodeReminder(w, r)
	if !ok {
		return
	}
	if reminder.Id != 0 && reminder.Id != id {
		http.Error(w, "Reminder id in body does not match URL", http.StatusBadRequest)
		return
	}
	reminder.Id = id

	updated, err := h.service.UpdateReminder(r.Context(), reminder)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reminderToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["reminderId"])
	if err != nil {
		http.Error(w, "Invalid reminder id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteReminder(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUpcoming lists the concrete occurrences of the user's reminders within
// the next "days" days (default 7).
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	days := defaultUpcomingDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid days parameter",
				Details: "'days' must be a positive integer",
			})
			return
		}
		days = parsed
	}

	from := time.Now()
	occurrences, err := h.service.Upcoming(r.Context(), from, from.AddDate(0, 0, days))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, o := range occurrences {
		dtos = append(dtos, OccurrenceDTO{
			ReminderId: o.ReminderId,
			Title:      o.Title,
			At:         o.At.Format(time.RFC3339),
		})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) decodeReminder(w http.ResponseWriter, r *http.Request) (Reminder, bool) {
	var dto ReminderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Reminder{}, false
	}

	at, err := time.Parse(time.RFC3339, dto.At)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid at format",
			Details: "'at' must be in RFC3339 format",
		})
		return Reminder{}, false
	}

	return Reminder{
		Id:      dto.Id,
		Title:   dto.Title,
		At:      at,
		RRule:   dto.RRule,
		Enabled: dto.Enabled,
	}, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReminderNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Reminder not found"})
	case errors.Is(err, ErrEmptyTitle), errors.Is(err, ErrMissingTime), errors.Is(err, ErrInvalidRule):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func reminderToDTO(r Reminder) ReminderDTO {
	return ReminderDTO{
		Id:      r.Id,
		Title:   r.Title,
		At:      r.At.Format(time.RFC3339),
		RRule:   r.RRule,
		Enabled: r.Enabled,
	}
}
