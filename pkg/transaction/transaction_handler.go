package transaction

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

type TransactionDTO struct {
	Id       int    `json:"id,omitempty"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
}

type SummaryDTO struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

type CategoryTotalDTO struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type BalancePointDTO struct {
	Date    string `json:"date"`
	Balance int64  `json:"balance"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating transaction")
	w.Header().Set("Content-Type", "application/json")

	transaction, ok := h.decodeTransaction(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateTransaction(r.Context(), transaction)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(transactionToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		dtos = append(dtos, transactionToDTO(t))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := h.pathId(w, r)
	if !ok {
		return
	}

	transaction, ok := h.decodeTransaction(w, r)
	if !ok {
		return
	}
	if transaction.Id != 0 && transaction.Id != id {
		http.Error(w, "Transaction id in body does not match URL", http.StatusBadRequest)
		return
	}
	transaction.Id = id

	updated, err := h.service.UpdateTransaction(r.Context(), transaction)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transactionToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathId(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary returns the aggregate (income, expense, balance) for the same
// filter parameters the listing accepts.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summarize(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SummaryDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	totals, err := h.service.CategoryBreakdown(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]CategoryTotalDTO, 0, len(totals))
	for _, c := range totals {
		dtos = append(dtos, CategoryTotalDTO(c))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	series, err := h.service.BalanceHistory(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]BalancePointDTO, 0, len(series))
	for _, p := range series {
		dtos = append(dtos, BalancePointDTO{Date: p.Date.Format(dateLayout), Balance: p.Balance})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) decodeTransaction(w http.ResponseWriter, r *http.Request) (Transaction, bool) {
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Transaction{}, false
	}

	date, err := time.Parse(dateLayout, dto.Date)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date format",
			Details: "'date' must be in YYYY-MM-DD format",
		})
		return Transaction{}, false
	}

	return Transaction{
		Id:       dto.Id,
		Title:    dto.Title,
		Category: dto.Category,
		Type:     Type(dto.Type),
		Amount:   dto.Amount,
		Date:     date,
		Notes:    dto.Notes,
	}, true
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	q := r.URL.Query()
	filter := Filter{
		Search:   q.Get("search"),
		Type:     Type(q.Get("type")),
		Category: q.Get("category"),
	}

	var err error
	if raw := q.Get("from"); raw != "" {
		if filter.From, err = time.Parse(dateLayout, raw); err != nil {
			h.writeBadDate(w, "from")
			return Filter{}, false
		}
	}
	if raw := q.Get("to"); raw != "" {
		if filter.To, err = time.Parse(dateLayout, raw); err != nil {
			h.writeBadDate(w, "to")
			return Filter{}, false
		}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid type filter",
			Details: "'type' must be entrada or saida",
		})
		return Filter{}, false
	}
	return filter, true
}

func (h *Handler) pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["transactionId"])
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeBadDate(w http.ResponseWriter, name string) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "Invalid " + name + " (date) format",
		Details: "'" + name + "' must be in YYYY-MM-DD format",
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Transaction not found"})
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidAmount):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func transactionToDTO(t Transaction) TransactionDTO {
	return TransactionDTO{
		Id:       t.Id,
		Title:    t.Title,
		Category: t.Category,
		Type:     string(t.Type),
		Amount:   t.Amount,
		Date:     t.Date.Format(dateLayout),
		Notes:    t.Notes,
	}
}
