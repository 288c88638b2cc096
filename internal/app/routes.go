package app

import (
	"github.com/controle-c/jarvis/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Weekly agenda
	r.HandleFunc("/api/agenda/week", deps.AgendaHandler.GetWeek).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/agenda/event", deps.AgendaHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/agenda/event", deps.AgendaHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/agenda/event/{eventId}", deps.AgendaHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/agenda/event/{eventId}", deps.AgendaHandler.DeleteEvent).Methods("DELETE")

	// Transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.CreateTransaction).Methods("POST")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.GetTransactions).Methods("GET")
	r.HandleFunc("/api/transaction/summary", deps.TransactionHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/transaction/categories", deps.TransactionHandler.GetCategoryBreakdown).Methods("GET")
	r.HandleFunc("/api/transaction/balance", deps.TransactionHandler.GetBalanceHistory).Methods("GET")
	r.HandleFunc("/api/transaction/{transactionId}", deps.TransactionHandler.UpdateTransaction).Methods("PUT")
	r.HandleFunc("/api/transaction/{transactionId}", deps.TransactionHandler.DeleteTransaction).Methods("DELETE")

	// Task board
	r.HandleFunc("/api/task", deps.TaskHandler.CreateTask).Methods("POST")
	r.HandleFunc("/api/task", deps.TaskHandler.GetTasks).Methods("GET")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.UpdateTask).Methods("PUT")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.DeleteTask).Methods("DELETE")
	r.HandleFunc("/api/task/{taskId}/position", deps.TaskHandler.MoveTask).Methods("PUT")
	r.HandleFunc("/api/task/{taskId}/status", deps.TaskHandler.TransitionTask).Methods("PUT")

	// Reminders
	r.HandleFunc("/api/reminder", deps.ReminderHandler.CreateReminder).Methods("POST")
	r.HandleFunc("/api/reminder", deps.ReminderHandler.GetReminders).Methods("GET")
	r.HandleFunc("/api/reminder/upcoming", deps.ReminderHandler.GetUpcoming).Methods("GET")
	r.HandleFunc("/api/reminder/{reminderId}", deps.ReminderHandler.UpdateReminder).Methods("PUT")
	r.HandleFunc("/api/reminder/{reminderId}", deps.ReminderHandler.DeleteReminder).Methods("DELETE")

	// Voice assistant
	r.HandleFunc("/api/voice/transcribe", deps.VoiceHandler.Transcribe).Methods("POST")
	r.HandleFunc("/api/voice/speak", deps.VoiceHandler.Speak).Methods("POST")
	r.HandleFunc("/api/voice/state", deps.VoiceHandler.GetState).Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/name-availability", deps.UserHandler.IsUsernameAvailable).Methods("GET").Queries("username", "{username}")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/{userUid}", deps.UserHandler.DeleteUser).Methods("DELETE")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth", deps.GoogleAuth.Status).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
}
