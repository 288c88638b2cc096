package app

import (
	"database/sql"

	"github.com/controle-c/jarvis/internal/config"
	"github.com/controle-c/jarvis/internal/event_bus"
	"github.com/controle-c/jarvis/internal/utils"
	"github.com/controle-c/jarvis/pkg/agenda"
	"github.com/controle-c/jarvis/pkg/google"
	"github.com/controle-c/jarvis/pkg/reminder"
	"github.com/controle-c/jarvis/pkg/task"
	"github.com/controle-c/jarvis/pkg/transaction"
	"github.com/controle-c/jarvis/pkg/user"
	"github.com/controle-c/jarvis/pkg/voice"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	CalendarProvider *google.CalendarProvider
	AgendaService    *agenda.Service
	AgendaHandler    *agenda.Handler

	TransactionRepo    transaction.Repo
	TransactionService *transaction.TransactionServiceImpl
	TransactionHandler *transaction.Handler

	TaskRepo    task.Repo
	TaskService *task.TaskServiceImpl
	TaskHandler *task.Handler

	ReminderRepo      reminder.Repo
	ReminderService   *reminder.ReminderServiceImpl
	ReminderScheduler *reminder.Scheduler
	ReminderHandler   *reminder.Handler

	VoicePipeline *voice.PipelineClient
	VoiceTTS      *voice.TTSClient
	VoiceService  *voice.Service
	VoiceHandler  *voice.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.GoogleAuth = google.NewGoogleAuth(db, deps.UserService, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.CalendarProvider = google.NewCalendarProvider(deps.GoogleAuth)
	deps.AgendaService = agenda.NewService(deps.CalendarProvider, deps.Bus)
	deps.AgendaHandler = agenda.NewHandler(deps.AgendaService)

	deps.TransactionRepo = transaction.NewTransactionRepo(db)
	deps.TransactionService = transaction.NewTransactionService(deps.TransactionRepo, deps.Bus)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	deps.TaskRepo = task.NewTaskRepo(db)
	deps.TaskService = task.NewTaskService(deps.TaskRepo, deps.Clock)
	deps.TaskHandler = task.NewHandler(deps.TaskService)

	deps.ReminderRepo = reminder.NewReminderRepo(db)
	deps.ReminderService = reminder.NewReminderService(deps.ReminderRepo)
	deps.ReminderScheduler = reminder.NewScheduler(deps.ReminderRepo, deps.Bus, deps.Clock)
	deps.ReminderHandler = reminder.NewHandler(deps.ReminderService)

	deps.VoicePipeline = voice.NewPipelineClient(cfg.Voice.WebhookUrl)
	deps.VoiceTTS = voice.NewTTSClient(cfg.Voice.TTS)
	deps.VoiceService = voice.NewService(deps.VoicePipeline, deps.VoiceTTS)
	deps.VoiceHandler = voice.NewHandler(deps.VoiceService)

	return deps
}
