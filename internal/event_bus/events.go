package event_bus

import "time"

const (
	// AgendaChanged is published after any create/update/delete against the
	// external calendar. Subscribers drop cached event ranges so the next
	// read refetches the full window.
	AgendaChanged EventType = "agenda.changed"

	// TransactionRecorded is published after a financial transaction is
	// stored or modified.
	TransactionRecorded EventType = "transaction.recorded"

	// ReminderDue is published by the reminder scheduler when a reminder's
	// next occurrence has been reached.
	ReminderDue EventType = "reminder.due"
)

type AgendaChangedData struct {
	UserId  int
	EventId string
}

type TransactionRecordedData struct {
	UserId int
	Id     int
	Type   string
	Amount int64
}

type ReminderDueData struct {
	UserId     int
	ReminderId int
	Title      string
	At         time.Time
}
