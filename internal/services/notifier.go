package services

import (
	"log"

	"github.com/tasklight/tasklight/internal/models"
)

// LogNotifier writes due-reminder notifications to the server log. It
// stands in until a real delivery channel (email, push) is wired up.
type LogNotifier struct{}

func (LogNotifier) Notify(reminder models.Reminder, task models.Task) {
	log.Printf("reminder %d due for task %d (%s)", reminder.ID, task.ID, task.Title)
}
