package models

import "time"

const (
	NotificationInfo  = "info"
	NotificationError = "error"
)

// Notification is a user-facing message recorded on the workspace, the
// server-side equivalent of a toast.
type Notification struct {
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
