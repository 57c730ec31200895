package models

import "time"

// MailingItem is a content entity eligible for export. It is a read-only
// snapshot of the remote record.
type MailingItem struct {
	ID             string    `json:"Id"`
	Name           string    `json:"Name"`
	Site           string    `json:"Site"`
	TemplateID     string    `json:"TemplateId,omitempty"`
	LastModified   time.Time `json:"LastModified"`
	IsActive       bool      `json:"IsActive"`
	Subject        string    `json:"Subject"`
	HTML           string    `json:"Html"`
	ReplyToAddress string    `json:"ReplyToAddress"`
	FromAddress    string    `json:"FromAddress"`
	MailType       string    `json:"MailType"`
	Version        int       `json:"Version"`
}

func (m *MailingItem) Validate() error {
	if m.ID == "" {
		return ErrMailingItemIDRequired
	}
	return nil
}

var (
	ErrMailingItemIDRequired = &ValidationError{Field: "Id", Message: "Mailing item id is required"}
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
