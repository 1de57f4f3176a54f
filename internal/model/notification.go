package model

import (
	"strings"
	"time"
)

// NotificationStatus describes which task change produced a notification.
type NotificationStatus string

const (
	NotificationCreated   NotificationStatus = "INCLUSAO"
	NotificationUpdated   NotificationStatus = "ALTERACAO"
	NotificationCompleted NotificationStatus = "CONCLUSAO"
)

// Label returns the display name of the status.
func (s NotificationStatus) Label() string {
	switch s {
	case NotificationCreated:
		return "created"
	case NotificationUpdated:
		return "updated"
	case NotificationCompleted:
		return "completed"
	default:
		return strings.ToLower(string(s))
	}
}

// Notification is an alert about a change to one of the user's tasks.
// The client only ever flips Read from false to true.
type Notification struct {
	ID         string             `json:"id"`
	TaskID     string             `json:"taskId"`
	OwnerID    string             `json:"usuarioId"`
	Title      string             `json:"titulo"`
	Message    string             `json:"mensagem"`
	Status     NotificationStatus `json:"status"`
	Read       bool               `json:"lida"`
	NotifiedAt string             `json:"dataNotificacao"`
}

// NotifiedTime parses NotifiedAt, returning the zero time on failure.
func (n Notification) NotifiedTime() time.Time {
	ts, err := time.Parse(time.RFC3339, n.NotifiedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Validate checks a notification received from the notification service.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return &ValidationError{Field: "notification.id", Message: "is missing"}
	}
	return nil
}

// NotificationDocument is the wrapper the notification service uses for
// each entry of its listing.
type NotificationDocument struct {
	Notification Notification `json:"notification"`
}

// Validate checks the wrapped notification.
func (d NotificationDocument) Validate() error {
	return d.Notification.Validate()
}
