package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/taskapp/internal/model"
)

// Notifications is the client for the notification service.
type Notifications struct {
	client *Client
}

// NewNotifications returns a notification service client. client should
// carry a TokenSource.
func NewNotifications(client *Client) *Notifications {
	return &Notifications{client: client}
}

// ListUnread returns the unread notifications addressed to ownerID.
func (n *Notifications) ListUnread(ctx context.Context, ownerID string) ([]model.Notification, error) {
	query := url.Values{
		"lida":    {"false"},
		"unPaged": {"true"},
	}
	if ownerID != "" {
		query.Set("usuarioId", ownerID)
	}

	var page model.Page[model.NotificationDocument]
	if err := n.client.Get(ctx, "/notifications", query, &page); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	if err := model.ValidatePage(page); err != nil {
		return nil, fmt.Errorf("listing notifications: %w: %v", ErrMalformedResponse, err)
	}

	out := make([]model.Notification, 0, len(page.Records))
	for _, doc := range page.Records {
		out = append(out, doc.Notification)
	}
	return out, nil
}

// Update submits full replacements of notification records.
func (n *Notifications) Update(ctx context.Context, notifications ...model.Notification) error {
	if err := n.client.Put(ctx, "/notifications", notifications, nil); err != nil {
		return fmt.Errorf("updating notifications: %w", err)
	}
	return nil
}

// MarkRead marks the notification with the given id as read. Only that
// record is sent; the rest of all is left untouched.
func (n *Notifications) MarkRead(ctx context.Context, all []model.Notification, id string) error {
	for _, rec := range all {
		if rec.ID == id {
			rec.Read = true
			return n.Update(ctx, rec)
		}
	}
	return fmt.Errorf("notification %q not in list", id)
}

// MarkAllRead marks every record of all as read in one request. It sends
// nothing when all is empty.
func (n *Notifications) MarkAllRead(ctx context.Context, all []model.Notification) error {
	if len(all) == 0 {
		return nil
	}

	read := make([]model.Notification, len(all))
	for i, rec := range all {
		rec.Read = true
		read[i] = rec
	}
	return n.Update(ctx, read...)
}
