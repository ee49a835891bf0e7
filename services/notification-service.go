package services

import (
	"context"
	"fmt"
	"time"

	"taskboard-service/models"
	"taskboard-service/realtime"

	"github.com/google/uuid"
)

// MaxNotifications caps how many notifications List returns.
const MaxNotifications = 20

// NotificationStore is the persistence capability the service
// consumes. Notification keys include created_at, so mutating
// operations carry it alongside the id.
type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string, createdAt time.Time) error
	Delete(ctx context.Context, userID, id string, createdAt time.Time) error
	ListReadBefore(ctx context.Context, cutoff time.Time) ([]models.Notification, error)
}

type NotificationService struct {
	store NotificationStore
	hub   *realtime.Hub
}

func NewNotificationService(store NotificationStore, hub *realtime.Hub) *NotificationService {
	return &NotificationService{store: store, hub: hub}
}

// Create persists a notification and announces it. ID and CreatedAt
// are assigned here; CreatedAt is truncated to milliseconds because it
// is part of the storage key and must round-trip exactly.
func (ns *NotificationService) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.UserID == "" || n.Type == "" || n.Message == "" {
		return models.Notification{}, fmt.Errorf("userID, type, and message are required")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	n.IsRead = false

	if err := ns.store.Create(ctx, n); err != nil {
		return models.Notification{}, err
	}
	ns.hub.Publish(realtime.Event{Entity: realtime.EntityNotification, Action: realtime.Inserted, Record: n})
	return n, nil
}

// List returns the user's most recent notifications, newest first,
// capped at MaxNotifications.
func (ns *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return ns.store.ListByUser(ctx, userID, MaxNotifications)
}

func (ns *NotificationService) MarkRead(ctx context.Context, n models.Notification) error {
	if err := ns.store.MarkRead(ctx, n.UserID, n.ID, n.CreatedAt); err != nil {
		return err
	}
	n.IsRead = true
	ns.hub.Publish(realtime.Event{Entity: realtime.EntityNotification, Action: realtime.Updated, Record: n})
	return nil
}

// MarkAllRead marks every notification unread at the time of the call.
// The unread set is snapshotted first, so a notification created while
// the batch runs is not silently marked read.
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	unread, err := ns.store.ListUnread(ctx, userID)
	if err != nil {
		return err
	}
	for _, n := range unread {
		if err := ns.MarkRead(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (ns *NotificationService) Delete(ctx context.Context, n models.Notification) error {
	if err := ns.store.Delete(ctx, n.UserID, n.ID, n.CreatedAt); err != nil {
		return err
	}
	ns.hub.Publish(realtime.Event{Entity: realtime.EntityNotification, Action: realtime.Deleted, Record: n})
	return nil
}

// PurgeRead deletes read notifications older than the retention
// period. Returns how many were removed.
func (ns *NotificationService) PurgeRead(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)
	stale, err := ns.store.ListReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, n := range stale {
		if err := ns.store.Delete(ctx, n.UserID, n.ID, n.CreatedAt); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
