package views

import (
	"context"
	"sync"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/realtime"
)

// NotificationAPI is the slice of the notification service this view
// drives. Satisfied by services.NotificationService.
type NotificationAPI interface {
	List(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, n models.Notification) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, n models.Notification) error
}

// NotificationCenter is the live notification list for one user with
// its unread counter. The counter is a best-effort derived integer,
// clamped at zero and never authoritative; it is recomputable from a
// fresh List at any time.
type NotificationCenter struct {
	api    NotificationAPI
	userID string
	items  *realtime.Collection[models.Notification]

	mu     sync.Mutex
	unread int
}

func NewNotificationCenter(api NotificationAPI, userID string) *NotificationCenter {
	return &NotificationCenter{
		api:    api,
		userID: userID,
		items:  realtime.NewCollection[models.Notification](),
	}
}

// Refresh replaces the local snapshot with the stored truth and
// recomputes the unread counter from it.
func (c *NotificationCenter) Refresh(ctx context.Context) error {
	notifications, err := c.api.List(ctx, c.userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Replace(notifications)
	c.unread = countUnread(notifications)
	return nil
}

func (c *NotificationCenter) Notifications() []models.Notification {
	return c.items.Snapshot()
}

func (c *NotificationCenter) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// MarkRead flags one notification read, remotely then locally.
func (c *NotificationCenter) MarkRead(ctx context.Context, id string) error {
	n, ok := c.items.Get(id)
	if !ok {
		return models.ErrNotFound
	}
	if n.IsRead {
		return nil
	}
	if err := c.api.MarkRead(ctx, n); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n.IsRead = true
	c.items.Apply(realtime.Event{Entity: realtime.EntityNotification, Action: realtime.Updated, Record: n})
	c.decrementUnread()
	return nil
}

// MarkAllRead flags everything currently unread.
func (c *NotificationCenter) MarkAllRead(ctx context.Context) error {
	if err := c.api.MarkAllRead(ctx, c.userID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := c.items.Snapshot()
	for i := range snapshot {
		snapshot[i].IsRead = true
	}
	c.items.Replace(snapshot)
	c.unread = 0
	return nil
}

// Delete removes a notification. Whether the unread counter moves is
// decided by the record's read flag as it was BEFORE the deletion.
func (c *NotificationCenter) Delete(ctx context.Context, id string) error {
	n, ok := c.items.Get(id)
	if !ok {
		return nil
	}
	wasUnread := !n.IsRead

	if err := c.api.Delete(ctx, n); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Apply(realtime.Event{Entity: realtime.EntityNotification, Action: realtime.Deleted, Record: n})
	if wasUnread {
		c.decrementUnread()
	}
	return nil
}

// Apply folds one realtime event into the view. Duplicate inserts are
// absorbed by the collection and leave the counter alone.
func (c *NotificationCenter) Apply(e realtime.Event) {
	n, ok := e.Record.(models.Notification)
	if !ok || n.UserID != c.userID {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.items.Get(n.ID)
	if !c.items.Apply(e) {
		return
	}

	switch e.Action {
	case realtime.Inserted:
		if !n.IsRead {
			c.unread++
		}
	case realtime.Updated:
		switch {
		case had && !prev.IsRead && n.IsRead:
			c.decrementUnread()
		case had && prev.IsRead && !n.IsRead:
			c.unread++
		case !had && !n.IsRead:
			c.unread++
		}
	case realtime.Deleted:
		if had && !prev.IsRead {
			c.decrementUnread()
		}
	}
}

// Run subscribes the view to its user's notification events and folds
// them until ctx is cancelled. The subscription is released on every
// exit path. Dropped events force a full refresh, since the stream can
// no longer be trusted to cover the gap.
func (c *NotificationCenter) Run(ctx context.Context, hub *realtime.Hub) error {
	sub := hub.Subscribe(realtime.UserNotifications(c.userID), realtime.DefaultBuffer)
	defer hub.Unsubscribe(sub)

	if err := c.Refresh(ctx); err != nil {
		logging.Logger.Warnf("notification center for user %s: initial refresh failed: %v", c.userID, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.Events():
			if !ok {
				return nil
			}
			c.Apply(e)
			if sub.TakeDropped() > 0 {
				if err := c.Refresh(ctx); err != nil {
					logging.Logger.Warnf("notification center for user %s: refresh after dropped events failed: %v", c.userID, err)
				}
			}
		}
	}
}

// decrementUnread must be called with the lock held.
func (c *NotificationCenter) decrementUnread() {
	if c.unread > 0 {
		c.unread--
	}
}

func countUnread(notifications []models.Notification) int {
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	return unread
}
