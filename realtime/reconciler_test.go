package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard-service/models"
)

func ids(items []models.Notification) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}

func assertOrder(t *testing.T, c *Collection[models.Notification], want ...string) {
	t.Helper()
	got := ids(c.Snapshot())
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCollectionInsertPrepends(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	c.Apply(notificationEvent(Inserted, "u1", "n2"))
	assertOrder(t, c, "n2", "n1")
}

func TestCollectionDuplicateInsertIsNoOp(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	if c.Apply(notificationEvent(Inserted, "u1", "n1")) {
		t.Fatal("duplicate insert should not change the collection")
	}
	assertOrder(t, c, "n1")
}

func TestCollectionUpdateReplacesInPlace(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	c.Apply(notificationEvent(Inserted, "u1", "n2"))

	e := Event{Entity: EntityNotification, Action: Updated, Record: models.Notification{ID: "n1", UserID: "u1", IsRead: true}}
	if !c.Apply(e) {
		t.Fatal("update should change the collection")
	}

	assertOrder(t, c, "n2", "n1")
	got, ok := c.Get("n1")
	if !ok || !got.IsRead {
		t.Fatalf("expected n1 replaced with read state, got %+v", got)
	}
}

func TestCollectionUpdateForUnknownInserts(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	c.Apply(notificationEvent(Updated, "u1", "n2"))
	assertOrder(t, c, "n2", "n1")
}

func TestCollectionDeleteUnknownIsNoOp(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	if c.Apply(notificationEvent(Deleted, "u1", "ghost")) {
		t.Fatal("deleting an unknown identity should not change the collection")
	}
	assertOrder(t, c, "n1")
}

func TestCollectionDeleteRemoves(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	c.Apply(notificationEvent(Inserted, "u1", "n2"))
	c.Apply(notificationEvent(Deleted, "u1", "n2"))
	assertOrder(t, c, "n1")
}

func TestCollectionIgnoresForeignRecordTypes(t *testing.T) {
	c := NewCollection[models.Notification]()
	e := Event{Entity: EntityTask, Action: Inserted, Record: models.Task{ID: "t1"}}
	if c.Apply(e) {
		t.Fatal("a task event should not change a notification collection")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty collection, got %d items", c.Len())
	}
}

func TestCollectionReplaceDiscardsFoldedState(t *testing.T) {
	c := NewCollection[models.Notification]()
	c.Apply(notificationEvent(Inserted, "u1", "n1"))
	c.Replace([]models.Notification{{ID: "n5", UserID: "u1"}, {ID: "n4", UserID: "u1"}})
	assertOrder(t, c, "n5", "n4")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestReconcilerFoldsEventsAfterSnapshot(t *testing.T) {
	hub := NewHub()
	refresh := func(ctx context.Context) ([]models.Notification, error) {
		return []models.Notification{{ID: "n1", UserID: "u1"}}, nil
	}
	r := NewReconciler("test", hub, UserNotifications("u1"), refresh)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, func() bool { return hub.SubscriberCount() == 1 })
	waitFor(t, func() bool { return r.Collection().Len() == 1 })

	hub.Publish(notificationEvent(Inserted, "u1", "n2"))
	waitFor(t, func() bool { return r.Collection().Len() == 2 })
	assertOrder(t, r.Collection(), "n2", "n1")

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := hub.SubscriberCount(); got != 0 {
		t.Fatalf("expected subscription released on exit, got %d subscribers", got)
	}
}

func TestReconcilerSurvivesFailedInitialSnapshot(t *testing.T) {
	hub := NewHub()
	refresh := func(ctx context.Context) ([]models.Notification, error) {
		return nil, errors.New("store down")
	}
	r := NewReconciler("test", hub, UserNotifications("u1"), refresh)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, func() bool { return hub.SubscriberCount() == 1 })
	hub.Publish(notificationEvent(Inserted, "u1", "n1"))
	waitFor(t, func() bool { return r.Collection().Len() == 1 })

	cancel()
	<-done
}

func TestReconcilerPeriodicResync(t *testing.T) {
	hub := NewHub()
	calls := make(chan struct{}, 16)
	refresh := func(ctx context.Context) ([]models.Notification, error) {
		calls <- struct{}{}
		return nil, nil
	}
	r := NewReconciler("test", hub, UserNotifications("u1"), refresh)
	r.ResyncEvery = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	// Initial snapshot plus at least one timer-driven resync.
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("expected a resync refresh")
		}
	}
}
