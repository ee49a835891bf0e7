package repositories

import (
	"context"
	"errors"
	"time"

	"taskboard-service/logging"
	"taskboard-service/models"

	"github.com/gocql/gocql"
	"github.com/sony/gobreaker"
)

type NotificationRepo struct {
	session *gocql.Session
	breaker *gobreaker.CircuitBreaker
}

// NewNotificationRepo connects to Cassandra, creating the keyspace and
// table if needed. The breaker guards every query; an open breaker
// surfaces as ErrStoreUnavailable.
func NewNotificationRepo(host string, breaker *gobreaker.CircuitBreaker) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS taskboard
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logging.Logger.Errorf("Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "taskboard"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Failed to connect to taskboard keyspace: %v", err)
		return nil, err
	}

	logging.Logger.Info("Connected to Cassandra taskboard keyspace.")
	return &NotificationRepo{session: session, breaker: breaker}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Cassandra session closed.")
}

// CreateTable creates the notifications table, clustered newest-first
// per user so List reads in delivery order without sorting.
func (nr *NotificationRepo) CreateTable() error {
	return nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			user_id TEXT,
			created_at TIMESTAMP,
			id UUID,
			type TEXT,
			title TEXT,
			message TEXT,
			data MAP<TEXT, TEXT>,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
}

// execute runs one store operation through the circuit breaker and
// maps breaker rejections to the store-unavailable error.
func (nr *NotificationRepo) execute(op func() error) error {
	_, err := nr.breaker.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.ErrStoreUnavailable
	}
	return err
}

func (nr *NotificationRepo) Create(ctx context.Context, n models.Notification) error {
	id, err := gocql.ParseUUID(n.ID)
	if err != nil {
		return err
	}
	return nr.execute(func() error {
		return nr.session.Query(
			`INSERT INTO notifications (user_id, created_at, id, type, title, message, data, is_read)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			n.UserID, n.CreatedAt, id, n.Type, n.Title, n.Message, n.Data, n.IsRead,
		).WithContext(ctx).Exec()
	})
}

// ListByUser returns up to limit notifications, newest first.
func (nr *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := nr.execute(func() error {
		iter := nr.session.Query(
			`SELECT id, user_id, type, title, message, data, created_at, is_read
			 FROM notifications WHERE user_id = ? LIMIT ?`,
			userID, limit,
		).WithContext(ctx).Iter()

		var n models.Notification
		var id gocql.UUID
		for iter.Scan(&id, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.CreatedAt, &n.IsRead) {
			n.ID = id.String()
			notifications = append(notifications, n)
			n = models.Notification{}
		}
		return iter.Close()
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// ListUnread returns the user's currently unread notifications.
func (nr *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := nr.execute(func() error {
		iter := nr.session.Query(
			`SELECT id, user_id, type, title, message, data, created_at, is_read
			 FROM notifications WHERE user_id = ? AND is_read = false ALLOW FILTERING`,
			userID,
		).WithContext(ctx).Iter()

		var n models.Notification
		var id gocql.UUID
		for iter.Scan(&id, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.CreatedAt, &n.IsRead) {
			n.ID = id.String()
			notifications = append(notifications, n)
			n = models.Notification{}
		}
		return iter.Close()
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (nr *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string, createdAt time.Time) error {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return err
	}
	return nr.execute(func() error {
		return nr.session.Query(
			`UPDATE notifications SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`,
			userID, createdAt, id,
		).WithContext(ctx).Exec()
	})
}

func (nr *NotificationRepo) Delete(ctx context.Context, userID, notificationID string, createdAt time.Time) error {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return err
	}
	return nr.execute(func() error {
		return nr.session.Query(
			`DELETE FROM notifications WHERE user_id = ? AND created_at = ? AND id = ?`,
			userID, createdAt, id,
		).WithContext(ctx).Exec()
	})
}

// ListReadBefore returns read notifications older than the cutoff,
// across all users. Used by the retention sweep.
func (nr *NotificationRepo) ListReadBefore(ctx context.Context, cutoff time.Time) ([]models.Notification, error) {
	var notifications []models.Notification
	err := nr.execute(func() error {
		iter := nr.session.Query(
			`SELECT id, user_id, created_at FROM notifications
			 WHERE is_read = true AND created_at < ? ALLOW FILTERING`,
			cutoff,
		).WithContext(ctx).Iter()

		var n models.Notification
		var id gocql.UUID
		for iter.Scan(&id, &n.UserID, &n.CreatedAt) {
			n.ID = id.String()
			notifications = append(notifications, n)
			n = models.Notification{}
		}
		return iter.Close()
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
