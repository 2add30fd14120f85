package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/raccoon129/xires-notify/internal/model"
)

// SQLiteStore implements the Cache interface using a local SQLite
// database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceNotifications overwrites the cached collection for userID in a
// single transaction, so readers never observe a half-replaced set.
func (s *SQLiteStore) ReplaceNotifications(
	ctx context.Context,
	userID string,
	ns []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM notifications WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("clearing cached notifications: %w", err)
	}

	for _, n := range ns {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications
				(user_id, id, kind, message, read, created_at, target, origin_id, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, n.ID, string(n.Kind), n.Message,
			boolToInt(n.Read), n.CreatedAt.UTC(), n.Target, n.OriginID,
			time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("caching notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing replace transaction: %w", err)
	}

	return nil
}

// Notifications returns the cached collection for userID, newest first.
func (s *SQLiteStore) Notifications(
	ctx context.Context,
	userID string,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, kind, message, read, created_at, target, origin_id
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cached notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead flips a single cached notification to read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	userID string,
	id string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE user_id = ? AND id = ?",
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("marking cached notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead flips every cached notification for userID
// to read.
func (s *SQLiteStore) MarkAllNotificationsRead(
	ctx context.Context,
	userID string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE user_id = ?", userID,
	)
	if err != nil {
		return fmt.Errorf("marking cached notifications as read: %w", err)
	}
	return nil
}

// ClearUser removes all cached notifications for userID.
func (s *SQLiteStore) ClearUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE user_id = ?", userID,
	)
	if err != nil {
		return fmt.Errorf("clearing cache for user %s: %w", userID, err)
	}
	return nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		kind      string
		read      int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &kind, &n.Message, &read, &createdAt, &n.Target, &n.OriginID,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Kind = model.ParseKind(kind)
	n.Read = read != 0
	n.CreatedAt = createdAt

	return n, nil
}

// boolToInt converts a bool to the 0/1 representation SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
