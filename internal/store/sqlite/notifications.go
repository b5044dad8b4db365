package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// notificationColumns is the ordered list of columns selected in outbox queries.
// Must match the scan order in scanNotification.
const notificationColumns = `id, created_at, updated_at, kind,
	recipient_user_id, recipient_email, locale, payload,
	status, attempts, last_error, next_attempt_at, sent_at`

// scanNotification scans a sql.Row (or sql.Rows via its Scan method) into a domain.NotificationJob.
func scanNotification(scanner interface{ Scan(dest ...any) error }) (*domain.NotificationJob, error) {
	var j domain.NotificationJob

	var (
		createdAt     string
		updatedAt     string
		kind          string
		locale        string
		payload       string
		status        string
		nextAttemptAt string
		sentAt        sql.NullString
	)

	err := scanner.Scan(
		&j.ID,
		&createdAt,
		&updatedAt,
		&kind,
		&j.RecipientUserID,
		&j.RecipientEmail,
		&locale,
		&payload,
		&status,
		&j.Attempts,
		&j.LastError,
		&nextAttemptAt,
		&sentAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	j.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	j.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	j.NextAttemptAt, err = parseTime(nextAttemptAt)
	if err != nil {
		return nil, err
	}
	j.SentAt, err = parseNullableTime(sentAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payload), &j.Payload); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	j.Kind = domain.NotificationKind(kind)
	j.Locale = domain.Locale(locale)
	j.Status = domain.NotificationStatus(status)

	return &j, nil
}

// insertNotification writes an outbox job inside the caller's transaction.
func insertNotification(ctx context.Context, tx *sql.Tx, job *domain.NotificationJob) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notification_jobs (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
		string(job.Kind),
		job.RecipientUserID,
		job.RecipientEmail,
		string(job.Locale),
		string(payload),
		string(job.Status),
		job.Attempts,
		job.LastError,
		formatTime(job.NextAttemptAt),
		nullTimeString(job.SentAt),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ClaimNotification atomically moves the oldest due pending job to running,
// counting the attempt. Returns store.ErrNotFound when nothing is due.
func (s *Store) ClaimNotification(ctx context.Context, now time.Time) (*domain.NotificationJob, error) {
	ts := formatTime(now)
	row := s.db.QueryRowContext(ctx, `
		UPDATE notification_jobs
		SET status = 'running', attempts = attempts + 1, updated_at = ?
		WHERE id = (
			SELECT id FROM notification_jobs
			WHERE status = 'pending' AND next_attempt_at <= ?
			ORDER BY next_attempt_at ASC, created_at ASC
			LIMIT 1
		)
		RETURNING `+notificationColumns,
		ts, ts)

	job, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateNotification persists the mutable delivery fields of job.
// Returns store.ErrNotFound if the job does not exist.
func (s *Store) UpdateNotification(ctx context.Context, job *domain.NotificationJob) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notification_jobs SET
			updated_at = ?,
			status = ?,
			attempts = ?,
			last_error = ?,
			next_attempt_at = ?,
			sent_at = ?
		WHERE id = ?`,
		formatTime(job.UpdatedAt),
		string(job.Status),
		job.Attempts,
		job.LastError,
		formatTime(job.NextAttemptAt),
		nullTimeString(job.SentAt),
		job.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ResetRunningNotifications returns jobs left running by a crash to pending.
func (s *Store) ResetRunningNotifications(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notification_jobs SET status = 'pending' WHERE status = 'running'`)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListNotificationsFor returns the outbox jobs addressed to userID, oldest first.
func (s *Store) ListNotificationsFor(ctx context.Context, userID string) ([]*domain.NotificationJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notification_jobs
		WHERE recipient_user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.NotificationJob
	for rows.Next() {
		job, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CountNotificationsByStatus returns the outbox size per status.
func (s *Store) CountNotificationsByStatus(ctx context.Context) (map[domain.NotificationStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM notification_jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.NotificationStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.NotificationStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
