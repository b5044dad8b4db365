package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// invitationColumns is the ordered list of columns selected in invitation queries.
// Must match the scan order in scanInvitation.
const invitationColumns = `seq, id, created_at, updated_at,
	from_user_id, to_user_id, date, status, responded_at`

// scanInvitation scans a sql.Row (or sql.Rows via its Scan method) into a domain.Invitation.
func scanInvitation(scanner interface{ Scan(dest ...any) error }) (*domain.Invitation, error) {
	var inv domain.Invitation

	var (
		createdAt   string
		updatedAt   string
		date        string
		status      string
		respondedAt sql.NullString
	)

	err := scanner.Scan(
		&inv.Seq,
		&inv.ID,
		&createdAt,
		&updatedAt,
		&inv.FromUserID,
		&inv.ToUserID,
		&date,
		&status,
		&respondedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	inv.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	inv.RespondedAt, err = parseNullableTime(respondedAt)
	if err != nil {
		return nil, err
	}

	inv.Date = domain.HolidayDate(date)
	inv.Status = domain.InvitationStatus(status)

	return &inv, nil
}

// CreateInvitation inserts a pending invitation and its outbox job in one
// transaction. inv.Seq is set from the assigned row ID.
// Returns store.ErrPendingExists when the pair already has a pending invitation.
func (s *Store) CreateInvitation(ctx context.Context, inv *domain.Invitation, job *domain.NotificationJob) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	low, high := domain.PairKey(inv.FromUserID, inv.ToUserID)

	var pending int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invitations
		WHERE pair_low = ? AND pair_high = ? AND status = 'pending'`,
		low, high).Scan(&pending)
	if err != nil {
		return fmt.Errorf("check pending: %w", err)
	}
	if pending > 0 {
		return store.ErrPendingExists
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO invitations (
			id, created_at, updated_at, from_user_id, to_user_id,
			pair_low, pair_high, date, status, responded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		formatTime(inv.CreatedAt),
		formatTime(inv.UpdatedAt),
		inv.FromUserID,
		inv.ToUserID,
		low,
		high,
		string(inv.Date),
		string(inv.Status),
		nullTimeString(inv.RespondedAt),
	)
	if err != nil {
		// The partial unique index catches a racing writer.
		if isUniqueViolation(err) {
			return store.ErrPendingExists
		}
		return fmt.Errorf("insert invitation: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("invitation seq: %w", err)
	}

	if job != nil {
		if err := insertNotification(ctx, tx, job); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return store.ErrPendingExists
		}
		return err
	}
	inv.Seq = seq
	return nil
}

// GetInvitation retrieves an invitation by ID.
// Returns store.ErrNotFound if the invitation does not exist.
func (s *Store) GetInvitation(ctx context.Context, id string) (*domain.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)

	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ResolveInvitation persists inv's terminal status and its outbox job in one
// transaction. The update only applies while the row is still pending.
// Returns store.ErrNotFound or store.ErrNotPending.
func (s *Store) ResolveInvitation(ctx context.Context, inv *domain.Invitation, job *domain.NotificationJob) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE invitations SET status = ?, responded_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(inv.Status),
		nullTimeString(inv.RespondedAt),
		formatTime(inv.UpdatedAt),
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations WHERE id = ?`, inv.ID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return store.ErrNotFound
		}
		return store.ErrNotPending
	}

	if job != nil {
		if err := insertNotification(ctx, tx, job); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListInvitationsBetween returns every invitation of the unordered pair, oldest first.
func (s *Store) ListInvitationsBetween(ctx context.Context, a, b string) ([]*domain.Invitation, error) {
	low, high := domain.PairKey(a, b)
	return s.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		WHERE pair_low = ? AND pair_high = ? ORDER BY seq ASC`, low, high)
}

// HasAcceptedInvitation reports whether any invitation of the pair was accepted.
func (s *Store) HasAcceptedInvitation(ctx context.Context, a, b string) (bool, error) {
	low, high := domain.PairKey(a, b)

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE pair_low = ? AND pair_high = ? AND status = 'accepted'
		)`, low, high).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListInvitationsFrom returns invitations sent by userID, newest first.
func (s *Store) ListInvitationsFrom(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return s.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		WHERE from_user_id = ? ORDER BY seq DESC`, userID)
}

// ListInvitationsTo returns invitations received by userID, newest first.
func (s *Store) ListInvitationsTo(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return s.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		WHERE to_user_id = ? ORDER BY seq DESC`, userID)
}

// ListAcceptedInvitations returns accepted invitations in either direction, newest first.
func (s *Store) ListAcceptedInvitations(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return s.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		WHERE (from_user_id = ? OR to_user_id = ?) AND status = 'accepted'
		ORDER BY seq DESC`, userID, userID)
}

// CountPendingReceived counts pending invitations addressed to userID.
func (s *Store) CountPendingReceived(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations WHERE to_user_id = ? AND status = 'pending'`,
		userID).Scan(&n)
	return n, err
}

func (s *Store) queryInvitations(ctx context.Context, query string, args ...any) ([]*domain.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}
