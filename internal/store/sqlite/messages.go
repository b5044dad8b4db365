package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// messageColumns is the ordered list of columns selected in message queries.
// Must match the scan order in scanMessage.
const messageColumns = `seq, id, created_at, sender_id, receiver_id,
	content, event_card, is_read, read_at`

// scanMessage scans a sql.Row (or sql.Rows via its Scan method) into a domain.Message.
func scanMessage(scanner interface{ Scan(dest ...any) error }) (*domain.Message, error) {
	var m domain.Message

	var (
		createdAt string
		eventCard sql.NullString
		isRead    int
		readAt    sql.NullString
	)

	err := scanner.Scan(
		&m.Seq,
		&m.ID,
		&createdAt,
		&m.SenderID,
		&m.ReceiverID,
		&m.Content,
		&eventCard,
		&isRead,
		&readAt,
	)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.ReadAt, err = parseNullableTime(readAt)
	if err != nil {
		return nil, err
	}
	m.Read = isRead != 0

	if eventCard.Valid {
		var card domain.EventCard
		if err := json.Unmarshal([]byte(eventCard.String), &card); err != nil {
			return nil, fmt.Errorf("event_card: %w", err)
		}
		m.EventCard = &card
	}

	return &m, nil
}

// CreateMessage inserts a message and its outbox job in one transaction.
// msg.Seq is set from the assigned row ID.
func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message, job *domain.NotificationJob) error {
	var card sql.NullString
	if msg.EventCard != nil {
		b, err := json.Marshal(msg.EventCard)
		if err != nil {
			return fmt.Errorf("marshal event card: %w", err)
		}
		card = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	low, high := domain.PairKey(msg.SenderID, msg.ReceiverID)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO messages (
			id, created_at, sender_id, receiver_id, pair_low, pair_high,
			content, event_card, is_read, read_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		formatTime(msg.CreatedAt),
		msg.SenderID,
		msg.ReceiverID,
		low,
		high,
		msg.Content,
		card,
		boolToInt(msg.Read),
		nullTimeString(msg.ReadAt),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("message seq: %w", err)
	}

	if job != nil {
		if err := insertNotification(ctx, tx, job); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	msg.Seq = seq
	return nil
}

// ListConversation returns all messages of the unordered pair in store order.
func (s *Store) ListConversation(ctx context.Context, a, b string) ([]*domain.Message, error) {
	low, high := domain.PairKey(a, b)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		WHERE pair_low = ? AND pair_high = ? ORDER BY seq ASC`, low, high)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkConversationRead flags every unread message from otherID to readerID
// as read and returns how many changed. Messages readerID sent are untouched.
func (s *Store) MarkConversationRead(ctx context.Context, readerID, otherID string, at time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1, read_at = ?
		WHERE receiver_id = ? AND sender_id = ? AND is_read = 0`,
		formatTime(at), readerID, otherID)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// MarkMessagesRead flags the listed messages as read, skipping any that
// were not addressed to readerID. Returns how many changed.
func (s *Store) MarkMessagesRead(ctx context.Context, ids []string, readerID string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inPlaceholders(ids)
	args = append([]any{formatTime(at), readerID}, args...)

	result, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1, read_at = ?
		WHERE receiver_id = ? AND is_read = 0 AND id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CountUnread counts unread messages addressed to userID.
func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0`,
		userID).Scan(&n)
	return n, err
}

// LatestEventCard returns the newest event card exchanged by the pair, or nil.
func (s *Store) LatestEventCard(ctx context.Context, a, b string) (*domain.EventCard, error) {
	low, high := domain.PairKey(a, b)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		WHERE pair_low = ? AND pair_high = ? AND event_card IS NOT NULL
		ORDER BY seq DESC LIMIT 1`, low, high)

	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.EventCard, nil
}

// withExtra appends extra scan targets after the message columns.
type withExtra struct {
	rows  *sql.Rows
	extra []any
}

func (w withExtra) Scan(dest ...any) error {
	return w.rows.Scan(append(dest, w.extra...)...)
}

// ListConversationHeads returns one head per conversation userID takes part
// in, newest conversation first. Unread counts only messages userID received.
func (s *Store) ListConversationHeads(ctx context.Context, userID string) ([]*domain.ConversationHead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`, h.unread FROM messages
		JOIN (
			SELECT MAX(seq) AS last_seq,
				SUM(CASE WHEN receiver_id = ? AND is_read = 0 THEN 1 ELSE 0 END) AS unread
			FROM messages
			WHERE pair_low = ? OR pair_high = ?
			GROUP BY pair_low, pair_high
		) h ON messages.seq = h.last_seq
		ORDER BY messages.seq DESC`,
		userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heads []*domain.ConversationHead
	for rows.Next() {
		var unread int
		m, err := scanMessage(withExtra{rows: rows, extra: []any{&unread}})
		if err != nil {
			return nil, err
		}
		heads = append(heads, &domain.ConversationHead{Last: m, Unread: unread})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return heads, nil
}
