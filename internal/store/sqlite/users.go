package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, external_id, email, name, image_url`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.ExternalID,
		&u.Email,
		&u.Name,
		&u.ImageURL,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// UpsertUser creates the user on first sight of its external ID, otherwise
// refreshes the identity claims. An empty email never overwrites a known one.
// Returns the stored row, whose ID is the original one on conflict.
func (s *Store) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, external_id, email, name, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END,
			name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE users.name END,
			image_url = CASE WHEN excluded.image_url <> '' THEN excluded.image_url ELSE users.image_url END,
			updated_at = excluded.updated_at
		RETURNING `+userColumns,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.ExternalID,
		user.Email,
		user.Name,
		user.ImageURL,
	)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUsersByIDs retrieves users for multiple IDs.
// Missing users are omitted from the map.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	placeholders, args := inPlaceholders(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
