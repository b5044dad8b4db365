package service

import (
	"context"
	"log/slog"

	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// BadgeCounts feeds the navigation badge.
type BadgeCounts struct {
	PendingInvitations int `json:"pending_invitations"`
	UnreadMessages     int `json:"unread_messages"`
}

// Total is the number shown on the badge.
func (b BadgeCounts) Total() int {
	return b.PendingInvitations + b.UnreadMessages
}

// BadgeService computes badge counts.
type BadgeService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBadgeService creates a new badge service.
func NewBadgeService(store store.Store, logger *slog.Logger) *BadgeService {
	return &BadgeService{store: store, logger: logger}
}

// GetBadgeCounts returns pending invitations and unread messages for userID.
func (s *BadgeService) GetBadgeCounts(ctx context.Context, userID string) (BadgeCounts, error) {
	pending, err := s.store.CountPendingReceived(ctx, userID)
	if err != nil {
		return BadgeCounts{}, internal(s.logger, err, "failed to count invitations")
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return BadgeCounts{}, internal(s.logger, err, "failed to count unread messages")
	}
	return BadgeCounts{PendingInvitations: pending, UnreadMessages: unread}, nil
}
