package service

import (
	"context"
	"log/slog"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// MatchService projects accepted invitations into matches.
// Nothing here is cached; every call reads the invitations afresh.
type MatchService struct {
	store  store.Store
	logger *slog.Logger
}

// NewMatchService creates a new match service.
func NewMatchService(store store.Store, logger *slog.Logger) *MatchService {
	return &MatchService{store: store, logger: logger}
}

// AreMatched reports whether any invitation between a and b was ever
// accepted. A later decline or pending invitation does not undo a match.
func (s *MatchService) AreMatched(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	matched, err := s.store.HasAcceptedInvitation(ctx, a, b)
	if err != nil {
		return false, internal(s.logger, err, "failed to check match")
	}
	return matched, nil
}

// ListMyConnections splits userID's accepted invitations into the ones the
// user hosts and the ones they attend.
func (s *MatchService) ListMyConnections(ctx context.Context, userID string) (*domain.Connections, error) {
	invs, err := s.store.ListAcceptedInvitations(ctx, userID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load matches")
	}

	ids := make([]string, 0, len(invs)+1)
	ids = append(ids, userID)
	for _, inv := range invs {
		ids = append(ids, inv.Counterpart(userID))
	}
	profiles, err := s.store.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load profiles")
	}

	cards := make(map[string]*domain.EventCard)
	conns := &domain.Connections{
		Hosting:   []domain.Connection{},
		Attending: []domain.Connection{},
	}

	for _, inv := range invs {
		other := inv.Counterpart(userID)

		card, seen := cards[other]
		if !seen {
			card, err = s.store.LatestEventCard(ctx, userID, other)
			if err != nil {
				return nil, internal(s.logger, err, "failed to load event card")
			}
			cards[other] = card
		}

		hostID := domain.HostOf(inv, profiles[inv.FromUserID], profiles[inv.ToUserID])
		guestID := inv.FromUserID
		if hostID == inv.FromUserID {
			guestID = inv.ToUserID
		}

		conn := domain.Connection{
			InvitationID: inv.ID,
			Date:         inv.Date,
			HostID:       hostID,
			GuestID:      guestID,
			LatestEvent:  card,
		}
		if p, ok := profiles[other]; ok {
			summary := p.Summary()
			conn.Counterpart = &summary
		}

		if hostID == userID {
			conns.Hosting = append(conns.Hosting, conn)
		} else {
			conns.Attending = append(conns.Attending, conn)
		}
	}

	return conns, nil
}
