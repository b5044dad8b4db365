package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/id"
	"github.com/nesvesk-vienas/nesvesk-server/internal/ratelimit"
	"github.com/nesvesk-vienas/nesvesk-server/internal/sse"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

// InvitationService runs the invitation state machine.
type InvitationService struct {
	store     store.Store
	limiter   *ratelimit.KeyedRateLimiter // nil disables throttling
	effects   *Effects
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewInvitationService creates a new invitation service.
func NewInvitationService(
	store store.Store,
	limiter *ratelimit.KeyedRateLimiter,
	effects *Effects,
	validator *validation.Validator,
	logger *slog.Logger,
) *InvitationService {
	return &InvitationService{
		store:     store,
		limiter:   limiter,
		effects:   effects,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// SendInvitationRequest is the input of Send.
type SendInvitationRequest struct {
	ToUserID string             `json:"to_user_id" validate:"required"`
	Date     domain.HolidayDate `json:"date" validate:"required,holidaydate"`
}

// RespondRequest is the input of Respond.
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// Send creates a pending invitation from fromUserID and enqueues the
// invitationReceived email for the recipient in the same transaction.
func (s *InvitationService) Send(ctx context.Context, fromUserID string, req SendInvitationRequest) (*domain.Invitation, error) {
	switch {
	case strings.TrimSpace(req.ToUserID) == "":
		return nil, domainerrors.InvalidTarget("recipient is required")
	case fromUserID == req.ToUserID:
		return nil, domainerrors.InvalidTarget("you cannot invite yourself")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.limiter != nil && !s.limiter.Allow(fromUserID) {
		s.logger.Warn("invitation rate limited", slog.String("user_id", fromUserID))
		return nil, domainerrors.RateLimited("too many invitations, try again later")
	}

	recipient, err := loadParty(ctx, s.store, req.ToUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidTarget("recipient does not exist")
		}
		return nil, internal(s.logger, err, "failed to load recipient")
	}
	if recipient.profile == nil || !recipient.profile.Visible {
		return nil, domainerrors.InvalidTarget("recipient has no public profile")
	}

	sender, err := loadParty(ctx, s.store, fromUserID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load sender")
	}

	invID, err := id.Generate(id.PrefixInvitation)
	if err != nil {
		return nil, internal(s.logger, err, "failed to generate invitation ID")
	}

	now := s.now()
	inv := &domain.Invitation{
		Record:     domain.Record{ID: invID},
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		Date:       req.Date,
		Status:     domain.InvitationPending,
	}
	inv.InitTimestamps(now)

	job, err := s.effects.newNotificationJob(domain.NotifyInvitationReceived, recipient, sender, inv.Date, now)
	if err != nil {
		return nil, internal(s.logger, err, "failed to build notification")
	}

	if err := s.store.CreateInvitation(ctx, inv, job); err != nil {
		if errors.Is(err, store.ErrPendingExists) {
			return nil, domainerrors.DuplicatePending("an invitation between you is already pending")
		}
		return nil, internal(s.logger, err, "failed to create invitation")
	}

	s.logger.Info("invitation sent",
		slog.String("invitation_id", inv.ID),
		slog.String("from_user_id", inv.FromUserID),
		slog.String("to_user_id", inv.ToUserID),
		slog.String("date", string(inv.Date)),
		slog.Bool("email_queued", job != nil))

	s.effects.metrics().InvitationSent()
	if job != nil {
		s.effects.wake()
	}
	s.effects.emit(sse.NewInvitationReceivedEvent(inv, sender.displayName()))
	s.effects.emitBadges(ctx, s.store, inv.ToUserID)

	return inv, nil
}

// Respond accepts or declines a pending invitation. Only the recipient may
// respond, and only once.
func (s *InvitationService) Respond(ctx context.Context, invitationID, callerID string, accept bool) (*domain.Invitation, error) {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("invitation not found")
		}
		return nil, internal(s.logger, err, "failed to load invitation")
	}

	if inv.ToUserID != callerID {
		return nil, domainerrors.NotAuthorized("only the recipient can respond to an invitation")
	}
	if !inv.IsPending() {
		return nil, domainerrors.AlreadyResolved("invitation has already been answered")
	}

	sender, err := loadParty(ctx, s.store, inv.FromUserID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load sender")
	}
	recipient, err := loadParty(ctx, s.store, inv.ToUserID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load recipient")
	}

	now := s.now()
	inv.Resolve(accept, now)

	kind := domain.NotifyInvitationDeclined
	if accept {
		kind = domain.NotifyInvitationAccepted
	}
	job, err := s.effects.newNotificationJob(kind, sender, recipient, inv.Date, now)
	if err != nil {
		return nil, internal(s.logger, err, "failed to build notification")
	}

	if err := s.store.ResolveInvitation(ctx, inv, job); err != nil {
		switch {
		case errors.Is(err, store.ErrNotPending):
			return nil, domainerrors.AlreadyResolved("invitation has already been answered")
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("invitation not found")
		default:
			return nil, internal(s.logger, err, "failed to resolve invitation")
		}
	}

	s.logger.Info("invitation resolved",
		slog.String("invitation_id", inv.ID),
		slog.String("status", string(inv.Status)),
		slog.Bool("email_queued", job != nil))

	s.effects.metrics().InvitationResolved(string(inv.Status))
	if job != nil {
		s.effects.wake()
	}
	s.effects.emit(sse.NewInvitationResolvedEvent(inv, recipient.displayName()))
	s.effects.emitBadges(ctx, s.store, inv.ToUserID)

	return inv, nil
}

// GetConnectionStatus reports how viewerID relates to otherID.
func (s *InvitationService) GetConnectionStatus(ctx context.Context, viewerID, otherID string) (domain.ConnectionInfo, error) {
	if viewerID == otherID {
		return domain.ConnectionInfo{Status: domain.ConnectionSelf}, nil
	}

	invs, err := s.store.ListInvitationsBetween(ctx, viewerID, otherID)
	if err != nil {
		return domain.ConnectionInfo{}, internal(s.logger, err, "failed to load invitations")
	}
	return connectionInfo(viewerID, otherID, invs), nil
}

// GetPendingCount counts invitations waiting for userID's answer.
func (s *InvitationService) GetPendingCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountPendingReceived(ctx, userID)
	if err != nil {
		return 0, internal(s.logger, err, "failed to count invitations")
	}
	return n, nil
}

// GetMyInvitations lists userID's sent and received invitations, newest
// first, joined with the counterpart's profile summary.
func (s *InvitationService) GetMyInvitations(ctx context.Context, userID string) (*domain.MyInvitations, error) {
	sent, err := s.store.ListInvitationsFrom(ctx, userID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load sent invitations")
	}
	received, err := s.store.ListInvitationsTo(ctx, userID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load received invitations")
	}

	ids := make([]string, 0, len(sent)+len(received))
	for _, inv := range sent {
		ids = append(ids, inv.ToUserID)
	}
	for _, inv := range received {
		ids = append(ids, inv.FromUserID)
	}
	profiles, err := s.store.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load profiles")
	}

	view := func(invs []*domain.Invitation) []domain.InvitationView {
		out := make([]domain.InvitationView, 0, len(invs))
		for _, inv := range invs {
			v := domain.InvitationView{Invitation: *inv}
			if p, ok := profiles[inv.Counterpart(userID)]; ok {
				summary := p.Summary()
				v.Counterpart = &summary
			}
			out = append(out, v)
		}
		return out
	}

	return &domain.MyInvitations{Sent: view(sent), Received: view(received)}, nil
}

// connectionInfo combines the most recent invitation's status with the
// sticky matched flag.
func connectionInfo(viewerID, otherID string, invs []*domain.Invitation) domain.ConnectionInfo {
	latest := domain.LatestInvitation(invs)
	info := domain.ConnectionInfo{Status: domain.DeriveConnectionStatus(viewerID, otherID, latest)}
	if latest != nil {
		info.InvitationID = latest.ID
		info.Date = latest.Date
	}
	for _, inv := range invs {
		if inv.Status == domain.InvitationAccepted {
			info.Matched = true
			break
		}
	}
	return info
}
