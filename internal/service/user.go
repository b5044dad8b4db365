package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/id"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// UserService provisions local user records for authenticated identities.
type UserService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureUser returns the user for identity, creating it on first access.
// Later calls refresh email, name and picture when the provider reports new
// values. It also bumps the profile's last activity.
func (s *UserService) EnsureUser(ctx context.Context, identity auth.Identity) (*domain.User, error) {
	if strings.TrimSpace(identity.ExternalID) == "" {
		return nil, domainerrors.Unauthorized("identity has no subject")
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, internal(s.logger, err, "failed to generate user ID")
	}

	now := s.now()
	candidate := &domain.User{
		Record:     domain.Record{ID: userID},
		ExternalID: identity.ExternalID,
		Email:      domain.NormalizeEmail(identity.Email),
		Name:       strings.TrimSpace(identity.Name),
		ImageURL:   identity.Picture,
	}
	candidate.InitTimestamps(now)

	user, err := s.store.UpsertUser(ctx, candidate)
	if err != nil {
		return nil, internal(s.logger, err, "failed to provision user")
	}

	if user.ID == candidate.ID {
		s.logger.Info("user provisioned",
			slog.String("user_id", user.ID),
			slog.String("external_id", user.ExternalID))
	}

	if err := s.store.TouchLastActive(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record activity",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}

	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, internal(s.logger, err, "failed to load user")
	}
	return user, nil
}
