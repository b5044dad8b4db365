package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/config"
	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/logger"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/ratelimit"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideEffects wires live updates, the outbox and metrics into mutations.
func ProvideEffects(i do.Injector) (*service.Effects, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	dispatcher := do.MustInvoke[*service.NotificationDispatcher](i)

	return &service.Effects{
		Events:        sseHandle.Manager,
		Outbox:        dispatcher,
		Metrics:       m,
		DefaultLocale: domain.Locale(cfg.Email.DefaultLocale),
	}, nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Component("users")), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, indexHandle.SearchIndex, v, log.Component("profiles")), nil
}

// InvitationLimiterHandle wraps the per-user invitation throttle.
type InvitationLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *InvitationLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideInvitationLimiter provides the per-user invitation throttle.
func ProvideInvitationLimiter(i do.Injector) (*InvitationLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.NewPerInterval(cfg.RateLimit.InvitationsPerMinute, time.Minute, cfg.RateLimit.InvitationBurst)
	return &InvitationLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideInvitationService provides the invitation service.
func ProvideInvitationService(i do.Injector) (*service.InvitationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*InvitationLimiterHandle](i)
	effects := do.MustInvoke[*service.Effects](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInvitationService(storeHandle.Store, limiter.KeyedRateLimiter, effects, v, log.Component("invitations")), nil
}

// ProvideMatchService provides the match projection.
func ProvideMatchService(i do.Injector) (*service.MatchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMatchService(storeHandle.Store, log.Component("matches")), nil
}

// ProvideMessageService provides the messaging service.
func ProvideMessageService(i do.Injector) (*service.MessageService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	matches := do.MustInvoke[*service.MatchService](i)
	effects := do.MustInvoke[*service.Effects](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMessageService(storeHandle.Store, matches, effects, v, log.Component("messages")), nil
}

// ProvideBadgeService provides the badge service.
func ProvideBadgeService(i do.Injector) (*service.BadgeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBadgeService(storeHandle.Store, log.Component("badges")), nil
}
