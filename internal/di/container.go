// Package di provides dependency injection configuration for the Nešvęsk Vienas server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/config"
	"github.com/nesvesk-vienas/nesvesk-server/internal/di/providers"
	"github.com/nesvesk-vienas/nesvesk-server/internal/logger"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/notify"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Persistence and live updates
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideMetrics)

	// Notification outbox
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvideNotificationDispatcher)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideEffects)
	do.Provide(injector, providers.ProvideInvitationLimiter)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideInvitationService)
	do.Provide(injector, providers.ProvideMatchService)
	do.Provide(injector, providers.ProvideMessageService)
	do.Provide(injector, providers.ProvideBadgeService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	steps := []func() error{
		invoke[providers.AuthKey](injector),
		invoke[*auth.TokenService](injector),
		invoke[*providers.SSEManagerHandle](injector),
		invoke[*providers.StoreHandle](injector),
		invoke[*providers.SearchIndexHandle](injector),
		invoke[*metrics.Metrics](injector),
		invoke[notify.Mailer](injector),
		invoke[*service.NotificationDispatcher](injector),
		invoke[*validation.Validator](injector),
		invoke[*service.Effects](injector),
		invoke[*service.UserService](injector),
		invoke[*service.ProfileService](injector),
		invoke[*service.InvitationService](injector),
		invoke[*service.MatchService](injector),
		invoke[*service.MessageService](injector),
		invoke[*service.BadgeService](injector),
		invoke[*providers.HTTPServerHandle](injector),
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

func invoke[T any](injector *do.RootScope) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
