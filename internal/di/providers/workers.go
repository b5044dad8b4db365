package providers

import (
	"github.com/samber/do/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/config"
	"github.com/nesvesk-vienas/nesvesk-server/internal/logger"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/notify"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

// ProvideMailer provides Resend delivery when an API key is configured and a
// logging mailer otherwise.
func ProvideMailer(i do.Injector) (notify.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.EmailEnabled() {
		log.Warn("RESEND_API_KEY not set, notification emails will only be logged")
		return notify.NewLogMailer(log.Component("mailer")), nil
	}

	return notify.NewResendClient(notify.ResendConfig{
		APIKey:  cfg.Email.ResendAPIKey,
		BaseURL: cfg.Email.ResendBaseURL,
		From:    cfg.Email.From,
		Timeout: cfg.Email.Timeout,
	}), nil
}

// ProvideNotificationDispatcher provides and starts the outbox workers.
// The dispatcher implements do.Shutdownable.
func ProvideNotificationDispatcher(i do.Injector) (*service.NotificationDispatcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mailer := do.MustInvoke[notify.Mailer](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	d := service.NewNotificationDispatcher(
		storeHandle.Store,
		notify.NewRenderer(cfg.Email.SiteURL),
		mailer,
		m,
		service.DispatcherConfig{
			Workers:      cfg.Notify.Workers,
			PollInterval: cfg.Notify.PollInterval,
			MaxAttempts:  cfg.Notify.MaxAttempts,
			BaseBackoff:  cfg.Notify.BaseBackoff,
			SendTimeout:  cfg.Email.Timeout,
		},
		log.Component("outbox"),
	)
	d.Start()

	log.Info("Notification dispatcher started", "workers", cfg.Notify.Workers)

	return d, nil
}
