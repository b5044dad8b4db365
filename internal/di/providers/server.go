package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/api"
	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/config"
	"github.com/nesvesk-vienas/nesvesk-server/internal/logger"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	return errors.Join(err, h.api.Shutdown())
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		User:       do.MustInvoke[*service.UserService](i),
		Profile:    do.MustInvoke[*service.ProfileService](i),
		Invitation: do.MustInvoke[*service.InvitationService](i),
		Match:      do.MustInvoke[*service.MatchService](i),
		Message:    do.MustInvoke[*service.MessageService](i),
		Badge:      do.MustInvoke[*service.BadgeService](i),
	}

	handler := api.NewServer(
		storeHandle.Store,
		services,
		tokens,
		sseHandle.Manager,
		indexHandle.SearchIndex,
		m,
		api.Config{
			AllowedOrigins:    cfg.Server.AllowedOrigins,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			RequestBurst:      cfg.RateLimit.RequestBurst,
		},
		log.Component("api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
