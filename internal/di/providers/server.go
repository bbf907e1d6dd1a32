package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/barterly/barterly-server/internal/api"
	"github.com/barterly/barterly-server/internal/config"
	"github.com/barterly/barterly-server/internal/engine"
	"github.com/barterly/barterly-server/internal/logger"
	"github.com/barterly/barterly-server/internal/ratelimit"
	"github.com/barterly/barterly-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	items := do.MustInvoke[*service.ItemService](i)
	offers := do.MustInvoke[*service.OfferService](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	engines := do.MustInvoke[*engine.Registry](i)

	swipeLimiter := ratelimit.New(cfg.Engine.SwipeRatePerSecond, cfg.Engine.SwipeBurst)

	handler := api.NewServer(storeHandle.Store, items, offers, notifications, engines, sseHandle.Manager, swipeLimiter, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
