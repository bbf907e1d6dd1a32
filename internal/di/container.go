// Package di provides dependency injection configuration for the Barterly server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/barterly/barterly-server/internal/config"
	"github.com/barterly/barterly-server/internal/di/providers"
	"github.com/barterly/barterly-server/internal/engine"
	"github.com/barterly/barterly-server/internal/logger"
	"github.com/barterly/barterly-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideClock)

	// Data layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvidePoolService)
	do.Provide(injector, providers.ProvideOfferService)
	do.Provide(injector, providers.ProvideSwipeService)
	do.Provide(injector, providers.ProvideItemService)
	do.Provide(injector, providers.ProvideNotificationService)

	// Engine
	do.Provide(injector, providers.ProvideEngineRegistry)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.PoolService](injector)
	_ = do.MustInvoke[*service.OfferService](injector)
	_ = do.MustInvoke[*service.SwipeService](injector)
	_ = do.MustInvoke[*service.ItemService](injector)
	_ = do.MustInvoke[*service.NotificationService](injector)
	_ = do.MustInvoke[*engine.Registry](injector)

	// Server last so every dependency is live before it accepts traffic
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
