package providers

import (
	"github.com/samber/do/v2"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/config"
	"github.com/barterly/barterly-server/internal/engine"
	"github.com/barterly/barterly-server/internal/logger"
	"github.com/barterly/barterly-server/internal/service"
)

// ProvideSessionService provides the swipe session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, clk, log.Logger), nil
}

// ProvidePoolService provides the candidate pool builder.
func ProvidePoolService(i do.Injector) (*service.PoolService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPoolService(storeHandle.Store, clk, log.Logger), nil
}

// ProvideOfferService provides the trade offer pipeline.
func ProvideOfferService(i do.Injector) (*service.OfferService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOfferService(storeHandle.Store, sseHandle.Manager, clk, log.Logger), nil
}

// ProvideSwipeService provides the swipe recorder.
func ProvideSwipeService(i do.Injector) (*service.SwipeService, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	offers := do.MustInvoke[*service.OfferService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSwipeService(sessions, offers, log.Logger), nil
}

// ProvideItemService provides the item catalog service.
func ProvideItemService(i do.Injector) (*service.ItemService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewItemService(storeHandle.Store, searchHandle.ItemIndex, clk, log.Logger), nil
}

// ProvideNotificationService provides the notification inbox service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(storeHandle.Store, clk, log.Logger), nil
}

// ProvideEngineRegistry provides the per-user swipe engine registry.
func ProvideEngineRegistry(i do.Injector) (*engine.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	pools := do.MustInvoke[*service.PoolService](i)
	swipes := do.MustInvoke[*service.SwipeService](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return engine.NewRegistry(sessions, pools, swipes, clk, cfg.Engine.PoolLimit, log.Logger), nil
}
