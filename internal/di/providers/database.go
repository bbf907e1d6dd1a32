package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/barterly/barterly-server/internal/config"
	"github.com/barterly/barterly-server/internal/logger"
	"github.com/barterly/barterly-server/internal/sse"
	"github.com/barterly/barterly-server/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store with the search index wired in.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)

	dbPath := cfg.StorePath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	// Item writes fan out to the search index from here on.
	db.SetSearchIndexer(searchHandle.ItemIndex)

	log.Info("Document store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
