package sse

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterly/barterly-server/internal/domain"
)

func newTestManager() *Manager {
	return NewManager(slog.New(slog.DiscardHandler))
}

func TestConnect_AndDisconnect(t *testing.T) {
	m := newTestManager()

	client, err := m.Connect("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", client.UserID)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Disconnecting twice is a no-op
	m.Disconnect(client.ID)
}

func TestBroadcast_FiltersByUser(t *testing.T) {
	m := newTestManager()

	recipient, err := m.Connect("user-1")
	require.NoError(t, err)
	other, err := m.Connect("user-2")
	require.NoError(t, err)

	notification := &domain.Notification{
		ID:     "notif-1",
		UserID: "user-1",
		Type:   domain.NotificationTradeOffer,
	}
	m.broadcast(NewNotificationEvent(notification))

	select {
	case event := <-recipient.EventChan:
		assert.Equal(t, EventNotificationCreated, event.Type)
	default:
		t.Fatal("recipient should have received the event")
	}

	select {
	case <-other.EventChan:
		t.Fatal("other user should not have received the event")
	default:
	}
}

func TestBroadcast_EmptyUserIDReachesAll(t *testing.T) {
	m := newTestManager()

	a, err := m.Connect("user-1")
	require.NoError(t, err)
	b, err := m.Connect("user-2")
	require.NoError(t, err)

	m.broadcast(NewHeartbeatEvent())

	for _, client := range []*Client{a, b} {
		select {
		case event := <-client.EventChan:
			assert.Equal(t, EventHeartbeat, event.Type)
		default:
			t.Fatal("all clients should receive broadcast events")
		}
	}
}

func TestEmit_AfterShutdownIsDropped(t *testing.T) {
	m := newTestManager()

	m.shutdownMu.Lock()
	m.shutdown = true
	m.shutdownMu.Unlock()

	// Must not panic or block
	m.Emit(NewHeartbeatEvent())
}
