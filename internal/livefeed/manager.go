// Package livefeed pushes each connected user's report state over websockets.
// The hub keeps one reports.Session per user with at least one connection and
// broadcasts a fresh frame to that user's connections whenever the session changes.
package livefeed

import (
	"context"

	"grievancedesk/backend/internal/metrics"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/reports"

	"github.com/rs/zerolog/log"
)

type feed struct {
	session *reports.Session
	cancel  context.CancelFunc
}

// ManagerService is the hub. All maps are owned by the Run goroutine.
type ManagerService struct {
	Clients map[string]map[Client]struct{}

	RegisterCh   chan Client
	UnregisterCh chan Client

	deps     reports.Deps
	metrics  *metrics.Recorder
	feeds    map[string]*feed
	updateCh chan string
	done     chan struct{}
}

func NewManagerService(deps reports.Deps) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		deps:         deps,
		metrics:      deps.Metrics,
		feeds:        make(map[string]*feed),
		updateCh:     make(chan string),
		done:         make(chan struct{}),
	}
}

// Register hands c to the hub. It returns false once the hub has stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes c from the hub. It does not block after the hub has stopped.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Done is closed when Run returns.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

// Run processes registrations and session updates until ctx is cancelled,
// then closes every client and session.
func (m *ManagerService) Run(ctx context.Context) {
	log.Info().Msg("livefeed hub started")
	defer m.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-m.RegisterCh:
			m.register(ctx, client)

		case client := <-m.UnregisterCh:
			m.unregister(client)

		case userID := <-m.updateCh:
			m.broadcast(userID)
		}
	}
}

func (m *ManagerService) register(ctx context.Context, c Client) {
	userID := c.GetUserID()
	clients, ok := m.Clients[userID]
	if !ok {
		clients = make(map[Client]struct{})
		m.Clients[userID] = clients
	}
	clients[c] = struct{}{}
	m.metrics.IncActiveConnections()
	c.Run()

	if f, ok := m.feeds[userID]; ok {
		m.send(c, NewFrame(f.session.Snapshot()))
		return
	}
	m.startFeed(ctx, userID)
	log.Debug().Str("user_id", userID).Int("connections", len(clients)).Msg("client registered")
}

func (m *ManagerService) unregister(c Client) {
	userID := c.GetUserID()
	clients, ok := m.Clients[userID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	m.drop(c)
}

// drop removes c and stops the user's feed when it was the last connection.
func (m *ManagerService) drop(c Client) {
	userID := c.GetUserID()
	clients := m.Clients[userID]
	delete(clients, c)
	c.Close()
	m.metrics.DecActiveConnections()

	if len(clients) == 0 {
		delete(m.Clients, userID)
		m.stopFeed(userID)
	}
	log.Debug().Str("user_id", userID).Msg("client unregistered")
}

func (m *ManagerService) startFeed(ctx context.Context, userID string) {
	feedCtx, cancel := context.WithCancel(ctx)
	session := reports.NewSession(m.deps)
	m.feeds[userID] = &feed{session: session, cancel: cancel}

	go func() {
		session.SetUser(feedCtx, &models.User{ID: userID})
	}()

	go func() {
		for range session.Updates() {
			select {
			case m.updateCh <- userID:
			case <-feedCtx.Done():
				return
			}
		}
	}()
}

func (m *ManagerService) stopFeed(userID string) {
	f, ok := m.feeds[userID]
	if !ok {
		return
	}
	delete(m.feeds, userID)
	f.cancel()
	// Close waits for an in-flight SetUser; keep the hub responsive.
	go f.session.Close()
}

func (m *ManagerService) broadcast(userID string) {
	f, ok := m.feeds[userID]
	if !ok {
		return
	}
	frame := NewFrame(f.session.Snapshot())
	for c := range m.Clients[userID] {
		m.send(c, frame)
	}
}

// send delivers without blocking the hub; a client that cannot keep up is dropped.
func (m *ManagerService) send(c Client, frame Frame) {
	select {
	case c.GetSendChannel() <- frame:
	default:
		log.Warn().Str("user_id", c.GetUserID()).Msg("client send buffer full, dropping connection")
		m.drop(c)
	}
}

func (m *ManagerService) shutdown() {
	for _, clients := range m.Clients {
		for c := range clients {
			c.Close()
			m.metrics.DecActiveConnections()
		}
	}
	m.Clients = make(map[string]map[Client]struct{})

	for userID := range m.feeds {
		m.stopFeed(userID)
	}
	close(m.done)
	log.Info().Msg("livefeed hub stopped")
}
