package reports

import (
	"context"
	"slices"
	"sync"

	"grievancedesk/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// State is a point-in-time copy of a session.
type State struct {
	GrievanceReports  []models.GrievanceReport  `json:"grievance_reports"`
	SuspiciousReports []models.SuspiciousReport `json:"suspicious_reports"`
	Loading           bool                      `json:"loading"`
	Error             string                    `json:"error,omitempty"`
}

// Session mirrors the current user's grievance and suspicious collections,
// newest first, and keeps them live from the change feed. Create and upload
// calls go through the session's current user.
type Session struct {
	deps Deps

	// activate serializes SetUser and Close.
	activate sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}

	mu         sync.RWMutex
	client     *Client
	grievances []models.GrievanceReport
	suspicious []models.SuspiciousReport
	loading    bool
	errMsg     string
	closed     bool

	updates chan struct{}
}

// NewSession returns an inactive session. It reports loading until the first SetUser.
func NewSession(deps Deps) *Session {
	return &Session{
		deps:    deps,
		client:  NewClient(deps, nil),
		loading: true,
		updates: make(chan struct{}, 1),
	}
}

// Updates fires after every state change. Notifications coalesce; read
// Snapshot after each receive. The channel is closed by Close.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		GrievanceReports:  slices.Clone(s.grievances),
		SuspiciousReports: slices.Clone(s.suspicious),
		Loading:           s.loading,
		Error:             s.errMsg,
	}
}

// User returns the current user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client.User()
}

// SetUser (re)activates the session for user. Previous subscriptions are
// released and state is cleared first. With a nil user the session stops
// loading and stays empty. Otherwise both collections are fetched and live
// subscriptions are opened; failures land in the error slot. ctx bounds the
// lifetime of the subscriptions.
func (s *Session) SetUser(ctx context.Context, user *models.User) {
	s.activate.Lock()
	defer s.activate.Unlock()

	s.stop()

	client := NewClient(s.deps, user)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.client = client
	s.grievances = nil
	s.suspicious = nil
	s.errMsg = ""
	s.loading = user != nil
	s.mu.Unlock()
	s.notify()

	if user == nil {
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	// Subscribe before fetching so no change between the query and the
	// subscription is lost; replays of fetched rows fold idempotently.
	gCh, err := s.deps.Storage.SubscribeGrievanceReports(subCtx, user.ID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("grievance subscription failed")
		s.setError(err)
	}
	sCh, err := s.deps.Storage.SubscribeSuspiciousReports(subCtx, user.ID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("suspicious subscription failed")
		s.setError(err)
	}

	grievances, gErr := client.ListGrievanceReports(subCtx)
	suspicious, sErr := client.ListSuspiciousReports(subCtx)

	s.mu.Lock()
	if gErr != nil {
		s.errMsg = gErr.Error()
	} else {
		s.grievances = grievances
	}
	if sErr != nil {
		s.errMsg = sErr.Error()
	} else {
		s.suspicious = suspicious
	}
	s.loading = false
	s.mu.Unlock()
	s.notify()

	go s.run(subCtx, s.done, gCh, sCh)
}

// Close releases the subscriptions and closes the Updates channel.
func (s *Session) Close() {
	s.activate.Lock()
	defer s.activate.Unlock()

	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}

// CreateGrievanceReport submits a grievance as the current user.
func (s *Session) CreateGrievanceReport(ctx context.Context, in GrievanceInput) (*models.GrievanceReport, error) {
	return s.currentClient().CreateGrievanceReport(ctx, in)
}

// CreateSuspiciousReport submits a suspicious entity report as the current user.
func (s *Session) CreateSuspiciousReport(ctx context.Context, in SuspiciousInput) (*models.SuspiciousReport, error) {
	return s.currentClient().CreateSuspiciousReport(ctx, in)
}

// UploadFile stores an evidence file as the current user.
func (s *Session) UploadFile(ctx context.Context, file models.FileUpload, scopeID string) (string, error) {
	return s.currentClient().UploadFile(ctx, file, scopeID)
}

func (s *Session) currentClient() *Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// stop cancels the running fold loop and waits for it. Callers hold activate.
func (s *Session) stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// run drains both change channels until ctx ends or both are closed.
func (s *Session) run(ctx context.Context, done chan struct{}, gCh <-chan models.GrievanceChange, sCh <-chan models.SuspiciousChange) {
	defer close(done)

	for gCh != nil || sCh != nil {
		select {
		case <-ctx.Done():
			return

		case change, ok := <-gCh:
			if !ok {
				gCh = nil
				continue
			}
			s.mu.Lock()
			s.grievances = applyChange(s.grievances, change)
			s.mu.Unlock()
			s.deps.Metrics.RecordRealtimeEvent(models.GrievanceTable, string(change.Type))
			s.notify()

		case change, ok := <-sCh:
			if !ok {
				sCh = nil
				continue
			}
			s.mu.Lock()
			s.suspicious = applyChange(s.suspicious, change)
			s.mu.Unlock()
			s.deps.Metrics.RecordRealtimeEvent(models.SuspiciousTable, string(change.Type))
			s.notify()
		}
	}
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	s.errMsg = err.Error()
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
