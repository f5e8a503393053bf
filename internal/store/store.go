// Package store holds the client-side state shown to the user: the current
// session and the list of transient alerts.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/smrs/internal/models"
)

type sessionSource interface {
	GetSession(ctx context.Context) (models.Session, error)
}

// State is a point-in-time copy of the store.
type State struct {
	Session models.Session
	Alerts  []models.Alert
}

// Store is the state container. Use New; the zero value has no session source.
type Store struct {
	source sessionSource

	mu          sync.Mutex
	session     models.Session
	nextAlertID int
	alerts      []models.Alert
	listeners   []func(State)
}

type AlertOption func(*models.Alert)

// WithAlertType overrides the default "success" alert type.
func WithAlertType(alertType string) AlertOption {
	return func(alert *models.Alert) {
		alert.Type = alertType
	}
}

func New(source sessionSource) *Store {
	return &Store{
		source: source,
		alerts: []models.Alert{},
	}
}

// LoadSession fetches the session and stores it once the request has
// completed. On failure the previous session stays in place.
func (s *Store) LoadSession(ctx context.Context) error {
	session, err := s.source.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("in internal/store/store.go/LoadSession(): error while `s.source.GetSession()` calling: %w", err)
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.notify()

	return nil
}

// AddAlert appends an alert with the next id. The type defaults to
// models.AlertTypeSuccess.
func (s *Store) AddAlert(msg string, optionsProto ...AlertOption) models.Alert {
	alert := models.Alert{
		Msg:  msg,
		Type: models.AlertTypeSuccess,
	}
	for _, protoOption := range optionsProto {
		protoOption(&alert)
	}

	s.mu.Lock()
	alert.ID = s.nextAlertID
	s.nextAlertID++
	s.alerts = append(s.alerts, alert)
	s.mu.Unlock()

	s.notify()

	return alert
}

// RemoveAlert drops the alert with the given id. Unknown ids are ignored.
func (s *Store) RemoveAlert(id int) {
	s.mu.Lock()
	before := len(s.alerts)
	s.alerts = funk.Filter(s.alerts, func(alert models.Alert) bool {
		return alert.ID != id
	}).([]models.Alert)
	changed := len(s.alerts) != before
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Store) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session
}

func (s *Store) Alerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Alert{}, s.alerts...)
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// OnChange registers a callback run after every mutation. Callbacks run on
// the mutating goroutine, outside the lock, so they may call back into the store.
func (s *Store) OnChange(callback func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, callback)
	s.mu.Unlock()
}

func (s *Store) snapshot() State {
	return State{
		Session: s.session,
		Alerts:  append([]models.Alert{}, s.alerts...),
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	state := s.snapshot()
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(state)
	}
}
