// Package mockclient provides a testify-based mock of the backend client
// operations used by the store and the app.
package mockclient

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/smrs/internal/models"
)

// ClientMock is a testify mock that implements the client operations.
//
// Use it in store tests to control what GetSession returns.
type ClientMock struct {
	mock.Mock

	// OnGetSession is an optional function field that, if set, replaces
	// testify's generic handler for GetSession. Handy for blocking calls.
	OnGetSession func(ctx context.Context) (models.Session, error)
}

// GetSession mocks fetching the session.
func (m *ClientMock) GetSession(ctx context.Context) (models.Session, error) {
	if m.OnGetSession != nil {
		return m.OnGetSession(ctx)
	}
	args := m.Called(ctx)
	session, _ := args.Get(0).(models.Session)
	return session, args.Error(1)
}

// PostSession mocks replacing the session.
func (m *ClientMock) PostSession(ctx context.Context, session models.Session) (models.Session, error) {
	args := m.Called(ctx, session)
	result, _ := args.Get(0).(models.Session)
	return result, args.Error(1)
}

// ListLinks mocks listing saved links.
func (m *ClientMock) ListLinks(ctx context.Context) ([]models.LinkRecord, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]models.LinkRecord)
	return links, args.Error(1)
}

// Save mocks saving a link.
func (m *ClientMock) Save(ctx context.Context, url string, token *models.Token) (models.Token, error) {
	args := m.Called(ctx, url, token)
	return args.Get(0).(models.Token), args.Error(1)
}

// Forget mocks forgetting a link.
func (m *ClientMock) Forget(ctx context.Context, token models.Token) (models.Token, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Token), args.Error(1)
}
