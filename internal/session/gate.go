// Package session gates the upload/listing surfaces behind login state.
// Thin by design: credentials policy lives on the server.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/logging"
	"github.com/ASL66/mirad-upload/internal/models"
)

// ErrEmptyCredentials is the local validation failure for a blank username
// or password. It never reaches the network.
var ErrEmptyCredentials = errors.New("username and password are required")

// Authenticator is the slice of the API client the gate needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.StatusResponse, error)
	Register(ctx context.Context, username, password string) (*models.StatusResponse, error)
	Logout(ctx context.Context) error
	CheckLogin(ctx context.Context) (*models.LoginStatus, error)
}

// Gate tracks whether a login session is live.
type Gate struct {
	client Authenticator
	bus    *events.EventBus
	log    *logging.Logger

	mu       sync.RWMutex
	loggedIn bool
	username string
}

// NewGate creates a logged-out gate. bus and log may be nil.
func NewGate(client Authenticator, bus *events.EventBus, log *logging.Logger) *Gate {
	if log == nil {
		log = logging.Nop()
	}
	return &Gate{client: client, bus: bus, log: log}
}

// LoggedIn reports the last known session state.
func (g *Gate) LoggedIn() (bool, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loggedIn, g.username
}

// Login authenticates. Blank credentials fail locally.
func (g *Gate) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrEmptyCredentials
	}

	status, err := g.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	name := status.Username
	if name == "" {
		name = username
	}

	g.mu.Lock()
	g.loggedIn = true
	g.username = name
	g.mu.Unlock()

	g.log.Info().Str("user", name).Msg("logged in")
	g.bus.Publish(&events.SessionEvent{
		BaseEvent: events.NewBase(events.EventLoggedIn),
		Username:  name,
	})
	return nil
}

// Register creates an account. Blank credentials fail locally; the server
// enforces everything else (minimum password length included).
func (g *Gate) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrEmptyCredentials
	}
	_, err := g.client.Register(ctx, username, password)
	return err
}

// Logout ends the session. Local state clears even when the server call
// fails, so the UI never shows a phantom session.
func (g *Gate) Logout(ctx context.Context) error {
	err := g.client.Logout(ctx)

	g.mu.Lock()
	name := g.username
	g.loggedIn = false
	g.username = ""
	g.mu.Unlock()

	g.bus.Publish(&events.SessionEvent{
		BaseEvent: events.NewBase(events.EventLoggedOut),
		Username:  name,
	})
	return err
}

// Check asks the server whether the session is still live and syncs local
// state with the answer.
func (g *Gate) Check(ctx context.Context) (bool, error) {
	status, err := g.client.CheckLogin(ctx)
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	g.loggedIn = status.LoggedIn
	g.username = status.Username
	g.mu.Unlock()

	return status.LoggedIn, nil
}

// Expire marks the session stale locally, used when a listing call came
// back 401.
func (g *Gate) Expire() {
	g.mu.Lock()
	g.loggedIn = false
	g.username = ""
	g.mu.Unlock()
}
