package blueiris

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/attributes"
	"github.com/nwesterhausen/pyblueiris/pkg/auth"
	"github.com/nwesterhausen/pyblueiris/pkg/interaction"
	bilog "github.com/nwesterhausen/pyblueiris/pkg/log"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/refresh"
	"github.com/nwesterhausen/pyblueiris/pkg/transport"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Client talks to one Blue Iris server.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	logger  *slog.Logger

	transport  *transport.Transport
	auth       *auth.Manager
	dispatcher *interaction.Dispatcher
	normalizer *model.Normalizer
	store      *attributes.Store
	updater    *refresh.Updater

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Client. No request is sent until the first command.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := cfg.protocol(); !ok {
		logger.Warn("invalid protocol, using http", "protocol", cfg.Protocol)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		hc, err := transport.BuildHTTPClient(transport.ClientOptions{})
		if err != nil {
			return nil, err
		}
		doer = hc
	}

	capture := cfg.ProtocolLogger
	if cfg.Debug {
		capture = bilog.NewMultiLogger(cfg.ProtocolLogger, bilog.NewSlogAdapter(logger))
	}

	tr, err := transport.New(transport.Config{
		Endpoint:       cfg.Endpoint(),
		Doer:           doer,
		ProtocolLogger: capture,
		ClientID:       cfg.ClientID,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		baseURL:    cfg.BaseURL(),
		logger:     logger,
		transport:  tr,
		normalizer: model.NewNormalizer(),
		store:      attributes.NewStore(),
		now:        time.Now,
	}

	var (
		authObserver auth.Observer
		cmdObserver  interaction.Observer
	)
	if cfg.Observer != nil {
		authObserver, cmdObserver = cfg.Observer, cfg.Observer
	}

	c.auth = auth.NewManager(auth.Config{
		Sender: tr,
		Credentials: auth.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Hasher:         cfg.Hasher,
		OnLogin:        c.storeLogin,
		Observer:       authObserver,
		ProtocolLogger: capture,
		ClientID:       tr.ClientID(),
		Logger:         logger,
	})

	c.dispatcher = interaction.NewDispatcher(interaction.Config{
		Sender:         tr,
		Auth:           c.auth,
		Store:          c.store,
		Normalizer:     c.normalizer,
		Classifier:     cfg.ExpiryClassifier,
		Observer:       cmdObserver,
		ProtocolLogger: capture,
		ClientID:       tr.ClientID(),
		Logger:         logger,
	})

	c.updater = refresh.NewUpdater(refresh.Config{
		Executor: c.dispatcher,
		Steps:    cfg.RefreshSteps,
		IsAdmin:  c.IsAdmin,
		Logger:   logger,
	})

	logger.Debug("client created", "endpoint", tr.Endpoint(), "client_id", tr.ClientID())
	return c, nil
}

// storeLogin records the server information returned by a login.
func (c *Client) storeLogin(data json.RawMessage) {
	attrs, err := c.normalizer.Normalize(model.FamilyLogin, data)
	if err != nil {
		c.logger.Warn("ignoring malformed login data", "error", err)
		return
	}
	c.store.Update(model.FamilyLogin, attrs)
}

// BaseURL returns "<protocol>://host[:port]".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the JSON API URL.
func (c *Client) Endpoint() string {
	return c.transport.Endpoint()
}

// ClientID returns the capture client ID.
func (c *Client) ClientID() string {
	return c.transport.ClientID()
}

// Store returns the attribute store.
func (c *Client) Store() *attributes.Store {
	return c.store
}

// Attributes returns a deep copy of all attribute families.
func (c *Client) Attributes() attributes.Snapshot {
	return c.store.Snapshot()
}

// Login performs the handshake if no session is held.
func (c *Client) Login(ctx context.Context) error {
	_, err := c.auth.EnsureAuthenticated(ctx)
	return err
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.auth.Logout(ctx)
}

// Authenticated reports whether a session is held.
func (c *Client) Authenticated() bool {
	return c.auth.State().Valid
}

// Execute sends cmd, renewing the session once if the server reports it
// expired, and stores the normalized result under the command family.
func (c *Client) Execute(ctx context.Context, cmd wire.Command) (*interaction.Result, error) {
	return c.dispatcher.Execute(ctx, cmd)
}

// UpdateAllInformation runs every refresh step in order. A failing step
// does not stop the sequence; the report lists each outcome.
func (c *Client) UpdateAllInformation(ctx context.Context) *refresh.Report {
	return c.updater.UpdateAll(ctx)
}

// RefreshSteps returns the configured refresh sequence.
func (c *Client) RefreshSteps() []refresh.Step {
	return c.updater.Steps()
}

// ServerInfo returns the information reported by the last login.
func (c *Client) ServerInfo() (*model.ServerInfo, bool) {
	attrs, ok := c.store.Family(model.FamilyLogin)
	if !ok {
		return nil, false
	}
	var info model.ServerInfo
	if err := model.FromAttributes(attrs, &info); err != nil {
		c.logger.Warn("stored login data unreadable", "error", err)
		return nil, false
	}
	return &info, true
}

// IsAdmin reports whether the logged in user is an administrator.
func (c *Client) IsAdmin() bool {
	info, ok := c.ServerInfo()
	return ok && info.Admin.Bool()
}
