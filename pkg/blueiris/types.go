package blueiris

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/nwesterhausen/pyblueiris/pkg/auth"
	"github.com/nwesterhausen/pyblueiris/pkg/interaction"
	bilog "github.com/nwesterhausen/pyblueiris/pkg/log"
	"github.com/nwesterhausen/pyblueiris/pkg/refresh"
	"github.com/nwesterhausen/pyblueiris/pkg/transport"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Client errors.
var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnknownCamera  = errors.New("unknown camera")
	ErrUnknownProfile = errors.New("unknown profile")
	ErrNotAdmin       = errors.New("administrator login required")
	ErrNoServerInfo   = errors.New("no server information from login")
)

// Supported protocols.
const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

// Observer receives command and login notifications.
// *metrics.Metrics satisfies it.
type Observer interface {
	interaction.Observer
	auth.Observer
}

// Config configures a Client.
type Config struct {
	// Protocol is "http" or "https". Anything else falls back to "http"
	// with a warning.
	Protocol string

	// Host is the server host name or address.
	Host string

	// Port is the server port. Zero uses the protocol default.
	Port int

	// Username and Password are the login credentials.
	Username string
	Password string

	// HTTPClient performs requests. Defaults to a client from
	// transport.BuildHTTPClient.
	HTTPClient transport.Doer

	// Logger is the operational logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Debug additionally writes every protocol event to Logger.
	Debug bool

	// ProtocolLogger receives protocol capture events.
	ProtocolLogger bilog.Logger

	// ClientID identifies this client in capture events. Generated when
	// empty.
	ClientID string

	// Observer is notified of commands and logins.
	Observer Observer

	// Hasher computes the login response. Defaults to auth.MD5Hasher.
	Hasher auth.Hasher

	// ExpiryClassifier detects expired sessions. Defaults to
	// wire.DefaultExpiryClassifier.
	ExpiryClassifier wire.ExpiryClassifier

	// RefreshSteps replaces the UpdateAllInformation sequence.
	RefreshSteps []refresh.Step
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	return nil
}

// protocol returns the effective protocol and whether the configured one
// was accepted.
func (c *Config) protocol() (string, bool) {
	switch c.Protocol {
	case ProtocolHTTP, ProtocolHTTPS:
		return c.Protocol, true
	default:
		return ProtocolHTTP, false
	}
}

// BaseURL returns "<protocol>://host[:port]".
func (c *Config) BaseURL() string {
	proto, _ := c.protocol()
	host := c.Host
	if c.Port != 0 {
		host = net.JoinHostPort(strings.Trim(c.Host, "[]"), strconv.Itoa(c.Port))
	}
	return proto + "://" + host
}

// Endpoint returns the JSON API URL.
func (c *Config) Endpoint() string {
	return c.BaseURL() + "/json"
}
