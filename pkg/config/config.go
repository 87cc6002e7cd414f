// Package config loads command-line client settings from a YAML file and
// BLUEIRIS_* environment variables.
//
// Environment variables override the file:
//
//	BLUEIRIS_PROTOCOL, BLUEIRIS_HOST, BLUEIRIS_PORT, BLUEIRIS_USER,
//	BLUEIRIS_PASSWORD, BLUEIRIS_TIMEOUT, BLUEIRIS_CA_FILE,
//	BLUEIRIS_INSECURE, BLUEIRIS_LOG_LEVEL, BLUEIRIS_LOG_FORMAT,
//	BLUEIRIS_DEBUG, BLUEIRIS_CAPTURE_FILE, BLUEIRIS_WATCH_INTERVAL,
//	BLUEIRIS_METRICS_ADDR
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nwesterhausen/pyblueiris/pkg/blueiris"
	"github.com/nwesterhausen/pyblueiris/pkg/refresh"
	"github.com/nwesterhausen/pyblueiris/pkg/transport"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Defaults.
const (
	DefaultProtocol      = blueiris.ProtocolHTTP
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultWatchInterval = 30 * time.Second
)

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid configuration")

// LoadError reports a configuration file that could not be loaded.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Config is the complete client configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	TLS     TLS     `yaml:"tls"`
	Log     Log     `yaml:"log"`
	Refresh Refresh `yaml:"refresh"`
	Watch   Watch   `yaml:"watch"`
}

// Server identifies the Blue Iris server and the login.
type Server struct {
	Protocol string        `yaml:"protocol"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TLS configures https connections.
type TLS struct {
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	DisableHTTP2       bool   `yaml:"disable_http2"`
}

// Log configures operational logging and protocol capture.
type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Debug       bool   `yaml:"debug"`
	CaptureFile string `yaml:"capture_file"`
}

// Refresh lists the commands run by a full refresh. Empty uses the
// built-in sequence.
type Refresh struct {
	Commands []RefreshCommand `yaml:"commands"`
}

// RefreshCommand is one configured refresh step.
type RefreshCommand struct {
	Cmd    string         `yaml:"cmd"`
	Params map[string]any `yaml:"params"`
	Admin  bool           `yaml:"admin"`
}

// Watch configures periodic refreshes.
type Watch struct {
	Interval    time.Duration `yaml:"interval"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: Server{
			Protocol: DefaultProtocol,
			Timeout:  transport.DefaultTimeout,
		},
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Watch: Watch{
			Interval: DefaultWatchInterval,
		},
	}
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	return cfg, nil
}

// Load reads path, applies the environment and validates the result. An
// empty path uses the defaults and the environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
		}
		cfg, err = Parse(data)
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.File = path
			}
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from BLUEIRIS_* environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Protocol = EnvString(EnvPrefix+"PROTOCOL", c.Server.Protocol)
	c.Server.Host = EnvString(EnvPrefix+"HOST", c.Server.Host)
	c.Server.Port = EnvInt(EnvPrefix+"PORT", c.Server.Port)
	c.Server.Username = EnvString(EnvPrefix+"USER", c.Server.Username)
	c.Server.Password = EnvString(EnvPrefix+"PASSWORD", c.Server.Password)
	c.Server.Timeout = EnvDuration(EnvPrefix+"TIMEOUT", c.Server.Timeout)

	c.TLS.CAFile = EnvString(EnvPrefix+"CA_FILE", c.TLS.CAFile)
	c.TLS.InsecureSkipVerify = EnvBool(EnvPrefix+"INSECURE", c.TLS.InsecureSkipVerify)

	c.Log.Level = EnvString(EnvPrefix+"LOG_LEVEL", c.Log.Level)
	c.Log.Format = EnvString(EnvPrefix+"LOG_FORMAT", c.Log.Format)
	c.Log.Debug = EnvBool(EnvPrefix+"DEBUG", c.Log.Debug)
	c.Log.CaptureFile = EnvString(EnvPrefix+"CAPTURE_FILE", c.Log.CaptureFile)

	c.Watch.Interval = EnvDuration(EnvPrefix+"WATCH_INTERVAL", c.Watch.Interval)
	c.Watch.MetricsAddr = EnvString(EnvPrefix+"METRICS_ADDR", c.Watch.MetricsAddr)
}

// Validate checks the settings that do not depend on the server.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Server.Port)
	}
	for i, rc := range c.Refresh.Commands {
		if _, err := rc.Step(); err != nil {
			return fmt.Errorf("%w: refresh command %d: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// Step converts the configured command into a refresh step. Parameters
// are sent in key order.
func (rc RefreshCommand) Step() (refresh.Step, error) {
	keys := make([]string, 0, len(rc.Params))
	for k := range rc.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]wire.Param, 0, len(keys))
	for _, k := range keys {
		params = append(params, wire.P(k, rc.Params[k]))
	}
	cmd := wire.NewQuery(rc.Cmd, params...)
	if err := cmd.Validate(); err != nil {
		return refresh.Step{}, err
	}
	return refresh.Step{Command: cmd, RequiresAdmin: rc.Admin}, nil
}

// RefreshSteps returns the configured refresh steps, or nil for the
// built-in sequence.
func (c *Config) RefreshSteps() ([]refresh.Step, error) {
	if len(c.Refresh.Commands) == 0 {
		return nil, nil
	}
	steps := make([]refresh.Step, 0, len(c.Refresh.Commands))
	for _, rc := range c.Refresh.Commands {
		s, err := rc.Step()
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// ClientConfig builds the client configuration.
func (c *Config) ClientConfig(logger *slog.Logger) (blueiris.Config, error) {
	hc, err := transport.BuildHTTPClient(transport.ClientOptions{
		Timeout:            c.Server.Timeout,
		CAFile:             c.TLS.CAFile,
		InsecureSkipVerify: c.TLS.InsecureSkipVerify,
		DisableHTTP2:       c.TLS.DisableHTTP2,
	})
	if err != nil {
		return blueiris.Config{}, err
	}
	steps, err := c.RefreshSteps()
	if err != nil {
		return blueiris.Config{}, err
	}

	cfg := blueiris.Config{
		Protocol:     c.Server.Protocol,
		Host:         c.Server.Host,
		Port:         c.Server.Port,
		Username:     c.Server.Username,
		Password:     c.Server.Password,
		HTTPClient:   hc,
		Logger:       logger,
		Debug:        c.Log.Debug,
		RefreshSteps: steps,
	}
	return cfg, cfg.Validate()
}

// NewLogger creates the operational logger described by c.Log.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if c.Log.Debug {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
