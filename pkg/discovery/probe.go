package discovery

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/transport"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// DefaultProbeTimeout bounds a single probe.
const DefaultProbeTimeout = 3 * time.Second

// Config configures Discover.
type Config struct {
	Browser BrowserConfig

	// BrowseTimeout is how long to collect mDNS answers.
	// Default: BrowseTimeout.
	BrowseTimeout time.Duration

	// ProbeTimeout bounds each probe. Default: DefaultProbeTimeout.
	ProbeTimeout time.Duration

	// Protocol is used for probing. Default: "http".
	Protocol string

	// Doer performs the probe requests. Defaults to http.DefaultClient.
	Doer transport.Doer

	Logger *slog.Logger
}

// Probe reports whether srv answers the first login step like a Blue Iris
// server, that is with a challenge session.
func Probe(ctx context.Context, srv *Server, protocol string, doer transport.Doer) (bool, error) {
	if protocol == "" {
		protocol = "http"
	}
	tr, err := transport.New(transport.Config{
		Endpoint: protocol + "://" + srv.Address() + "/json",
		Doer:     doer,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return false, err
	}

	raw, err := tr.Send(ctx, wire.NewRequest(wire.NewQuery("login"), wire.Token{}))
	if err != nil {
		return false, err
	}
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return false, nil
	}
	return env.Session != "", nil
}

// Discover browses for HTTP services and returns those that answer like a
// Blue Iris server. Probes run concurrently.
func Discover(ctx context.Context, cfg Config) ([]*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Browser.Logger == nil {
		cfg.Browser.Logger = logger
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}

	candidates := NewBrowser(cfg.Browser).Find(ctx, cfg.BrowseTimeout)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("mDNS browse finished", "candidates", len(candidates))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found []*Server
	)
	for _, srv := range candidates {
		wg.Add(1)
		go func(srv *Server) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
			defer cancel()

			ok, err := Probe(pctx, srv, cfg.Protocol, cfg.Doer)
			if err != nil {
				logger.Debug("probe failed", "instance", srv.Instance, "address", srv.Address(), "error", err)
				return
			}
			if ok {
				mu.Lock()
				found = append(found, srv)
				mu.Unlock()
			}
		}(srv)
	}
	wg.Wait()

	sort.Slice(found, func(i, j int) bool { return found[i].Instance < found[j].Instance })
	return found, ctx.Err()
}
