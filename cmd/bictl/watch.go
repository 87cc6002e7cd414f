package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nwesterhausen/pyblueiris/pkg/blueiris"
	"github.com/nwesterhausen/pyblueiris/pkg/connection"
	"github.com/nwesterhausen/pyblueiris/pkg/metrics"
)

func runWatch(ctx context.Context, args []string) error {
	fs := newFlagSet("watch", "Refresh periodically and serve Prometheus metrics", "")
	cf := registerConnFlags(fs)
	interval := fs.Duration("interval", 0, "Refresh interval (default from config, 30s)")
	metricsAddr := fs.String("metrics-addr", "", "Serve /metrics on this address, e.g. :9108")
	_ = fs.Parse(args)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a, err := newApp(cf, os.Stderr, m)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if *interval > 0 {
		a.cfg.Watch.Interval = *interval
	}
	if *metricsAddr != "" {
		a.cfg.Watch.MetricsAddr = *metricsAddr
	}

	if addr := a.cfg.Watch.MetricsAddr; addr != "" {
		srv := serveMetrics(addr, reg, a)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	w := connection.NewWatcher(refreshPoll(a.client, m), connection.WatcherConfig{
		Interval: a.cfg.Watch.Interval,
		OnStateChange: func(oldState, newState connection.State) {
			a.logger.Info("watch state changed", "from", oldState, "to", newState)
		},
		Logger: a.logger,
	})

	a.logger.Info("watching server", "url", a.client.BaseURL(), "interval", a.cfg.Watch.Interval)
	return w.Run(ctx)
}

// refreshPoll runs one full refresh and records it. The poll fails only
// when every step failed, so a single unavailable list does not trigger
// backoff.
func refreshPoll(c *blueiris.Client, m *metrics.Metrics) connection.PollFunc {
	return func(ctx context.Context) error {
		report := c.UpdateAllInformation(ctx)
		m.ObserveRefresh(report)
		if report.AllFailed() {
			return report.Err()
		}
		return nil
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !a.client.Authenticated() {
			http.Error(w, "not authenticated", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
