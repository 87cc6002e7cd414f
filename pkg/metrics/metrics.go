// Package metrics exports client activity as Prometheus metrics.
//
// Metrics implements the observer interfaces of the dispatcher and the
// authentication manager, and records refresh reports:
//
//	m := metrics.New(prometheus.NewRegistry())
//	cfg.Observer = m
//	...
//	m.ObserveRefresh(report)
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nwesterhausen/pyblueiris/pkg/auth"
	"github.com/nwesterhausen/pyblueiris/pkg/interaction"
	"github.com/nwesterhausen/pyblueiris/pkg/refresh"
	"github.com/nwesterhausen/pyblueiris/pkg/transport"
)

// Namespace prefixes every metric name.
const Namespace = "blueiris"

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeCommand   = "command_error"
	OutcomeAuth      = "auth_error"
	OutcomeTransport = "transport_error"
	OutcomeCanceled  = "canceled"
	OutcomeOther     = "error"
)

// Metrics holds the client's collectors.
type Metrics struct {
	commands        *prometheus.CounterVec
	commandLatency  *prometheus.HistogramVec
	renewals        *prometheus.CounterVec
	logins          *prometheus.CounterVec
	loginLatency    prometheus.Histogram
	refreshDuration prometheus.Histogram
	refreshFailed   prometheus.Gauge
	refreshLast     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command and outcome.",
		}, []string{"cmd", "outcome"}),
		commandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "command_duration_seconds",
			Help:      "Command round-trip time including any re-login.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cmd"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "session_renewals_total",
			Help:      "Sessions renewed after the server reported them expired.",
		}, []string{"cmd"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "logins_total",
			Help:      "Login handshakes, by outcome.",
		}, []string{"outcome"}),
		loginLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "login_duration_seconds",
			Help:      "Login handshake time.",
			Buckets:   prometheus.DefBuckets,
		}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Full refresh time.",
			Buckets:   prometheus.DefBuckets,
		}),
		refreshFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "refresh_failed_steps",
			Help:      "Failed steps in the most recent refresh.",
		}),
		refreshLast: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "refresh_last_timestamp_seconds",
			Help:      "Completion time of the most recent refresh.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.commands,
			m.commandLatency,
			m.renewals,
			m.logins,
			m.loginLatency,
			m.refreshDuration,
			m.refreshFailed,
			m.refreshLast,
		)
	}
	return m
}

// CommandCompleted implements interaction.Observer.
func (m *Metrics) CommandCompleted(cmd string, err error, elapsed time.Duration) {
	m.commands.WithLabelValues(cmd, Classify(err)).Inc()
	m.commandLatency.WithLabelValues(cmd).Observe(elapsed.Seconds())
}

// SessionRenewed implements interaction.Observer.
func (m *Metrics) SessionRenewed(cmd string) {
	m.renewals.WithLabelValues(cmd).Inc()
}

// LoginCompleted implements auth.Observer.
func (m *Metrics) LoginCompleted(err error, elapsed time.Duration) {
	m.logins.WithLabelValues(Classify(err)).Inc()
	m.loginLatency.Observe(elapsed.Seconds())
}

// ObserveRefresh records a refresh report.
func (m *Metrics) ObserveRefresh(r *refresh.Report) {
	m.refreshDuration.Observe(r.Duration().Seconds())
	m.refreshFailed.Set(float64(len(r.Failed())))
	m.refreshLast.Set(float64(r.Finished.Unix()))
}

// Classify maps an error to an outcome label.
func Classify(err error) string {
	var (
		cmdErr  *interaction.CommandError
		authErr *auth.AuthenticationError
		trErr   *transport.TransportError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.As(err, &cmdErr):
		return OutcomeCommand
	case errors.As(err, &authErr):
		return OutcomeAuth
	case errors.As(err, &trErr):
		return OutcomeTransport
	default:
		return OutcomeOther
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Compile-time interface satisfaction checks.
var (
	_ interaction.Observer = (*Metrics)(nil)
	_ auth.Observer        = (*Metrics)(nil)
)
