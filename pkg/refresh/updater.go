package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/interaction"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Executor runs a single command.
// *interaction.Dispatcher satisfies it.
type Executor interface {
	Execute(ctx context.Context, cmd wire.Command) (*interaction.Result, error)
}

// Step is one command of a refresh.
type Step struct {
	Command wire.Command

	// RequiresAdmin marks commands the server only answers for
	// administrators.
	RequiresAdmin bool
}

// Name returns the step's display name.
func (s Step) Name() string {
	return s.Command.String()
}

// DefaultSteps returns the refresh sequence: status, camera list, clip and
// alert lists for all cameras, the server log, and the system configuration.
func DefaultSteps() []Step {
	return []Step{
		{Command: wire.NewQuery(model.FamilyStatus)},
		{Command: wire.NewQuery(model.FamilyCamlist)},
		{Command: wire.NewQuery(model.FamilyCliplist, wire.P("camera", model.IndexCamera))},
		{Command: wire.NewQuery(model.FamilyAlertlist, wire.P("camera", model.IndexCamera), wire.P("reset", false))},
		{Command: wire.NewQuery(model.FamilyLog)},
		{Command: wire.NewQuery(model.FamilySysconfig), RequiresAdmin: true},
	}
}

// Outcome is the result of one step.
type Outcome struct {
	Step     Step
	Err      error
	Skipped  bool
	Reason   string
	Duration time.Duration
}

// OK reports whether the step succeeded or was skipped.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report is the aggregate result of a refresh.
type Report struct {
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Failed returns the outcomes of failed steps.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Skipped returns the outcomes of skipped steps.
func (r *Report) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Skipped {
			out = append(out, o)
		}
	}
	return out
}

// Succeeded returns the number of steps that ran and succeeded.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil && !o.Skipped {
			n++
		}
	}
	return n
}

// OK reports whether no step failed.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// AllFailed reports whether every step that ran failed.
func (r *Report) AllFailed() bool {
	ran := 0
	for _, o := range r.Outcomes {
		if o.Skipped {
			continue
		}
		ran++
		if o.Err == nil {
			return false
		}
	}
	return ran > 0
}

// Err joins the step errors, each prefixed with its command name.
// It returns nil when no step failed.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", o.Step.Command.Name, o.Err))
	}
	return errors.Join(errs...)
}

// Duration returns the total refresh time.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Config configures an Updater.
type Config struct {
	Executor Executor

	// Steps defaults to DefaultSteps().
	Steps []Step

	// IsAdmin reports whether the session user is an administrator.
	// Nil runs admin steps unconditionally.
	IsAdmin func() bool

	Logger *slog.Logger
}

// Updater runs refreshes.
type Updater struct {
	exec    Executor
	steps   []Step
	isAdmin func() bool
	logger  *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewUpdater creates an Updater.
func NewUpdater(cfg Config) *Updater {
	u := &Updater{
		exec:    cfg.Executor,
		steps:   cfg.Steps,
		isAdmin: cfg.IsAdmin,
		logger:  cfg.Logger,
		now:     time.Now,
	}
	if len(u.steps) == 0 {
		u.steps = DefaultSteps()
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	return u
}

// Steps returns a copy of the configured steps.
func (u *Updater) Steps() []Step {
	out := make([]Step, len(u.steps))
	copy(out, u.steps)
	return out
}

// UpdateAll executes every step in order. Failures are recorded and do not
// stop the sequence; once ctx is done the remaining steps are recorded as
// failed with the context error without being sent.
func (u *Updater) UpdateAll(ctx context.Context) *Report {
	report := &Report{Started: u.now(), Outcomes: make([]Outcome, 0, len(u.steps))}

	for _, step := range u.steps {
		if err := ctx.Err(); err != nil {
			report.Outcomes = append(report.Outcomes, Outcome{Step: step, Err: err})
			continue
		}
		if step.RequiresAdmin && u.isAdmin != nil && !u.isAdmin() {
			u.logger.Info("skipping refresh step", "cmd", step.Command.Name, "reason", "requires admin")
			report.Outcomes = append(report.Outcomes, Outcome{Step: step, Skipped: true, Reason: "requires admin"})
			continue
		}

		start := u.now()
		_, err := u.exec.Execute(ctx, step.Command)
		out := Outcome{Step: step, Err: err, Duration: u.now().Sub(start)}
		if err != nil {
			u.logger.Warn("refresh step failed", "cmd", step.Command.Name, "err", err)
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	report.Finished = u.now()
	u.logger.Debug("refresh complete",
		"ok", report.Succeeded(),
		"failed", len(report.Failed()),
		"skipped", len(report.Skipped()),
		"duration", report.Duration())
	return report
}
