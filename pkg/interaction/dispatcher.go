package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/auth"
	bilog "github.com/nwesterhausen/pyblueiris/pkg/log"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/transport"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Sender posts a request and returns the raw response object.
type Sender interface {
	Send(ctx context.Context, req *wire.Request) (json.RawMessage, error)
}

// Authenticator provides session tokens.
// *auth.Manager satisfies it.
type Authenticator interface {
	Acquire(ctx context.Context) (*auth.Lease, error)
	Renew(ctx context.Context, stale wire.Token) (*auth.Lease, error)
	Invalidate(stale wire.Token)
}

var _ Authenticator = (*auth.Manager)(nil)

// Store receives normalized attribute families.
// *attributes.Store satisfies it.
type Store interface {
	Update(family string, values map[string]any)
}

// Observer is notified of every completed command.
type Observer interface {
	CommandCompleted(cmd string, err error, elapsed time.Duration)
	SessionRenewed(cmd string)
}

// Config configures a Dispatcher.
type Config struct {
	Sender Sender
	Auth   Authenticator
	Store  Store

	// Normalizer converts payloads. Defaults to model.NewNormalizer().
	Normalizer *model.Normalizer

	// Classifier detects expired sessions. Defaults to
	// wire.DefaultExpiryClassifier.
	Classifier wire.ExpiryClassifier

	Observer       Observer
	ProtocolLogger bilog.Logger
	ClientID       string
	Logger         *slog.Logger
}

// Result is the outcome of a successful command.
type Result struct {
	Command  wire.Command
	Family   string
	Envelope *wire.Envelope

	// Attributes are the normalized values, nil when the response carried
	// no data for a mutating command.
	Attributes map[string]any

	// Stored reports whether the family was written to the store.
	Stored bool
}

// Dispatcher executes commands.
// It is safe for concurrent use.
type Dispatcher struct {
	sender     Sender
	auth       Authenticator
	store      Store
	normalizer *model.Normalizer
	classify   wire.ExpiryClassifier
	observer   Observer
	capture    bilog.Logger
	clientID   string
	logger     *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	d := &Dispatcher{
		sender:     cfg.Sender,
		auth:       cfg.Auth,
		store:      cfg.Store,
		normalizer: cfg.Normalizer,
		classify:   cfg.Classifier,
		observer:   cfg.Observer,
		capture:    bilog.OrNoop(cfg.ProtocolLogger),
		clientID:   cfg.ClientID,
		logger:     cfg.Logger,
		now:        time.Now,
	}
	if d.normalizer == nil {
		d.normalizer = model.NewNormalizer()
	}
	if d.classify == nil {
		d.classify = wire.DefaultExpiryClassifier
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Execute runs cmd and stores its normalized result. A handshake made on
// behalf of cmd, the expiry of a rejected token and the normalized result
// are all applied only if ctx is still live once the reply is in.
func (d *Dispatcher) Execute(ctx context.Context, cmd wire.Command) (res *Result, err error) {
	start := d.now()
	defer func() {
		if d.observer != nil {
			d.observer.CommandCompleted(cmd.Name, err, d.now().Sub(start))
		}
		if err != nil {
			d.logger.Debug("command failed", "cmd", cmd.Name, "err", err)
		}
	}()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	lease, err := d.auth.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var (
		expired  []wire.Token
		accepted bool
		settled  bool
	)
	settle := func() {
		if settled {
			return
		}
		settled = true
		if ctx.Err() != nil {
			lease.Release()
			return
		}
		for _, tok := range expired {
			d.auth.Invalidate(tok)
		}
		if accepted {
			lease.Commit()
		} else {
			lease.Release()
		}
	}
	defer settle()

	env, err := d.send(ctx, cmd, lease.Token)
	if err != nil {
		return nil, err
	}

	status := env.Status(d.classify)
	if status == wire.StatusAuthExpired {
		d.logger.Debug("session expired, renewing", "cmd", cmd.Name)
		if d.observer != nil {
			d.observer.SessionRenewed(cmd.Name)
		}

		stale := lease.Token
		expired = append(expired, stale)
		lease.Release()

		var renewed *auth.Lease
		renewed, err = d.auth.Renew(ctx, stale)
		if err != nil {
			return nil, err
		}
		lease = renewed

		env, err = d.send(ctx, cmd, lease.Token)
		if err != nil {
			return nil, err
		}
		status = env.Status(d.classify)
		if status == wire.StatusAuthExpired {
			expired = append(expired, lease.Token)
			return nil, d.fail(cmd, &auth.AuthenticationError{
				Reason: auth.ReasonExpired,
				Detail: env.Reason(),
				Err:    ErrAuthExpired,
			})
		}
	}
	accepted = true

	switch status {
	case wire.StatusSuccess:
	case wire.StatusFail:
		return nil, d.fail(cmd, &CommandError{Command: cmd.Name, Reason: env.Reason(), Status: status})
	default:
		return nil, d.fail(cmd, &CommandError{
			Command: cmd.Name,
			Reason:  fmt.Sprintf("unexpected result %q", env.Result),
			Status:  status,
		})
	}

	res = &Result{Command: cmd, Family: cmd.Family(), Envelope: env}
	if cmd.Kind == wire.KindMutating && !env.HasData() {
		return res, nil
	}

	attrs, err := d.normalizer.Normalize(res.Family, env.Data)
	if err != nil {
		return nil, d.fail(cmd, &transport.TransportError{Kind: transport.KindDecode, Command: cmd.Name, Err: err})
	}
	res.Attributes = attrs

	// Nothing is committed for a caller that has gone away.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	settle()
	if d.store != nil {
		d.store.Update(res.Family, attrs)
		res.Stored = true
	}
	return res, nil
}

func (d *Dispatcher) send(ctx context.Context, cmd wire.Command, tok wire.Token) (*wire.Envelope, error) {
	raw, err := d.sender.Send(ctx, wire.NewRequest(cmd, tok))
	if err != nil {
		return nil, err
	}
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return nil, d.fail(cmd, &transport.TransportError{Kind: transport.KindDecode, Command: cmd.Name, Err: err})
	}
	return env, nil
}

func (d *Dispatcher) fail(cmd wire.Command, err error) error {
	d.capture.Log(bilog.Event{
		Timestamp: d.now(),
		ClientID:  d.clientID,
		Direction: bilog.DirectionIn,
		Stage:     bilog.StageDispatch,
		Category:  bilog.CategoryError,
		Error: &bilog.ErrorEventData{
			Stage:   bilog.StageDispatch,
			Command: cmd.Name,
			Message: err.Error(),
		},
	})
	return err
}
