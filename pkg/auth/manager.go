package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	bilog "github.com/nwesterhausen/pyblueiris/pkg/log"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Command names used by the handshake.
const (
	CmdLogin  = "login"
	CmdLogout = "logout"
)

// Capture state names.
const (
	stateNone     = "NONE"
	stateValid    = "VALID"
	stateExpired  = "EXPIRED"
	stateRejected = "REJECTED"
)

// Sender posts a request and returns the raw response object.
// *transport.Transport satisfies it.
type Sender interface {
	Send(ctx context.Context, req *wire.Request) (json.RawMessage, error)
}

// Observer is notified of every completed handshake.
type Observer interface {
	LoginCompleted(err error, elapsed time.Duration)
}

// Credentials are the login user name and password.
type Credentials struct {
	Username string
	Password string
}

// State is the current authentication state. A token the server reported as
// expired is kept with Valid false.
type State struct {
	Token    wire.Token
	IssuedAt time.Time
	Valid    bool
}

// Config configures a Manager.
type Config struct {
	Sender      Sender
	Credentials Credentials

	// Hasher computes the login response. Defaults to MD5Hasher.
	Hasher Hasher

	// OnLogin receives the data member of every committed login.
	OnLogin func(data json.RawMessage)

	Observer       Observer
	ProtocolLogger bilog.Logger
	ClientID       string
	Logger         *slog.Logger
}

// Manager owns the authentication state.
// It is safe for concurrent use.
type Manager struct {
	sender   Sender
	creds    Credentials
	hasher   Hasher
	onLogin  func(json.RawMessage)
	observer Observer
	capture  bilog.Logger
	clientID string
	logger   *slog.Logger

	// loginMu serializes handshakes; mu guards the fields below.
	loginMu sync.Mutex
	mu      sync.RWMutex
	state   State
	fatal   *AuthenticationError
	pending *pendingLogin

	// seq numbers handshakes; committed is the seq of the current state.
	seq       uint64
	committed uint64

	// now is replaceable in tests.
	now func() time.Time
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		sender:   cfg.Sender,
		creds:    cfg.Credentials,
		hasher:   cfg.Hasher,
		onLogin:  cfg.OnLogin,
		observer: cfg.Observer,
		capture:  bilog.OrNoop(cfg.ProtocolLogger),
		clientID: cfg.ClientID,
		logger:   cfg.Logger,
		now:      time.Now,
	}
	if m.hasher == nil {
		m.hasher = MD5Hasher
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Username returns the configured user name.
func (m *Manager) Username() string {
	return m.creds.Username
}

// EnsureAuthenticated returns a valid token, performing and committing the
// handshake if none is held.
func (m *Manager) EnsureAuthenticated(ctx context.Context) (wire.Token, error) {
	lease, err := m.Acquire(ctx)
	if err != nil {
		return wire.Token{}, err
	}
	lease.Commit()
	return lease.Token, nil
}

// Acquire returns a lease on a usable token. The current token is reused;
// otherwise a handshake runs and its token stays pending until the lease is
// committed. Concurrent callers share one pending handshake.
func (m *Manager) Acquire(ctx context.Context) (*Lease, error) {
	if lease, err := m.reuse(); lease != nil || err != nil {
		return lease, err
	}

	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	// Another caller may have completed the handshake while we waited.
	if lease, err := m.reuse(); lease != nil || err != nil {
		return lease, err
	}
	return m.login(ctx)
}

// Renew returns a lease on a token other than stale, which the server
// reported as expired. A newer committed or pending token is reused without
// contacting the server. Renew never changes the current state; that
// happens when the returned lease is committed.
func (m *Manager) Renew(ctx context.Context, stale wire.Token) (*Lease, error) {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	m.mu.RLock()
	st, fatal, p := m.state, m.fatal, m.pending
	m.mu.RUnlock()

	switch {
	case fatal != nil:
		return nil, fatal
	case p != nil && p.token != stale:
		return &Lease{Token: p.token, m: m, pending: p}, nil
	case st.Valid && st.Token != stale:
		return &Lease{Token: st.Token, m: m}, nil
	}
	return m.login(ctx)
}

// Invalidate marks stale as expired if it is the current token. The token is
// kept in State with Valid false. A staged handshake for stale is dropped.
func (m *Manager) Invalidate(stale wire.Token) {
	m.mu.Lock()
	if p := m.pending; p != nil && p.token == stale {
		m.pending = nil
	}
	if !m.state.Valid || m.state.Token != stale {
		m.mu.Unlock()
		return
	}
	old := stateName(m.state, m.fatal)
	m.state.Valid = false
	st := m.state
	m.mu.Unlock()

	m.logState(old, st, nil, "session expired")
}

// Logout ends the server session and clears the local state.
// The state is kept if no reply was received.
func (m *Manager) Logout(ctx context.Context) error {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	st := m.State()
	if !st.Valid {
		return nil
	}

	if _, err := m.sender.Send(ctx, wire.NewRequest(wire.NewMutation(CmdLogout), st.Token)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.setState(State{}, nil, "logout")
	return nil
}

// Reset clears the state, including a sticky credential rejection.
func (m *Manager) Reset() {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()
	m.setState(State{}, nil, "reset")
}

// reuse returns a lease on the current or pending token, or nil if a
// handshake is needed.
func (m *Manager) reuse() (*Lease, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.fatal != nil:
		return nil, m.fatal
	case m.state.Valid:
		return &Lease{Token: m.state.Token, m: m}, nil
	case m.pending != nil:
		return &Lease{Token: m.pending.token, m: m, pending: m.pending}, nil
	}
	return nil, nil
}

// login runs the handshake and stages its token. Caller holds loginMu.
func (m *Manager) login(ctx context.Context) (lease *Lease, err error) {
	start := m.now()
	defer func() {
		if m.observer != nil {
			m.observer.LoginCompleted(err, m.now().Sub(start))
		}
	}()

	raw, err := m.sender.Send(ctx, wire.NewRequest(wire.NewQuery(CmdLogin), wire.Token{}))
	if err != nil {
		return nil, err
	}
	challenge, err := wire.DecodeEnvelope(raw)
	if err != nil || challenge.Session == "" {
		return nil, &AuthenticationError{Reason: ReasonMalformedChallenge, Err: ErrMalformedChallenge}
	}

	tok := wire.Token{
		Session:  challenge.Session,
		Response: m.hasher(m.creds.Username, challenge.Session, m.creds.Password),
	}
	raw, err = m.sender.Send(ctx, wire.NewRequest(wire.NewQuery(CmdLogin), tok))
	if err != nil {
		return nil, err
	}
	reply, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return nil, &AuthenticationError{Reason: ReasonMalformedChallenge, Err: err}
	}

	// Nothing is recorded for a caller that has gone away.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if reply.Result != wire.ResultSuccess {
		authErr := &AuthenticationError{Reason: ReasonRejected, Detail: reply.Reason(), Err: ErrRejected}
		m.setState(State{}, authErr, authErr.Detail)
		m.logger.Warn("login rejected", "user", m.creds.Username, "reason", authErr.Detail)
		return nil, authErr
	}

	m.mu.Lock()
	m.seq++
	p := &pendingLogin{seq: m.seq, token: tok, issuedAt: m.now()}
	if reply.HasData() {
		p.data = reply.Data
	}
	m.pending = p
	m.mu.Unlock()

	m.logger.Debug("logged in", "user", m.creds.Username, "session", tok.Session)
	return &Lease{Token: tok, m: m, pending: p}, nil
}

// commit makes p the current state unless a newer handshake was committed
// or p was revoked.
func (m *Manager) commit(p *pendingLogin) {
	m.mu.Lock()
	if m.pending == p {
		m.pending = nil
	}
	if p.revoked || m.fatal != nil || p.seq <= m.committed {
		m.mu.Unlock()
		return
	}
	old := stateName(m.state, m.fatal)
	m.state = State{Token: p.token, IssuedAt: p.issuedAt, Valid: true}
	m.committed = p.seq
	st := m.state
	m.mu.Unlock()

	m.logState(old, st, nil, "")
	if m.onLogin != nil && p.data != nil {
		m.onLogin(p.data)
	}
}

// release forgets p as the shared pending handshake. Leases already holding
// p can still commit it.
func (m *Manager) release(p *pendingLogin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == p {
		m.pending = nil
	}
}

// setState replaces the state and revokes any pending handshake.
func (m *Manager) setState(st State, fatal *AuthenticationError, reason string) {
	m.mu.Lock()
	old := stateName(m.state, m.fatal)
	m.state = st
	m.fatal = fatal
	if m.pending != nil {
		m.pending.revoked = true
		m.pending = nil
	}
	m.committed = m.seq
	m.mu.Unlock()

	m.logState(old, st, fatal, reason)
}

func (m *Manager) logState(old string, st State, fatal *AuthenticationError, reason string) {
	m.capture.Log(bilog.Event{
		Timestamp: m.now(),
		ClientID:  m.clientID,
		Direction: bilog.DirectionIn,
		Stage:     bilog.StageAuth,
		Category:  bilog.CategoryState,
		Auth: &bilog.AuthEvent{
			OldState: old,
			NewState: stateName(st, fatal),
			Reason:   reason,
		},
	})
}

func stateName(st State, fatal *AuthenticationError) string {
	switch {
	case fatal != nil:
		return stateRejected
	case st.Valid:
		return stateValid
	case !st.Token.IsZero():
		return stateExpired
	default:
		return stateNone
	}
}

// IsRejected reports whether err is a credential rejection.
func IsRejected(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr) && authErr.IsFatal()
}
