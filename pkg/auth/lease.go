package auth

import (
	"encoding/json"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// pendingLogin is a completed handshake whose token is not yet the current
// state. Fields other than revoked are immutable; revoked is guarded by the
// Manager's mu.
type pendingLogin struct {
	seq      uint64
	token    wire.Token
	issuedAt time.Time
	data     json.RawMessage
	revoked  bool
}

// Lease is a token handed to one command. A token from a fresh handshake
// stays pending until Commit, so a caller that gives up can drop it with
// Release and leave the state as it was.
type Lease struct {
	Token wire.Token

	m       *Manager
	pending *pendingLogin
}

// Pending reports whether the token came from a handshake that has not been
// committed through this lease.
func (l *Lease) Pending() bool {
	return l != nil && l.pending != nil
}

// Commit makes a pending token the current state and delivers its login data
// to OnLogin. It does nothing for a token that was already current.
func (l *Lease) Commit() {
	if !l.Pending() {
		return
	}
	l.m.commit(l.pending)
	l.pending = nil
}

// Release drops a pending token so later callers run their own handshake.
// The state is not touched.
func (l *Lease) Release() {
	if !l.Pending() {
		return
	}
	l.m.release(l.pending)
	l.pending = nil
}
