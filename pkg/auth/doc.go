// Package auth implements the Blue Iris challenge-response login.
//
// The handshake takes two requests. The first {"cmd":"login"} returns a
// session challenge. The client then proves knowledge of the password by
// sending a hash of "user:session:password" together with the session. A
// successful second step yields the token attached to every later command.
//
// Manager serializes handshakes so that concurrent callers trigger exactly
// one login. Acquire and Renew hand out a Lease; a token from a fresh
// handshake is staged on the lease and becomes the current state, with its
// login data passed to OnLogin, only when the lease is committed. A caller
// that gives up releases the lease and the state is left as it was.
// EnsureAuthenticated commits immediately. Invalidate marks a token the
// server rejected as expired without discarding it. Credential
// rejection is sticky: later calls fail fast with the same error until
// Reset is called.
package auth
