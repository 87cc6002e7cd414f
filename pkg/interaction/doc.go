// Package interaction dispatches Blue Iris commands.
//
// The Dispatcher is the single path every command takes:
//
//  1. ensure a session exists (one handshake, shared by concurrent callers)
//  2. send the command and decode the response envelope
//  3. on an expired session, renew once and resend; a second expiry fails
//  4. map a "fail" result to a CommandError
//  5. normalize the payload and replace the command's attribute family
//
// # Usage
//
//	d := interaction.NewDispatcher(interaction.Config{
//	    Sender: tr,
//	    Auth:   authMgr,
//	    Store:  store,
//	})
//
//	res, err := d.Execute(ctx, wire.NewQuery("status"))
//
// A cancelled context never commits anything. A handshake made for the
// command, the expiry of a rejected token and the normalized result are
// applied together, after the full response has been received and only if
// ctx is still live.
package interaction
