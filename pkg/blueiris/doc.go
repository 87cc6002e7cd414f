// Package blueiris is a client for the Blue Iris JSON API.
//
// A Client logs in with the server's challenge-response handshake, sends
// commands with the session token, renews the session once when the server
// reports it expired, and keeps the normalized results in an attribute
// store keyed by command family:
//
//	c, err := blueiris.New(blueiris.Config{
//		Protocol: "http",
//		Host:     "192.168.1.5",
//		Username: "pyserv",
//		Password: "secret-password",
//	})
//	if err != nil {
//		return err
//	}
//	if _, err := c.Execute(ctx, wire.NewQuery("status")); err != nil {
//		return err
//	}
//	signal, _ := c.Store().Get("status.signal")
//
// UpdateAllInformation runs the full refresh sequence and reports failures
// per command. The camera, profile and system helpers wrap the individual
// camconfig, ptz, status, sysconfig and trigger commands.
package blueiris
