// Package discovery finds Blue Iris servers on the local network.
//
// Blue Iris does not advertise a dedicated service type. Discovery browses
// mDNS for web servers (_http._tcp) and probes each one with the first step
// of the login handshake; servers that answer with a session are Blue Iris.
//
//	servers, err := discovery.Discover(ctx, discovery.Config{})
package discovery
