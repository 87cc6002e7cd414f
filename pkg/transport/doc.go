// Package transport sends Blue Iris commands over HTTP.
//
// A Transport posts one JSON request object to the server's /json endpoint
// and returns the raw response object. It attaches the session token when
// one is present, never retries and never interprets the envelope: status
// classification and re-authentication belong to the caller.
//
// The HTTP client is supplied by the caller through the Doer interface and
// is never closed or reconfigured by the transport. BuildHTTPClient creates
// one for callers that do not already own a client.
//
// Every exchange is reported to a protocol capture logger (see pkg/log) with
// the response hash redacted.
package transport
