// Package log records the client's protocol traffic.
//
// Operational messages go through log/slog. This package is the other
// channel: a structured trace of every command, response, session change
// and failure, kept as data so it can be filtered and exported later.
//
// A Logger receives Events. Three implementations are provided:
//
//	fl, _ := log.NewFileLogger("client" + log.FileExt) // CBOR capture file
//	sa := log.NewSlogAdapter(slog.Default())            // debug-level slog lines
//	cfg.ProtocolLogger = log.NewMultiLogger(fl, sa)     // both
//
// Every Event carries exactly one of Request, Response, Auth or Error.
// The login response hash never appears in a capture.
//
// Capture files are a plain concatenation of CBOR records. A Reader with
// a Filter streams them back; the bilog command views, filters and
// exports them.
package log
