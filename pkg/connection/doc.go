// Package connection keeps a periodic refresh running against a server that
// may be unreachable for a while.
//
// A Watcher calls its poll function every interval. When a poll reports the
// server unreachable, the next attempt is delayed with exponential backoff:
//
//  1. Initial delay: 2 seconds
//  2. Doubling: 4s, 8s, 16s ...
//  3. Maximum delay: 5 minutes
//  4. Back to the regular interval after the first successful poll
//
// Each delay gets up to 25% random jitter so that several clients watching
// the same server do not retry in lockstep.
package connection
