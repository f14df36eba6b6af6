// Package replay tracks recently seen sync-message identifiers.
//
// The guard is a bounded, time-windowed set: records expire after a fixed
// TTL and, when the capacity bound is reached, the oldest records are
// evicted first. Availability of recent-replay protection wins over
// unbounded memory growth. Check-and-record is linearizable per message id;
// the guard is a single mutually exclusive resource.
//
// Records are persisted through a domain.ReplayStore so a restart does not
// re-open the replay window.
package replay
