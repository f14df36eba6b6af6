// Package syncer runs the background sync agent: a cadence-driven publish
// loop draining an outgoing document queue, and a subscription pumping
// incoming wire bytes through the secure envelope.
package syncer
