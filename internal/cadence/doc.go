// Package cadence maps a power/urgency profile to the publish and heartbeat
// interval of the sync loop.
//
// The controller holds the current profile and ambient signals; a Runner
// drives a periodic function and re-reads the effective interval on every
// tick and on every profile change, so retuning never requires restarting
// the running task.
package cadence
