// Package hashwork runs streaming SHA-256 off the caller's goroutine.
//
// A Job is a cancellable handle over a background hash: progress events are
// delivered on a channel at chunk boundaries, cancellation is the job
// context and takes effect within one chunk's processing time, and the final
// digest is collected with Wait. The digest depends only on the input bytes,
// never on the chunk size chosen.
package hashwork
