package hashwork

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"time"

	"packsync/internal/domain"
)

// DefaultChunkSize is the read granularity between cancellation checks.
const DefaultChunkSize = 2 << 20 // 2 MiB

// Progress is reported once per processed chunk.
type Progress struct {
	BytesProcessed int64
	TotalBytes     int64   // -1 when unknown
	Rate           float64 // instantaneous bytes/sec over the last chunk
}

// Hasher configures background hashing. The zero value uses
// DefaultChunkSize.
type Hasher struct {
	ChunkSize int
}

// Job is a handle on one background hash.
type Job struct {
	progress chan Progress
	done     chan struct{}

	digest domain.Digest
	bytes  int64
	err    error
}

// Start begins hashing src on a new goroutine. total is the expected size
// for progress reporting (-1 when unknown); it does not bound the read.
func (h Hasher) Start(ctx context.Context, src io.Reader, total int64) *Job {
	chunk := h.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	j := &Job{
		progress: make(chan Progress, 16),
		done:     make(chan struct{}),
	}
	go j.run(ctx, src, total, chunk)
	return j
}

// Progress returns the progress channel. It is closed when the job ends.
func (j *Job) Progress() <-chan Progress { return j.progress }

// Wait blocks until the job ends and returns the digest. A cancelled job
// returns domain.ErrCancelled and a zero digest; nothing is retained.
func (j *Job) Wait() (domain.Digest, error) {
	<-j.done
	return j.digest, j.err
}

// BytesProcessed reports how many bytes were hashed. Valid after Wait.
func (j *Job) BytesProcessed() int64 {
	<-j.done
	return j.bytes
}

func (j *Job) run(ctx context.Context, src io.Reader, total int64, chunk int) {
	defer close(j.done)
	defer close(j.progress)

	hash := sha256.New()
	buf := make([]byte, chunk)
	var processed int64

	for {
		select {
		case <-ctx.Done():
			j.err = errors.Join(domain.ErrCancelled, ctx.Err())
			return
		default:
		}

		start := time.Now()
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			hash.Write(buf[:n])
			processed += int64(n)
			j.emit(processed, total, n, time.Since(start))
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			j.err = err
			return
		}
	}

	j.bytes = processed
	copy(j.digest[:], hash.Sum(nil))
}

// emit delivers a progress event without ever blocking the hash loop: if
// the consumer is behind, the oldest event is dropped in its favour.
func (j *Job) emit(processed, total int64, n int, elapsed time.Duration) {
	rate := float64(n) / max(elapsed.Seconds(), 1e-9)
	p := Progress{BytesProcessed: processed, TotalBytes: total, Rate: rate}
	for {
		select {
		case j.progress <- p:
			return
		default:
			select {
			case <-j.progress:
			default:
			}
		}
	}
}

// Sum is the synchronous convenience form: it runs a job and waits for it.
func Sum(ctx context.Context, src io.Reader, total int64) (domain.Digest, int64, error) {
	j := Hasher{}.Start(ctx, src, total)
	for range j.Progress() {
	}
	d, err := j.Wait()
	return d, j.BytesProcessed(), err
}
