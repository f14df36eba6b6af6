package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"packsync/internal/cadence"
	"packsync/internal/domain"
	"packsync/internal/envelope"
)

// HeartbeatDocID marks the keepalive message the publish loop emits when the
// outgoing queue is empty. Receivers never hand heartbeats to the apply
// callback.
const HeartbeatDocID domain.DocID = "__heartbeat__"

// ApplyFunc receives a verified, decrypted document payload.
type ApplyFunc func(docID domain.DocID, payload []byte)

type queued struct {
	doc     domain.DocID
	payload []byte
}

// Agent is the background sync loop for one topic. Outgoing documents are
// queued with Enqueue and flushed at the cadence the interval source
// dictates; incoming wire bytes are opened through the envelope and applied.
// Rejected messages are logged and dropped, never surfaced to callers.
type Agent struct {
	topic     domain.Topic
	env       *envelope.Service
	transport domain.Transport
	intervals cadence.IntervalSource
	apply     ApplyFunc
	log       *log.Entry

	mu    sync.Mutex
	queue []queued
}

// NewAgent wires an agent. apply may be nil when the caller only publishes.
func NewAgent(
	topic domain.Topic,
	env *envelope.Service,
	transport domain.Transport,
	intervals cadence.IntervalSource,
	apply ApplyFunc,
	logger *log.Logger,
) *Agent {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Agent{
		topic:     topic,
		env:       env,
		transport: transport,
		intervals: intervals,
		apply:     apply,
		log:       logger.WithField("component", "syncer").WithField("topic", topic),
	}
}

// Enqueue queues a document for the next flush. Safe for concurrent use.
func (a *Agent) Enqueue(docID domain.DocID, payload []byte) {
	a.mu.Lock()
	a.queue = append(a.queue, queued{doc: docID, payload: append([]byte(nil), payload...)})
	a.mu.Unlock()
}

// Run blocks until ctx is cancelled, driving the publish loop and the
// subscription. A clean cancellation returns nil.
func (a *Agent) Run(ctx context.Context) error {
	cancelSub, err := a.transport.Subscribe(a.topic, a.receive)
	if err != nil {
		return err
	}
	defer cancelSub()

	g, ctx := errgroup.WithContext(ctx)
	runner := cadence.NewRunner(a.intervals, a.flush)
	g.Go(func() error { return runner.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// flush publishes everything queued since the last tick, or a heartbeat when
// nothing is pending.
func (a *Agent) flush(ctx context.Context) {
	a.mu.Lock()
	batch := a.queue
	a.queue = nil
	a.mu.Unlock()

	if len(batch) == 0 {
		ts := time.Now().UTC().Format(time.RFC3339Nano)
		batch = []queued{{doc: HeartbeatDocID, payload: []byte(ts)}}
	}

	for _, item := range batch {
		if err := a.publish(ctx, item.doc, item.payload); err != nil {
			a.log.WithError(err).WithField("doc", item.doc).Warn("publish failed")
			// Put the document back so the next tick retries it.
			if item.doc != HeartbeatDocID {
				a.mu.Lock()
				a.queue = append(a.queue, item)
				a.mu.Unlock()
			}
		}
	}
}

func (a *Agent) publish(ctx context.Context, docID domain.DocID, payload []byte) error {
	msg, err := a.env.Seal(docID, payload)
	if err != nil {
		return err
	}
	wire, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return a.transport.Publish(ctx, a.topic, wire)
}

// receive opens one wire message. Every reject path ends here: garbage and
// replay traffic from the network is expected noise, so nothing propagates.
func (a *Agent) receive(data []byte) {
	var msg domain.SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		a.log.WithError(err).Debug("undecodable wire message")
		return
	}

	payload, err := a.env.Open(&msg)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrReplayRejected):
		entry := a.log.WithField("doc", msg.DocID)
		if id, derr := envelope.MessageID(&msg); derr == nil {
			entry = entry.WithField("msg_id", id)
		}
		entry.Debug("replay dropped")
		return
	default:
		a.log.WithError(err).WithField("doc", msg.DocID).Warn("message rejected")
		return
	}

	if msg.DocID == HeartbeatDocID {
		a.log.Trace("heartbeat received")
		return
	}
	if a.apply != nil {
		a.apply(msg.DocID, payload)
	}
}
