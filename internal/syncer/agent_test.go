package syncer_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"packsync/internal/crypto"
	"packsync/internal/domain"
	"packsync/internal/envelope"
	"packsync/internal/replay"
	"packsync/internal/syncer"
	"packsync/internal/transport"
)

// fastSource ticks the agents at test speed.
type fastSource struct{ d time.Duration }

func (s fastSource) EffectiveInterval() time.Duration { return s.d }
func (s fastSource) Changed() <-chan struct{}         { return nil }

type applied struct {
	mu   sync.Mutex
	docs map[domain.DocID][]byte
}

func (a *applied) apply(docID domain.DocID, payload []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.docs == nil {
		a.docs = make(map[domain.DocID][]byte)
	}
	a.docs[docID] = payload
}

func (a *applied) get(docID domain.DocID) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	payload, ok := a.docs[docID]
	return payload, ok
}

// newPeerAgents builds two agents on the shared bus for one topic: each
// signs with its own key and verifies the other's, both derive the same
// symmetric key from the shared passphrase.
func newPeerAgents(t *testing.T, bus domain.Transport, topic domain.Topic, interval time.Duration, applyB syncer.ApplyFunc) (*syncer.Agent, *syncer.Agent) {
	t.Helper()

	key, err := envelope.DeriveKey("expedition passphrase", envelope.SaltForTopic(string(topic)))
	require.NoError(t, err)

	privA, pubA, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	privB, pubB, err := crypto.GenerateEd25519()
	require.NoError(t, err)

	guardA, err := replay.NewGuard(replay.DefaultTTL)
	require.NoError(t, err)
	guardB, err := replay.NewGuard(replay.DefaultTTL)
	require.NoError(t, err)

	envA, err := envelope.New(topic, key, privA, pubB, guardA, nil)
	require.NoError(t, err)
	envB, err := envelope.New(topic, key, privB, pubA, guardB, nil)
	require.NoError(t, err)

	src := fastSource{d: interval}
	agentA := syncer.NewAgent(topic, envA, bus, src, nil, nil)
	agentB := syncer.NewAgent(topic, envB, bus, src, applyB, nil)
	return agentA, agentB
}

func run(t *testing.T, ctx context.Context, agents ...*syncer.Agent) {
	t.Helper()
	var wg sync.WaitGroup
	for _, a := range agents {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Run(ctx); err != nil {
				t.Errorf("agent run: %v", err)
			}
		}()
	}
	t.Cleanup(wg.Wait)
}

func TestAgentDeliversQueuedDocument(t *testing.T) {
	bus := transport.NewBus(nil)
	var got applied
	agentA, agentB := newPeerAgents(t, bus, "maps", 10*time.Millisecond, got.apply)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run(t, ctx, agentA, agentB)

	agentA.Enqueue("region-alps", []byte(`{"tiles":128}`))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if payload, ok := got.get("region-alps"); ok {
			require.JSONEq(t, `{"tiles":128}`, string(payload))
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("document never applied on the receiving peer")
}

func TestAgentEmitsHeartbeatsWhenIdle(t *testing.T) {
	bus := transport.NewBus(nil)
	agentA, _ := newPeerAgents(t, bus, "maps", 10*time.Millisecond, nil)

	var heartbeats atomic.Int32
	cancelTap, err := bus.Subscribe("maps", func(data []byte) {
		var msg domain.SyncMessage
		if json.Unmarshal(data, &msg) == nil && msg.DocID == syncer.HeartbeatDocID {
			heartbeats.Add(1)
		}
	})
	require.NoError(t, err)
	defer cancelTap()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run(t, ctx, agentA)

	deadline := time.Now().Add(5 * time.Second)
	for heartbeats.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.GreaterOrEqual(t, heartbeats.Load(), int32(2), "idle agent must keep heartbeating")
}

func TestAgentIgnoresGarbageAndForeignSignatures(t *testing.T) {
	bus := transport.NewBus(nil)
	var got applied
	agentA, agentB := newPeerAgents(t, bus, "maps", 10*time.Millisecond, got.apply)

	// A second key pair unknown to either agent.
	intruder, agentB2 := newPeerAgents(t, bus, "maps", 10*time.Millisecond, nil)
	_ = agentB2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run(t, ctx, agentA, agentB, intruder)

	intruder.Enqueue("region-alps", []byte("forged"))
	agentA.Enqueue("region-alps", []byte("genuine"))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := got.get("region-alps"); ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	payload, ok := got.get("region-alps")
	require.True(t, ok, "genuine document never arrived")
	require.Equal(t, "genuine", string(payload))

	// Give the forged copy time to arrive too; it must never overwrite.
	time.Sleep(50 * time.Millisecond)
	payload, _ = got.get("region-alps")
	require.Equal(t, "genuine", string(payload))
}

func TestAgentStopsOnCancel(t *testing.T) {
	bus := transport.NewBus(nil)
	agentA, _ := newPeerAgents(t, bus, "maps", 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agentA.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "clean cancellation must not report an error")
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}
