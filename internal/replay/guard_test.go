package replay

import (
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"packsync/internal/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeStore struct {
	records []domain.ReplayRecord
	fail    bool
}

func (s *fakeStore) Load() ([]domain.ReplayRecord, error) { return s.records, nil }

func (s *fakeStore) Save(records []domain.ReplayRecord) error {
	if s.fail {
		return errFail
	}
	s.records = append([]domain.ReplayRecord(nil), records...)
	return nil
}

var errFail = errors.New("save failed")

func testID(t *testing.T) domain.Digest {
	t.Helper()
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return domain.Digest(b)
}

func TestFreshThenReplay(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Now().UTC()}
	g, err := NewGuard(time.Hour, WithClock(clk))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	id := testID(t)

	if !g.CheckAndRecord(id) {
		t.Fatal("first record should be fresh")
	}
	if g.CheckAndRecord(id) {
		t.Fatal("second record should be a replay")
	}
	if !g.Seen(id) {
		t.Fatal("recorded id should be seen")
	}
}

func TestRejectsZeroID(t *testing.T) {
	t.Parallel()
	g, err := NewGuard(time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if g.CheckAndRecord(domain.Digest{}) {
		t.Fatal("zero id must be rejected")
	}
}

func TestTTLExpiryAllowsReuse(t *testing.T) {
	t.Parallel()
	base := time.Now().UTC()
	clk := &fakeClock{now: base}
	g, err := NewGuard(time.Hour, WithClock(clk))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	id := testID(t)

	if !g.CheckAndRecord(id) {
		t.Fatal("first record should be fresh")
	}
	clk.now = base.Add(61 * time.Minute)
	if g.Seen(id) {
		t.Fatal("expired record should be treated as unseen")
	}
	if !g.CheckAndRecord(id) {
		t.Fatal("expired id should be recordable again")
	}
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Now().UTC()}
	g, err := NewGuard(time.Hour, WithClock(clk), WithCapacity(3))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}

	first := testID(t)
	if !g.CheckAndRecord(first) {
		t.Fatal("record failed")
	}
	for i := 0; i < 3; i++ {
		clk.now = clk.now.Add(time.Second)
		if !g.CheckAndRecord(testID(t)) {
			t.Fatal("record failed")
		}
	}

	if g.Len() != 3 {
		t.Fatalf("len: got %d, want 3", g.Len())
	}
	if g.Seen(first) {
		t.Fatal("oldest record should have been evicted")
	}
}

// TestConcurrentCheckAndRecordIsLinearizable hammers one id from many
// goroutines at once. Exactly one caller may win; everything else must see
// a replay. Run with -race.
func TestConcurrentCheckAndRecordIsLinearizable(t *testing.T) {
	t.Parallel()
	g, err := NewGuard(time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}

	const goroutines = 32
	for i := 0; i < 100; i++ {
		id := testID(t)
		start := make(chan struct{})
		wins := make(chan bool, goroutines)
		for j := 0; j < goroutines; j++ {
			go func() {
				<-start
				wins <- g.CheckAndRecord(id)
			}()
		}
		close(start)

		accepted := 0
		for j := 0; j < goroutines; j++ {
			if <-wins {
				accepted++
			}
		}
		if accepted != 1 {
			t.Fatalf("round %d: %d concurrent acceptances, want exactly 1", i, accepted)
		}
	}
}

func TestPersistenceSurvivesRestart(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Now().UTC()}
	fs := &fakeStore{}

	g, err := NewGuard(time.Hour, WithClock(clk), WithStore(fs))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	id := testID(t)
	if !g.CheckAndRecord(id) {
		t.Fatal("record failed")
	}

	// "Restart": a new guard over the same store must keep the window shut.
	g2, err := NewGuard(time.Hour, WithClock(clk), WithStore(fs))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if g2.CheckAndRecord(id) {
		t.Fatal("replay window must survive restart")
	}
}

func TestPersistenceDropsExpiredOnLoad(t *testing.T) {
	t.Parallel()
	base := time.Now().UTC()
	clk := &fakeClock{now: base}
	fs := &fakeStore{records: []domain.ReplayRecord{
		{MsgID: testID(t), SeenAt: base.Add(-2 * time.Hour)},
		{MsgID: testID(t), SeenAt: base.Add(-time.Minute)},
	}}

	g, err := NewGuard(time.Hour, WithClock(clk), WithStore(fs))
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("len after load: got %d, want 1", g.Len())
	}
}
