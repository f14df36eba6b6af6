package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestRelayRoundTrip(t *testing.T) {
	srv := startRelay(t)
	pub := NewClient(srv.URL, 10*time.Millisecond, nil)
	sub := NewClient(srv.URL, 10*time.Millisecond, nil)

	got := make(chan []byte, 8)
	cancel, err := sub.Subscribe("maps", func(data []byte) { got <- data })
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, pub.Publish(context.Background(), "maps", []byte("one")))
	require.NoError(t, pub.Publish(context.Background(), "maps", []byte("two")))

	for _, want := range []string{"one", "two"} {
		select {
		case data := <-got:
			require.Equal(t, want, string(data))
		case <-time.After(5 * time.Second):
			t.Fatalf("message %q never arrived", want)
		}
	}
}

func TestRelayCursorSkipsDelivered(t *testing.T) {
	srv := startRelay(t)
	c := NewClient(srv.URL, 10*time.Millisecond, nil)

	require.NoError(t, c.Publish(context.Background(), "maps", []byte("a")))
	require.NoError(t, c.Publish(context.Background(), "maps", []byte("b")))

	msgs, err := c.fetch(context.Background(), "maps", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	msgs, err = c.fetch(context.Background(), "maps", msgs[1].Seq)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestRelayTopicsAreIsolated(t *testing.T) {
	srv := startRelay(t)
	c := NewClient(srv.URL, 10*time.Millisecond, nil)

	require.NoError(t, c.Publish(context.Background(), "maps", []byte("a")))

	msgs, err := c.fetch(context.Background(), "weather", 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestRelayRetainsBoundedHistory(t *testing.T) {
	srv := startRelay(t)
	c := NewClient(srv.URL, 10*time.Millisecond, nil)

	for i := 0; i < retainPerTopic+10; i++ {
		require.NoError(t, c.Publish(context.Background(), "maps", []byte{byte(i)}))
	}

	msgs, err := c.fetch(context.Background(), "maps", 0)
	require.NoError(t, err)
	require.Len(t, msgs, retainPerTopic)
	// The oldest ten were dropped, so the window starts at seq 11.
	require.Equal(t, uint64(11), msgs[0].Seq)
}

func TestRelayRejectsBadRequests(t *testing.T) {
	srv := startRelay(t)

	resp, err := http.Get(srv.URL + "/topics/maps?after=notanumber")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/topics/", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubscribeCancelStopsPolling(t *testing.T) {
	srv := startRelay(t)
	c := NewClient(srv.URL, 10*time.Millisecond, nil)

	got := make(chan []byte, 8)
	cancel, err := c.Subscribe("maps", func(data []byte) { got <- data })
	require.NoError(t, err)
	cancel()
	cancel() // idempotent

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, c.Publish(context.Background(), "maps", []byte("late")))

	select {
	case data := <-got:
		t.Fatalf("delivery after cancel: %q", data)
	case <-time.After(100 * time.Millisecond):
	}
}
