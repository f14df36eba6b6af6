package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"packsync/internal/domain"
)

// DefaultPollInterval is how often a subscriber asks the relay for new
// messages when the previous poll succeeded.
const DefaultPollInterval = 2 * time.Second

// Client talks to a relay server and presents it as a Transport. Subscribe
// polls; failed polls back off exponentially and recover on the next
// success.
type Client struct {
	base string
	http *http.Client
	poll time.Duration
	log  *log.Entry
}

// NewClient builds a client for the relay at base, e.g.
// "http://localhost:8080". A poll of 0 means DefaultPollInterval.
func NewClient(base string, poll time.Duration, logger *log.Logger) *Client {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
		poll: poll,
		log:  logger.WithField("component", "relay-client"),
	}
}

var _ domain.Transport = (*Client)(nil)

// Publish enqueues data on topic.
func (c *Client) Publish(ctx context.Context, topic domain.Topic, data []byte) error {
	body := new(bytes.Buffer)
	if err := json.NewEncoder(body).Encode(publishRequest{Data: data}); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.topicURL(topic), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", topic, resp.Status)
	}
	return nil
}

// Subscribe starts a polling loop delivering every new message on topic to
// handler, in order. The returned cancel stops the loop.
func (c *Client) Subscribe(topic domain.Topic, handler func(data []byte)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	go c.pollLoop(ctx, topic, handler)

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (c *Client) pollLoop(ctx context.Context, topic domain.Topic, handler func(data []byte)) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.poll
	policy.MaxInterval = 10 * c.poll
	policy.MaxElapsedTime = 0

	var after uint64
	wait := c.poll
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		msgs, err := c.fetch(ctx, topic, after)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.WithError(err).WithField("topic", topic).Debug("poll failed")
			wait = policy.NextBackOff()
			continue
		}
		policy.Reset()
		wait = c.poll

		for _, m := range msgs {
			handler(m.Data)
			after = m.Seq
		}
	}
}

func (c *Client) fetch(ctx context.Context, topic domain.Topic, after uint64) ([]Message, error) {
	u := c.topicURL(topic) + "?after=" + strconv.FormatUint(after, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("relay get %s: %s", topic, resp.Status)
	}
	var msgs []Message
	return msgs, json.NewDecoder(resp.Body).Decode(&msgs)
}

func (c *Client) topicURL(topic domain.Topic) string {
	return c.base + "/topics/" + url.PathEscape(string(topic))
}
