package relay

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// retainPerTopic bounds how many messages a topic keeps. Older messages are
// dropped; a client that falls further behind simply misses them, which the
// sync layer tolerates the same way it tolerates lost gossip.
const retainPerTopic = 256

// Message is one relayed payload with its position in the topic stream.
type Message struct {
	Seq  uint64 `json:"seq"`
	Data []byte `json:"data"`
}

type publishRequest struct {
	Data []byte `json:"data"`
}

type topicQueue struct {
	next uint64
	msgs []Message
}

// Server is the in-memory relay. All state is lost on process exit.
type Server struct {
	mu     sync.RWMutex
	topics map[string]*topicQueue
	log    *log.Entry
}

func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{
		topics: make(map[string]*topicQueue),
		log:    logger.WithField("component", "relay"),
	}
}

// Handler returns the HTTP surface of the relay.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/topics/", s.handleTopic)
	return s.accessLog(mux)
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimPrefix(r.URL.Path, "/topics/")
	if topic == "" || strings.Contains(topic, "/") {
		http.Error(w, "bad topic", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.publish(w, r, topic)
	case http.MethodGet:
		s.fetch(w, r, topic)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request, topic string) {
	defer r.Body.Close()
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	q := s.topics[topic]
	if q == nil {
		q = &topicQueue{next: 1}
		s.topics[topic] = q
	}
	msg := Message{Seq: q.next, Data: req.Data}
	q.next++
	q.msgs = append(q.msgs, msg)
	if len(q.msgs) > retainPerTopic {
		q.msgs = q.msgs[len(q.msgs)-retainPerTopic:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg)
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request, topic string) {
	after := uint64(0)
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "bad after cursor", http.StatusBadRequest)
			return
		}
		after = n
	}

	s.mu.RLock()
	var out []Message
	if q := s.topics[topic]; q != nil {
		for _, m := range q.msgs {
			if m.Seq > after {
				out = append(out, m)
			}
		}
	}
	s.mu.RUnlock()

	if out == nil {
		out = []Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"took":   time.Since(start),
		}).Trace("request")
	})
}
