package natsadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

// ErrFixTimeout is reported when no fix arrives within WatchOptions.Timeout.
var ErrFixTimeout = errors.New("no position fix within timeout")

// FixMessage is the payload devices publish on <prefix>.<device>.
type FixMessage struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FixSource is a ports.PositionSource fed by a device publishing fixes over
// core NATS, e.g. a field responder's phone.
type FixSource struct {
	conn    *nats.Conn
	subject string
	now     func() time.Time
}

// NewFixSource watches prefix.device on conn.
func NewFixSource(conn *nats.Conn, prefix, device string) *FixSource {
	return &FixSource{conn: conn, subject: FixSubject(prefix, device), now: time.Now}
}

// FixSubject is the subject a device publishes its fixes on.
func FixSubject(prefix, device string) string {
	if prefix == "" {
		prefix = SubjectFixPrefix
	}
	return prefix + "." + device
}

// PublishFix sends one fix for device over core NATS.
func PublishFix(conn *nats.Conn, prefix, device string, m FixMessage) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal fix: %w", err)
	}
	return conn.Publish(FixSubject(prefix, device), data)
}

// Subject is the NATS subject the source listens on.
func (s *FixSource) Subject() string { return s.subject }

// Watch subscribes to the device subject. Fixes older than opts.MaximumAge
// are skipped, and opts.Timeout without a fix reports ErrFixTimeout.
func (s *FixSource) Watch(opts ports.WatchOptions, onFix func(domain.Fix), onError func(error)) (ports.Subscription, error) {
	w := &fixWatch{opts: opts, onFix: onFix, onError: onError, now: s.now}

	w.mu.Lock()
	sub, err := s.conn.Subscribe(s.subject, w.handle)
	w.sub = sub
	w.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	w.resetTimeout()
	return w, nil
}

// fixWatch delivers callbacks one at a time under deliver. Cancel never
// takes deliver, so a consumer may cancel while holding the lock its own
// callbacks wait on.
type fixWatch struct {
	opts    ports.WatchOptions
	onFix   func(domain.Fix)
	onError func(error)
	now     func() time.Time

	deliver sync.Mutex
	stopped atomic.Bool

	mu    sync.Mutex
	sub   *nats.Subscription
	timer *time.Timer
}

func (w *fixWatch) handle(msg *nats.Msg) {
	if w.stopped.Load() {
		return
	}

	var m FixMessage
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		w.emit(func() { w.onError(fmt.Errorf("decode fix: %w", err)) })
		return
	}
	if m.Error != "" {
		w.emit(func() { w.onError(errors.New(m.Error)) })
		return
	}
	if w.opts.MaximumAge > 0 && !m.Timestamp.IsZero() && w.now().Sub(m.Timestamp) > w.opts.MaximumAge {
		return
	}
	w.resetTimeout()
	fix := domain.Fix{Location: domain.Location{Lat: m.Lat, Lng: m.Lng}, AccuracyMeters: m.Accuracy}
	w.emit(func() { w.onFix(fix) })
}

func (w *fixWatch) emit(f func()) {
	w.deliver.Lock()
	defer w.deliver.Unlock()
	if w.stopped.Load() {
		return
	}
	f()
}

func (w *fixWatch) resetTimeout() {
	if w.opts.Timeout <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Timeout, func() {
		w.emit(func() { w.onError(ErrFixTimeout) })
	})
}

func (w *fixWatch) Cancel() {
	if w.stopped.Swap(true) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.sub != nil {
		_ = w.sub.Unsubscribe()
	}
}
