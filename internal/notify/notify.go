// Package notify delivers best-effort notifications about project and task
// state transitions. Delivery happens in the background; failures are logged
// and never returned.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindProjectAssignment Kind = "project-assignment"
	KindTaskAssignment    Kind = "task-assignment"
	KindTaskCompleted     Kind = "task-completed"
	KindProjectCompleted  Kind = "project-completed"
	KindProjectReopened   Kind = "project-reopened"
	KindNewCredentials    Kind = "new-credentials"
)

// Details carries the values interpolated into a notification template.
// Unused fields are ignored by the template of a given kind.
type Details struct {
	ProjectName string
	ProjectID   string
	TaskName    string
	TaskID      string
	CompletedBy string
	Username    string
	Password    string
}

// Message is a rendered notification ready for a transport.
type Message struct {
	Kind    Kind     `json:"kind"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender is a notification transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier is what the domain services depend on. Notify must not block on
// delivery.
type Notifier interface {
	Notify(kind Kind, recipients []string, details Details) bool
}

const (
	defaultTimeout   = 10 * time.Second
	defaultQueueSize = 256
	defaultWorkers   = 4
)

// Dispatcher renders notifications on the caller's goroutine and delivers them
// from a small worker pool, each send bounded by timeout. Delivery is
// at-most-once: a full queue or a failed send drops the message with a log line.
type Dispatcher struct {
	sender    Sender
	log       *logrus.Logger
	timeout   time.Duration
	serverURL string

	queue  chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, log *logrus.Logger, timeout time.Duration, serverURL string) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d := &Dispatcher{
		sender:    sender,
		log:       log,
		timeout:   timeout,
		serverURL: strings.TrimRight(serverURL, "/"),
		queue:     make(chan Message, defaultQueueSize),
	}

	d.wg.Add(defaultWorkers)
	for i := 0; i < defaultWorkers; i++ {
		go d.work()
	}
	return d
}

// Notify queues a notification and reports whether it was accepted. It never
// waits for the transport.
func (d *Dispatcher) Notify(kind Kind, recipients []string, details Details) (ok bool) {
	entry := d.log.WithField("kind", kind)

	defer func() {
		if r := recover(); r != nil {
			entry.WithField("panic", r).Error("Notification dispatch panicked")
			ok = false
		}
	}()

	to := uniqueRecipients(recipients)
	if len(to) == 0 {
		entry.Debug("Notification skipped: no recipients")
		return false
	}
	entry = entry.WithField("recipients", len(to))

	msg, err := render(kind, to, d.serverURL, details)
	if err != nil {
		entry.WithError(err).Error("Failed to render notification")
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		entry.Warn("Notification dropped: dispatcher closed")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		entry.Warn("Notification dropped: queue full")
		return false
	}
}

// Close stops accepting notifications and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	entry := d.log.WithFields(logrus.Fields{"kind": msg.Kind, "recipients": len(msg.To)})

	defer func() {
		if r := recover(); r != nil {
			entry.WithField("panic", r).Error("Notification transport panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		entry.WithError(err).Warn("Failed to deliver notification")
		return
	}
	entry.Debug("Notification delivered")
}

func uniqueRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Notify(Kind, []string, Details) bool { return false }

func errUnknownKind(kind Kind) error {
	return fmt.Errorf("unknown notification kind %q", kind)
}
