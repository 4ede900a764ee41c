package activity

import (
	"context"
	"log"
	"sync"
	"time"
)

// Event describes a single mutation on the public surface. RequestedData
// carries the serialized inbound payload; CurrentInstance carries the
// serialized pre-mutation snapshot, so downstream consumers can diff
// updates and reference deleted rows.
type Event struct {
	Type            string  `json:"type"`
	ActorID         string  `json:"actor_id"`
	IssueID         *string `json:"issue_id"`
	ProjectID       string  `json:"project_id"`
	RequestedData   *string `json:"requested_data"`
	CurrentInstance *string `json:"current_instance"`
	Epoch           int64   `json:"epoch"`
}

// Sink receives dispatched events. Delivery errors are logged by the
// dispatcher and never surfaced to the request path.
type Sink interface {
	Deliver(ctx context.Context, evt Event) error
}

// Dispatcher fans events out to sinks from a single worker goroutine.
// Emit never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	queue   chan Event
	sinks   []Sink
	timeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

const defaultDeliverTimeout = 5 * time.Second

func NewDispatcher(queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		queue:   make(chan Event, queueSize),
		sinks:   sinks,
		timeout: defaultDeliverTimeout,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit enqueues an event without waiting for delivery.
func (d *Dispatcher) Emit(evt Event) {
	select {
	case d.queue <- evt:
	default:
		log.Printf("activity: queue full, dropping event type=%s project=%s", evt.Type, evt.ProjectID)
	}
}

// Close stops the worker after draining queued events.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		d.deliver(evt)
	}
}

func (d *Dispatcher) deliver(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, evt); err != nil {
			log.Printf("activity: deliver type=%s failed: %v", evt.Type, err)
		}
	}
}
