package events

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Emitter enriches domain events with execution metadata and delivers them to
// the consumer channel in emission order.
//
// Emit never blocks on a slow consumer: events land on an unbounded FIFO
// under a short critical section that also assigns the sequence number, and a
// single drain goroutine forwards them to the outbound channel. Sequence
// numbers start at 1 and are contiguous across all producers of one emitter,
// reflecting actual emission order rather than scenario start order.
type Emitter struct {
	log log.Logger

	mu     sync.Mutex
	seq    uint64
	queue  []Event
	closed bool

	wake chan struct{}
	out  chan Event
	done chan struct{}
}

// NewEmitter creates an emitter and starts its drain goroutine. Close must be
// called after the last Emit so the consumer channel gets closed.
func NewEmitter(logger log.Logger) *Emitter {
	if logger == nil {
		logger = log.New()
	}
	e := &Emitter{
		log:  logger.New("component", "emitter"),
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
		done: make(chan struct{}),
	}
	go e.drain()
	return e
}

// Emit assigns the event's sequence number and timestamp and enqueues it for
// delivery. The enrichment is never skipped: every event reaching a consumer
// carries full metadata.
//
// Emitting after Close panics. A dropped result event is worse than a halted
// run, so emission without a live delivery channel is a programming error in
// the surrounding harness, not a recoverable per-event condition.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Error("event emitted after emitter was closed", "kind", ev.Kind, "scenario", ev.Ref.Scenario)
		panic("events: Emit called after Close")
	}
	e.seq++
	ev.Seq = e.seq
	ev.Timestamp = time.Now().UTC()
	e.queue = append(e.queue, ev)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Events returns the consumer channel. It yields events in sequence-number
// order and is closed once Close has been called and the queue is flushed.
func (e *Emitter) Events() <-chan Event {
	return e.out
}

// Close marks the emitter closed. Queued events are still delivered; the
// consumer channel closes after the last one. Close is idempotent.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until the drain goroutine has delivered every queued event and
// closed the consumer channel.
func (e *Emitter) Wait() {
	<-e.done
}

func (e *Emitter) drain() {
	defer close(e.done)
	for {
		e.mu.Lock()
		batch := e.queue
		e.queue = nil
		closed := e.closed
		e.mu.Unlock()

		for _, ev := range batch {
			e.out <- ev
		}
		if closed {
			// Flush anything emitted between the batch grab and the close.
			e.mu.Lock()
			rest := e.queue
			e.queue = nil
			e.mu.Unlock()
			for _, ev := range rest {
				e.out <- ev
			}
			close(e.out)
			return
		}
		<-e.wake
	}
}
