package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
)

var ErrEngineStopped = errors.New("scheduler: engine stopped")

// Expiry is a timer that came due. The engine never runs callbacks itself:
// the consumer of C() calls Fire on its own event loop.
type Expiry struct {
	entry *entry
}

// Fire runs the callback unless the handle was stopped after expiry.
func (x Expiry) Fire() bool {
	if x.entry == nil || !x.entry.state.CompareAndSwap(entryDelivered, entryFired) {
		return false
	}
	x.entry.fn()
	return true
}

const (
	entryPending int32 = iota
	entryDelivered
	entryFired
	entryStopped
)

type entry struct {
	at    time.Time
	seq   uint64
	fn    func()
	state atomic.Int32
}

// Stop reports whether the callback had not run yet.
func (e *entry) Stop() bool {
	for {
		cur := e.state.Load()
		if cur == entryFired || cur == entryStopped {
			return false
		}
		if e.state.CompareAndSwap(cur, entryStopped) {
			return true
		}
	}
}

type priorityQueue []*entry

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].at.Equal(pq[j].at) {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].at.Before(pq[j].at)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*entry))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[0 : n-1]
	return item
}

// Engine is the wall-clock implementation of clock.Clock. Due entries are
// queued on C() in fire-time order.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	seq     uint64
	out     chan Expiry
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	now     func() time.Time
}

var _ clock.Clock = (*Engine)(nil)

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		out:    make(chan Expiry, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
	}
}

func (e *Engine) C() <-chan Expiry {
	return e.out
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// AfterFunc registers fn to be delivered on C() after d. On a stopped engine
// the returned handle is already stopped.
func (e *Engine) AfterFunc(d time.Duration, fn func()) clock.Handle {
	if d < 0 {
		d = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	item := &entry{at: e.now().Add(d), seq: e.seq, fn: fn}
	if e.stopped {
		item.state.Store(entryStopped)
		return item
	}
	heap.Push(&e.queue, item)
	e.signalWakeup()
	return item
}

// Len counts entries still waiting for their fire time.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, item := range e.queue {
		if item.state.Load() == entryPending {
			n++
		}
	}
	return n
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, item := range e.popDue(e.now()) {
				if !item.state.CompareAndSwap(entryPending, entryDelivered) {
					continue
				}
				select {
				case e.out <- Expiry{entry: item}:
				case <-e.stopCh:
					return
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek drops stopped entries from the head and returns the next fire time.
func (e *Engine) peek() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 && e.queue[0].state.Load() == entryStopped {
		heap.Pop(&e.queue)
	}
	if len(e.queue) == 0 {
		return time.Time{}, false
	}
	return e.queue[0].at, true
}

func (e *Engine) popDue(now time.Time) []*entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*entry, 0)
	for len(e.queue) > 0 {
		if e.queue[0].at.After(now) {
			break
		}
		out = append(out, heap.Pop(&e.queue).(*entry))
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
