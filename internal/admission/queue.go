// Package admission implements the bounded FCFS session-request queue: a
// ring buffer guarded by a mutex, paired with two counting semaphores,
// grounded in original_source/server/src/game.c's request_queue_t.
//
// Go has no sem_t in the standard library; a buffered channel used purely
// for its capacity (never for the values it carries) is the idiomatic
// stand-in, a pattern several of the retrieved example repos use for
// worker-pool admission control.
package admission

import "sync"

// Request is one pending session admission: the two pipe paths a client
// posted to the registration FIFO.
type Request struct {
	ReqPipe   string
	NotifPipe string
}

// Queue is a fixed-capacity ring buffer of Requests. Capacity equals
// max_games. slots counts concurrently ACTIVE SESSIONS, not free ring
// slots: Pop does not release a slot, only Release does, mirroring
// queue_pop_blocking's comment that has_space is posted only when a
// session ends, never on dequeue. This is what lets the ring buffer be
// small (one slot per worker) while still blocking Push the instant every
// worker is busy, rather than the instant the ring is merely full.
type Queue struct {
	mu   sync.Mutex
	ring []Request
	head int
	tail int

	items chan struct{} // counts buffered-but-unclaimed requests
	slots chan struct{} // counts free session permits (max_games minus admitted, unreleased sessions)
}

// New creates a Queue with the given capacity (max_games).
func New(capacity int) *Queue {
	q := &Queue{
		ring:  make([]Request, capacity),
		items: make(chan struct{}, capacity),
		slots: make(chan struct{}, capacity),
	}
	for i := 0; i < capacity; i++ {
		q.slots <- struct{}{}
	}
	return q
}

// Push blocks until a session slot is available, then enqueues req. This
// is the backpressure point: once max_games sessions are active, the
// registration listener's caller blocks here rather than growing the
// queue unboundedly.
func (q *Queue) Push(req Request) {
	<-q.slots

	q.mu.Lock()
	q.ring[q.tail] = req
	q.tail = (q.tail + 1) % len(q.ring)
	q.mu.Unlock()

	q.items <- struct{}{}
}

// Pop blocks until a request is available and returns it. It does NOT
// release a slot — the caller (a worker) must call Release once the
// session that request started has fully ended.
func (q *Queue) Pop() Request {
	<-q.items

	q.mu.Lock()
	req := q.ring[q.head]
	q.head = (q.head + 1) % len(q.ring)
	q.mu.Unlock()

	return req
}

// Release returns one session slot to the pool. Call exactly once per
// completed session, including sessions that failed to start (e.g. a
// worker that could not open the client's pipes).
func (q *Queue) Release() {
	q.slots <- struct{}{}
}
