package arena

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Matcher consumes matchmaking decisions. The queue never builds sessions
// itself; the session manager implements this.
type Matcher interface {
	MatchHumans(a, b Participant)
	MatchSynthetic(p Participant)
}

type queueEntry struct {
	participant Participant
	enqueuedAt  time.Time
}

// Queue is the FIFO matchmaking pool. Entries that wait longer than the
// timeout are matched against a synthetic opponent on the next sweep; while
// two or more entries are waiting, the oldest pair is matched immediately.
type Queue struct {
	mu      sync.Mutex
	entries []*queueEntry
	byUser  map[string]*queueEntry
	timeout time.Duration
}

func NewQueue(timeout time.Duration) *Queue {
	return &Queue{
		byUser:  make(map[string]*queueEntry),
		timeout: timeout,
	}
}

// Enqueue adds the participant to the pool. Re-enqueueing while already
// waiting keeps the original position and returns false.
func (q *Queue) Enqueue(p Participant, now time.Time) bool {
	q.mu.Lock()
	if _, ok := q.byUser[p.UserID]; ok {
		q.mu.Unlock()
		return false
	}
	e := &queueEntry{participant: p, enqueuedAt: now}
	q.entries = append(q.entries, e)
	q.byUser[p.UserID] = e
	waiting := q.snapshotLocked()
	q.mu.Unlock()

	p.send(QueueJoinedEvent{Type: EventQueueJoined})
	broadcastQueueStatus(waiting)
	log.Debug().Str("user_id", p.UserID).Int("waiting", len(waiting)).Msg("queued for match")
	return true
}

// Cancel removes the participant from the pool. Unknown users are a no-op.
func (q *Queue) Cancel(userID string) bool {
	q.mu.Lock()
	e, ok := q.byUser[userID]
	if !ok {
		q.mu.Unlock()
		return false
	}
	delete(q.byUser, userID)
	q.removeLocked(e)
	waiting := q.snapshotLocked()
	q.mu.Unlock()

	broadcastQueueStatus(waiting)
	return true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Sweep resolves the pool: entries past the wait timeout get a synthetic
// opponent, then remaining entries are paired oldest-first. Match callbacks
// run outside the queue lock.
func (q *Queue) Sweep(now time.Time, m Matcher) {
	var synthetic []Participant
	var pairs [][2]Participant

	q.mu.Lock()
	kept := q.entries[:0]
	for _, e := range q.entries {
		if now.Sub(e.enqueuedAt) >= q.timeout {
			delete(q.byUser, e.participant.UserID)
			synthetic = append(synthetic, e.participant)
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	for len(q.entries) >= 2 {
		a, b := q.entries[0], q.entries[1]
		q.entries = q.entries[2:]
		delete(q.byUser, a.participant.UserID)
		delete(q.byUser, b.participant.UserID)
		pairs = append(pairs, [2]Participant{a.participant, b.participant})
	}
	waiting := q.snapshotLocked()
	q.mu.Unlock()

	for _, p := range synthetic {
		m.MatchSynthetic(p)
	}
	for _, pr := range pairs {
		m.MatchHumans(pr[0], pr[1])
	}
	if len(synthetic) > 0 || len(pairs) > 0 {
		broadcastQueueStatus(waiting)
	}
}

func (q *Queue) removeLocked(e *queueEntry) {
	for i, cur := range q.entries {
		if cur == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

func (q *Queue) snapshotLocked() []Participant {
	out := make([]Participant, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.participant)
	}
	return out
}

func broadcastQueueStatus(waiting []Participant) {
	ev := QueueStatusEvent{Type: EventQueueStatus, WaitingCount: len(waiting)}
	for _, p := range waiting {
		p.send(ev)
	}
}
