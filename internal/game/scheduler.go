package game

import (
	"sync"
	"time"
)

// ReminderFunc is invoked when the answer timeout for a pending question
// elapses. pendingIndex identifies the question the timer was armed for.
type ReminderFunc func(chatID int64, pendingIndex int)

type timerHandle interface {
	Stop() bool
}

type armedTimer struct {
	handle       timerHandle
	pendingIndex int
	seq          uint64
}

// ReminderScheduler keeps at most one one-shot reminder timer per chat.
// Arming replaces any prior timer for the chat; disarming is best-effort,
// a timer already mid-fire is neutralized by the consumer's state re-check.
type ReminderScheduler struct {
	mu     sync.Mutex
	fire   ReminderFunc
	timers map[int64]*armedTimer
	seq    uint64

	// after is swapped in tests to trigger timers manually.
	after func(d time.Duration, fn func()) timerHandle
}

func NewReminderScheduler(fire ReminderFunc) *ReminderScheduler {
	return &ReminderScheduler{
		fire:   fire,
		timers: make(map[int64]*armedTimer),
		after: func(d time.Duration, fn func()) timerHandle {
			return time.AfterFunc(d, fn)
		},
	}
}

func (rs *ReminderScheduler) Arm(chatID int64, pendingIndex int, delay time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if prev, ok := rs.timers[chatID]; ok {
		prev.handle.Stop()
	}

	rs.seq++
	seq := rs.seq
	t := &armedTimer{pendingIndex: pendingIndex, seq: seq}
	t.handle = rs.after(delay, func() {
		rs.fired(chatID, seq, pendingIndex)
	})
	rs.timers[chatID] = t
}

func (rs *ReminderScheduler) Disarm(chatID int64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if t, ok := rs.timers[chatID]; ok {
		t.handle.Stop()
		delete(rs.timers, chatID)
	}
}

func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for chatID, t := range rs.timers {
		t.handle.Stop()
		delete(rs.timers, chatID)
	}
}

func (rs *ReminderScheduler) fired(chatID int64, seq uint64, pendingIndex int) {
	rs.mu.Lock()
	t, ok := rs.timers[chatID]
	if !ok || t.seq != seq {
		// Disarmed or replaced while the callback was in flight.
		rs.mu.Unlock()
		return
	}
	delete(rs.timers, chatID)
	rs.mu.Unlock()

	rs.fire(chatID, pendingIndex)
}
