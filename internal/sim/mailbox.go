package sim

import (
	"sync"

	"github.com/san-kum/ripplesim/internal/dynamo"
)

// Delivery is what a Mailbox hands to one frame.
type Delivery struct {
	Disturbance dynamo.Disturbance
	Ok          bool
	LiftBefore  bool
	LiftAfter   bool
}

// Mailbox holds the latest disturbance posted since the last Take. Post
// and Release may be called from any goroutine.
type Mailbox struct {
	mu      sync.Mutex
	pending dynamo.Disturbance
	full    bool
	before  bool
	after   bool
	posted  int
	dropped int
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Post replaces any undelivered disturbance.
func (m *Mailbox) Post(d dynamo.Disturbance) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.full {
		m.dropped++
	}
	if m.after {
		m.before, m.after = true, false
	}
	m.pending, m.full = d, true
	m.posted++
}

// Release ends the pointer stroke once the pending disturbance, if any,
// has been applied.
func (m *Mailbox) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.full {
		m.after = true
		return
	}
	m.before = true
}

// Take empties the mailbox.
func (m *Mailbox) Take() Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Delivery{Disturbance: m.pending, Ok: m.full, LiftBefore: m.before, LiftAfter: m.after}
	m.pending = dynamo.Disturbance{}
	m.full, m.before, m.after = false, false, false
	return d
}

// Stats reports how many disturbances were posted and how many were
// overwritten before delivery.
func (m *Mailbox) Stats() (posted, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posted, m.dropped
}
