// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

import "sync"

// Mailbox is a single-slot, last-value-wins holder for the latest sample.
// Writers (the MQTT callback goroutine) and the reader (the update loop)
// only ever copy whole samples under the lock, so a reader never observes a
// left count from one message and a right count from another.
type Mailbox struct {
	mu     sync.Mutex
	sample Sample
	have   bool
	stores uint64
}

// Store replaces the held sample.
func (m *Mailbox) Store(s Sample) {
	m.mu.Lock()
	m.sample = s
	m.have = true
	m.stores++
	m.mu.Unlock()
}

// Load returns a copy of the latest sample, or false if none arrived yet.
func (m *Mailbox) Load() (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sample, m.have
}

// Stores is the number of samples written so far.
func (m *Mailbox) Stores() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores
}
