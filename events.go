// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"sync"

	"github.com/eapache/queue"
)

// Host mouse button bits carried by MouseEvent.Buttons.
const (
	MouseLeft = 1 << iota
	MouseRight
	MouseMiddle
	MouseWheelUp
	MouseWheelDown
)

// KeyEvent is a translated keyboard event delivered to the host input sink.
type KeyEvent struct {
	// Down reports whether this is a key press (true) or release (false).
	Down bool

	// Key is the translated, shift-normalized host key code. Always set.
	Key int

	// Localized carries the same normalized code, populated only on
	// key-down, mirroring how the host input model splits the two.
	Localized int

	// Char is the typed character for text entry: the original keysym with
	// its case preserved. Populated only on key-down while text-input mode
	// is active, zero otherwise.
	Char rune
}

// MouseEvent is a collapsed relative-motion event delivered to the host
// input sink. At most one is emitted per message pump.
type MouseEvent struct {
	// Buttons is the OR of all host button bits observed since the last
	// emitted motion event.
	Buttons int

	// DX and DY are the motion deltas relative to the previously reported
	// absolute cursor position.
	DX int
	DY int
}

// EventSink receives translated input events from the server. Implementations
// are called from the host's simulation thread during PumpMessages; they must
// not retain references past the call.
type EventSink interface {
	PostKeyEvent(ev KeyEvent)
	PostMouseEvent(ev MouseEvent)
}

// discardSink drops all events. Used when no sink is configured.
type discardSink struct{}

func (discardSink) PostKeyEvent(KeyEvent)     {}
func (discardSink) PostMouseEvent(MouseEvent) {}

// QueueSink is a FIFO EventSink backed by an in-memory queue. It decouples
// the message pump from event consumption: the pump appends during
// PumpMessages and the host drains with Next between ticks.
type QueueSink struct {
	mu sync.Mutex
	q  *queue.Queue
}

// NewQueueSink creates an empty queue-backed event sink.
func NewQueueSink() *QueueSink {
	return &QueueSink{q: queue.New()}
}

// PostKeyEvent appends a keyboard event to the queue.
func (s *QueueSink) PostKeyEvent(ev KeyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.Add(ev)
}

// PostMouseEvent appends a mouse event to the queue.
func (s *QueueSink) PostMouseEvent(ev MouseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.Add(ev)
}

// Next removes and returns the oldest queued event. The returned value is
// either a KeyEvent or a MouseEvent; ok is false when the queue is empty.
func (s *QueueSink) Next() (ev interface{}, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.q.Length() == 0 {
		return nil, false
	}
	return s.q.Remove(), true
}

// Len reports the number of queued events.
func (s *QueueSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Length()
}
