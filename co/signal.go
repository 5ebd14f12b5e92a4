// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides channel to wait for, and the value broadcast when it fired.
type Waiter[T any] interface {
	C() <-chan struct{}
	// Value returns the latest broadcast value.
	Value() T
}

// Signal is a rendezvous point for goroutines waiting for the next value.
// It's channel based, so waiting can be combined with other channels in a select.
// Slow waiters never block Broadcast, they just observe the latest value.
type Signal[T any] struct {
	l   sync.Mutex
	ch  chan struct{}
	val T
}

func (s *Signal[T]) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Broadcast stores v and wakes all goroutines that are waiting on s.
func (s *Signal[T]) Broadcast(v T) {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	s.val = v
	close(s.ch)
	s.ch = make(chan struct{})
}

// NewWaiter create a Waiter object for acquiring channel to wait for.
// Each C call returns the channel of the next broadcast after the previous one consumed.
func (s *Signal[T]) NewWaiter() Waiter[T] {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	return &waiter[T]{s: s, ref: s.ch}
}

type waiter[T any] struct {
	s   *Signal[T]
	ref chan struct{}
}

func (w *waiter[T]) C() <-chan struct{} {
	ch := w.ref

	w.s.l.Lock()
	w.ref = w.s.ch
	w.s.l.Unlock()
	return ch
}

func (w *waiter[T]) Value() T {
	w.s.l.Lock()
	defer w.s.l.Unlock()
	return w.s.val
}
