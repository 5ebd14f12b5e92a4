// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Goes tracks a group of goroutines. The zero value is ready to use.
type Goes struct {
	wg sync.WaitGroup
}

// Go starts f in a tracked goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Go(f)
}

// Done returns a channel closed once every tracked goroutine returned.
// Goroutines must not be added after Done is called.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	return done
}
