// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Parallel runs works fed through the queue with as many goroutines as CPUs.
// The returned channel is closed once cb returned and all queued works are done.
func Parallel(cb func(queue chan<- func())) <-chan struct{} {
	n := runtime.NumCPU()
	queue := make(chan func(), n*2)

	var goes Goes
	for range n {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}

	go func() {
		defer close(queue)
		cb(queue)
	}()
	return goes.Done()
}
