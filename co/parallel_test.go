// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	n := 50
	var done atomic.Int32
	fn := func() {
		time.Sleep(time.Millisecond * 5)
		done.Add(1)
	}

	<-Parallel(func(queue chan<- func()) {
		for range n {
			queue <- fn
		}
	})
	assert.Equal(t, int32(n), done.Load())
}

func TestGoes(t *testing.T) {
	var goes Goes
	var n atomic.Int32
	for range 5 {
		goes.Go(func() { n.Add(1) })
	}
	<-goes.Done()
	assert.Equal(t, int32(5), n.Load())
}
