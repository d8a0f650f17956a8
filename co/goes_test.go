// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoesWait(t *testing.T) {
	var g Goes
	var count int32
	for i := 0; i < 10; i++ {
		g.Go(func() { atomic.AddInt32(&count, 1) })
	}
	g.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
}
