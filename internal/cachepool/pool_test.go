// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cachepool_test

import (
	"sync"
	"testing"

	"github.com/blockvol/blockvol/internal/cachepool"
	"github.com/blockvol/blockvol/internal/device"
	"github.com/blockvol/blockvol/internal/metrics"
	"github.com/stretchr/testify/require"
)

const testSectorSize = 64
const testFrameCount = 4

func newTestPool(t *testing.T) (*cachepool.Pool, *device.Memory) {
	t.Helper()
	dev := device.NewMemory(testSectorSize, 64)
	m, err := metrics.NewCacheMetrics()
	require.NoError(t, err)
	return cachepool.New(dev, testFrameCount, m), dev
}

func fill(b byte) []byte {
	buf := make([]byte, testSectorSize)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func TestPool_ReadMissThenHit(t *testing.T) {
	p, _ := newTestPool(t)

	dst := make([]byte, testSectorSize)
	p.Read(dst, 5)
	require.EqualValues(t, 1, p.Misses())
	require.EqualValues(t, 0, p.Hits())

	p.Read(dst, 5)
	require.EqualValues(t, 1, p.Misses())
	require.EqualValues(t, 1, p.Hits())
}

func TestPool_WriteThenReadIsCoherent(t *testing.T) {
	p, _ := newTestPool(t)

	p.Write(fill('x'), 3)

	dst := make([]byte, testSectorSize)
	p.Read(dst, 3)
	require.Equal(t, fill('x'), dst)
	require.EqualValues(t, 1, p.Hits())
}

func TestPool_LRUEvictsLeastRecentlyUsed(t *testing.T) {
	p, _ := newTestPool(t)

	dst := make([]byte, testSectorSize)
	for s := uint32(0); s < testFrameCount; s++ {
		p.Read(dst, s)
	}
	require.EqualValues(t, testFrameCount, p.Misses())

	// Touch sector 0 again so it becomes most recently used, leaving
	// sector 1 as the new least-recently-used frame.
	p.Read(dst, 0)
	require.EqualValues(t, testFrameCount, p.Misses())
	require.EqualValues(t, 1, p.Hits())

	// One more distinct sector evicts sector 1, not sector 0.
	p.Read(dst, testFrameCount)
	require.EqualValues(t, testFrameCount+1, p.Misses())

	p.Read(dst, 0)
	require.EqualValues(t, testFrameCount+1, p.Misses())
	require.EqualValues(t, 2, p.Hits())

	p.Read(dst, 1)
	require.EqualValues(t, testFrameCount+2, p.Misses())
}

func TestPool_DirtyFrameWritesBackOnEviction(t *testing.T) {
	p, dev := newTestPool(t)

	p.Write(fill('y'), 0)

	raw := make([]byte, testSectorSize)
	require.NoError(t, dev.ReadSector(0, raw))
	require.NotEqual(t, fill('y'), raw, "write-back should not happen until eviction")

	dst := make([]byte, testSectorSize)
	for s := uint32(1); s <= testFrameCount; s++ {
		p.Read(dst, s)
	}

	require.NoError(t, dev.ReadSector(0, raw))
	require.Equal(t, fill('y'), raw)
}

func TestPool_FlushAllWritesDirtyFrames(t *testing.T) {
	p, dev := newTestPool(t)

	p.Write(fill('z'), 2)
	p.FlushAll()

	raw := make([]byte, testSectorSize)
	require.NoError(t, dev.ReadSector(2, raw))
	require.Equal(t, fill('z'), raw)
}

func TestPool_ResetFlushesAndClearsCounters(t *testing.T) {
	p, dev := newTestPool(t)

	p.Write(fill('w'), 1)
	dst := make([]byte, testSectorSize)
	p.Read(dst, 1)
	require.EqualValues(t, 1, p.Hits())

	p.Reset()

	raw := make([]byte, testSectorSize)
	require.NoError(t, dev.ReadSector(1, raw))
	require.Equal(t, fill('w'), raw)
	require.EqualValues(t, 0, p.Hits())
	require.EqualValues(t, 0, p.Misses())

	p.Read(dst, 1)
	require.EqualValues(t, 1, p.Misses())
}

func TestPool_ConcurrentReadersSeeConsistentBytes(t *testing.T) {
	p, _ := newTestPool(t)
	p.Write(fill('q'), 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := make([]byte, testSectorSize)
			p.Read(dst, 0)
			require.Equal(t, fill('q'), dst)
		}()
	}
	wg.Wait()
}
