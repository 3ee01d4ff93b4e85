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

package blockvol_test

import (
	"testing"

	"github.com/blockvol/blockvol"
	"github.com/blockvol/blockvol/internal/device"
	"github.com/blockvol/blockvol/internal/freemap"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, sectorCount uint32, freeCount int) *blockvol.Engine {
	t.Helper()
	dev := device.NewMemory(512, sectorCount)
	fm := freemap.NewBitmap(100, freeCount)
	e, err := blockvol.Open(dev, fm, 64)
	require.NoError(t, err)
	return e
}

func TestEngine_SmallFileScenario(t *testing.T) {
	e := newTestEngine(t, 4096, 4000)

	require.True(t, e.InodeCreate(2, 0))
	h := e.InodeOpen(2)

	n, err := e.InodeWriteAt(h, []byte("hello"), 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	length, err := e.InodeLength(h)
	require.NoError(t, err)
	require.EqualValues(t, 5, length)

	out := make([]byte, 5)
	n, err = e.InodeReadAt(h, out, 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(out))

	e.InodeClose(h)
}

func TestEngine_CacheEvictionScenario(t *testing.T) {
	e := newTestEngine(t, 16384, 8000)
	require.True(t, e.InodeCreate(2, 0))
	h := e.InodeOpen(2)

	// 65 distinct data-touching writes: with C=64 frames, the first
	// must miss again on re-access while the 65th still hits.
	const n = 65
	for i := 0; i < n; i++ {
		_, err := e.InodeWriteAt(h, []byte{byte(i)}, int64(i)*512)
		require.NoError(t, err)
	}

	missesBefore := e.CacheMisses()
	out := make([]byte, 1)
	_, err := e.InodeReadAt(h, out, 0)
	require.NoError(t, err)
	require.Greater(t, e.CacheMisses(), missesBefore, "first sector should have been evicted")

	e.InodeClose(h)
}

func TestEngine_DeleteFreesOnLastClose(t *testing.T) {
	e := newTestEngine(t, 4096, 4000)
	require.True(t, e.InodeCreate(2, 4000))

	h1 := e.InodeOpen(2)
	h2 := e.InodeReopen(h1)

	e.InodeRemove(h1)
	e.InodeClose(h1)
	e.InodeClose(h2)

	// Reopening after full destruction creates a fresh, empty record;
	// the original content was resized away and the sector freed.
	h3 := e.InodeOpen(2)
	require.NotSame(t, h1, h3)
}

func TestEngine_CacheResetPersistsWrites(t *testing.T) {
	e := newTestEngine(t, 4096, 4000)
	require.True(t, e.InodeCreate(2, 0))
	h := e.InodeOpen(2)

	_, err := e.InodeWriteAt(h, []byte("durable"), 0)
	require.NoError(t, err)

	e.CacheReset()

	out := make([]byte, 7)
	_, err = e.InodeReadAt(h, out, 0)
	require.NoError(t, err)
	require.Equal(t, "durable", string(out))
}
