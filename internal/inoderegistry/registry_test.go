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

package inoderegistry_test

import (
	"testing"

	"github.com/blockvol/blockvol/internal/blockindex"
	"github.com/blockvol/blockvol/internal/cachepool"
	"github.com/blockvol/blockvol/internal/device"
	"github.com/blockvol/blockvol/internal/freemap"
	"github.com/blockvol/blockvol/internal/inoderegistry"
	"github.com/blockvol/blockvol/internal/metrics"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*inoderegistry.Registry, *blockindex.Index, *freemap.Bitmap) {
	t.Helper()
	dev := device.NewMemory(512, 4096)
	m, err := metrics.NewCacheMetrics()
	require.NoError(t, err)
	pool := cachepool.New(dev, 64, m)
	fm := freemap.NewBitmap(200, 1000)
	idx := blockindex.New(pool, fm)
	return inoderegistry.New(idx, fm), idx, fm
}

func TestRegistry_OpenReturnsSameRecordForSector(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	rec1 := reg.Open(5)
	require.EqualValues(t, 1, rec1.OpenCount())

	rec2 := reg.Open(5)
	require.Same(t, rec1, rec2)
	require.EqualValues(t, 2, rec1.OpenCount())
}

func TestRegistry_CloseDecrementsAndDestroysAtZero(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	rec := reg.Open(5)
	reg.Reopen(rec)
	require.EqualValues(t, 2, rec.OpenCount())

	reg.Close(rec)
	require.EqualValues(t, 1, rec.OpenCount())

	reg.Close(rec)
	require.EqualValues(t, 0, rec.OpenCount())

	// A fresh Open after full close must yield a brand new record.
	rec2 := reg.Open(5)
	require.NotSame(t, rec, rec2)
}

func TestRegistry_RemoveFreesOnLastClose(t *testing.T) {
	reg, idx, fm := newTestRegistry(t)

	in := blockindex.Inode{}
	require.True(t, idx.Resize(&in, 2000))
	require.NoError(t, idx.WriteInode(10, in))

	rec := reg.Open(10)
	reg.Remove(rec)

	freeBefore := fm.Free()
	reg.Close(rec)
	require.Greater(t, fm.Free(), freeBefore)
}

func TestRegistry_DenyWriteInvariant(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	rec := reg.Open(5)
	require.False(t, rec.WriteDenied())

	reg.DenyWrite(rec)
	require.True(t, rec.WriteDenied())

	reg.AllowWrite(rec)
	require.False(t, rec.WriteDenied())
}

func TestRegistry_DenyWriteAtOpenCountPanics(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	rec := reg.Open(5) // open count 1
	reg.DenyWrite(rec) // deny_write_cnt 1, equal to open_cnt: allowed

	require.Panics(t, func() {
		reg.DenyWrite(rec) // deny_write_cnt would exceed open_cnt
	})
}
