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

// Package blockvol is the façade over the block-addressed file
// storage engine: a buffered LRU block cache in front of a raw
// device, and an indexed inode layer mapping logical byte offsets to
// physical sectors through direct, single-indirect and
// double-indirect pointers.
package blockvol

import (
	"fmt"

	"github.com/blockvol/blockvol/internal/blockindex"
	"github.com/blockvol/blockvol/internal/cachepool"
	"github.com/blockvol/blockvol/internal/device"
	"github.com/blockvol/blockvol/internal/fileio"
	"github.com/blockvol/blockvol/internal/freemap"
	"github.com/blockvol/blockvol/internal/inoderegistry"
	"github.com/blockvol/blockvol/internal/metrics"
)

// Handle is a live, open reference to an inode, obtained from
// InodeCreate's companion InodeOpen, InodeReopen, or another open.
type Handle = *inoderegistry.Record

// Engine is a mounted volume: the cache pool, the inode index, the
// open-inode registry, and file I/O wired together against one
// device and one free-map. The cache pool and open-inode registry
// belong to this Engine for the lifetime of the mount: Open
// (cache_init) creates them and CacheDestroy flushes the pool and
// closes the device. They are not process-wide singletons; every
// Engine built by Open has its own pool and registry.
type Engine struct {
	dev     device.BlockDevice
	freeMap freemap.FreeMap

	pool     *cachepool.Pool
	index    *blockindex.Index
	registry *inoderegistry.Registry
	io       *fileio.FileIO
	metrics  *metrics.CacheMetrics
}

// Open performs cache_init: it wires a cache pool of cacheFrames
// frames, the inode index, and the open-inode registry on top of dev
// and freeMap, and returns the mounted Engine.
func Open(dev device.BlockDevice, freeMap freemap.FreeMap, cacheFrames int) (*Engine, error) {
	m, err := metrics.NewCacheMetrics()
	if err != nil {
		return nil, fmt.Errorf("blockvol: building cache metrics: %w", err)
	}

	pool := cachepool.New(dev, cacheFrames, m)
	index := blockindex.New(pool, freeMap)
	registry := inoderegistry.New(index, freeMap)
	io := fileio.New(pool, index)

	return &Engine{
		dev:      dev,
		freeMap:  freeMap,
		pool:     pool,
		index:    index,
		registry: registry,
		io:       io,
		metrics:  m,
	}, nil
}

// CacheDestroy performs cache_destroy: it flushes every dirty frame
// back to the device and releases the underlying device handle.
func (e *Engine) CacheDestroy() error {
	e.pool.FlushAll()
	if closer, ok := e.dev.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// CacheReset flushes then re-initializes the cache pool. Test hook only.
func (e *Engine) CacheReset() { e.pool.Reset() }

// CacheHits returns the number of cache hits observed so far.
func (e *Engine) CacheHits() uint64 { return e.pool.Hits() }

// CacheMisses returns the number of cache misses observed so far.
func (e *Engine) CacheMisses() uint64 { return e.pool.Misses() }

// InodeCreate initializes a fresh inode at sector with the given
// initial length, allocating whatever index sectors that length
// requires. It returns false, leaving sector untouched, if the
// free-map cannot satisfy the allocation.
func (e *Engine) InodeCreate(sector uint32, length int64) bool {
	in := blockindex.Inode{}
	if !e.index.Resize(&in, length) {
		return false
	}
	if err := e.index.WriteInode(sector, in); err != nil {
		return false
	}
	return true
}

// InodeOpen returns a handle to the inode at sector, incrementing its
// open count.
func (e *Engine) InodeOpen(sector uint32) Handle {
	return e.registry.Open(sector)
}

// InodeReopen returns an additional handle sharing an already-open inode.
func (e *Engine) InodeReopen(h Handle) Handle {
	return e.registry.Reopen(h)
}

// InodeClose releases h. When the last handle to a removed inode
// closes, its sectors are released and its inode sector is freed.
func (e *Engine) InodeClose(h Handle) {
	e.registry.Close(h)
}

// InodeRemove marks h's inode deleted; sectors are not freed until
// the last open handle closes.
func (e *Engine) InodeRemove(h Handle) {
	e.registry.Remove(h)
}

// InodeReadAt reads up to len(buf) bytes at offset, returning the
// number of bytes actually read.
func (e *Engine) InodeReadAt(h Handle, buf []byte, offset int64) (int, error) {
	return e.io.ReadAt(h, buf, offset)
}

// InodeWriteAt writes len(buf) bytes at offset, growing the inode
// first if necessary. It returns 0 with no error if a deny-write
// reservation is active.
func (e *Engine) InodeWriteAt(h Handle, buf []byte, offset int64) (int, error) {
	return e.io.WriteAt(h, buf, offset)
}

// InodeDenyWrite places a deny-write reservation on h's inode.
func (e *Engine) InodeDenyWrite(h Handle) {
	e.registry.DenyWrite(h)
}

// InodeAllowWrite releases one deny-write reservation on h's inode.
func (e *Engine) InodeAllowWrite(h Handle) {
	e.registry.AllowWrite(h)
}

// InodeLength returns h's on-disk length field.
func (e *Engine) InodeLength(h Handle) (int64, error) {
	return e.io.Length(h.Sector)
}
