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

// Package cachepool implements the buffered block cache: a fixed-size,
// LRU-replaced, reader/writer-locked pool of sector-sized frames sitting
// in front of a device.BlockDevice, with write-back durability.
package cachepool

import (
	"context"
	"sync"

	"github.com/blockvol/blockvol/internal/device"
	"github.com/blockvol/blockvol/internal/logger"
	"github.com/blockvol/blockvol/internal/metrics"
)

// Pool is the process-wide cache of sector frames. mu guards the LRU list
// and each frame's identity (sector/valid/dirty); a frame's own rwmu
// guards its contents. Lock order: mu before any frame's rwmu, never the
// reverse.
type Pool struct {
	mu sync.Mutex

	dev        device.BlockDevice
	sectorSize int

	frames     []*frame
	head, tail *frame

	metrics *metrics.CacheMetrics
}

// New builds a pool of frameCount frames backed by dev.
func New(dev device.BlockDevice, frameCount int, m *metrics.CacheMetrics) *Pool {
	p := &Pool{
		dev:        dev,
		sectorSize: dev.SectorSize(),
		frames:     make([]*frame, frameCount),
		metrics:    m,
	}
	for i := 0; i < frameCount; i++ {
		f := &frame{data: make([]byte, p.sectorSize)}
		p.frames[i] = f
		p.pushFront(f)
	}
	return p
}

// acquire finds or refills the frame for sector, returning it with the
// requested lock mode already held. Steps 1-6 of the design's frame
// lookup & eviction algorithm.
func (p *Pool) acquire(sector uint32, write bool) *frame {
	p.mu.Lock()

	for f := p.head; f != nil; f = f.next {
		if f.valid && f.sector == sector {
			p.moveToFront(f)
			p.metrics.RecordHit(context.Background())
			p.lockFrame(f, write)
			p.mu.Unlock()
			return f
		}
	}

	victim := p.tail
	p.moveToFront(victim)
	p.metrics.RecordMiss(context.Background())

	// Hold the victim's writer lock across the refill so that no other
	// acquirer can observe it mid-transition.
	victim.rwmu.Lock()
	wasValid := victim.valid
	if victim.valid && victim.dirty {
		if err := p.dev.WriteSector(victim.sector, victim.data); err != nil {
			logger.Errorf("cachepool: writing back sector %d: %v", victim.sector, err)
		}
	}
	if wasValid {
		p.metrics.RecordEviction(context.Background())
	}

	victim.sector = sector
	if err := p.dev.ReadSector(sector, victim.data); err != nil {
		logger.Errorf("cachepool: refilling sector %d: %v", sector, err)
	}
	victim.valid = true
	victim.dirty = false

	if !write {
		victim.rwmu.Unlock()
		victim.rwmu.RLock()
	}

	p.mu.Unlock()
	return victim
}

func (p *Pool) lockFrame(f *frame, write bool) {
	if write {
		f.rwmu.Lock()
	} else {
		f.rwmu.RLock()
	}
}

// Read copies the current contents of sector into dst, which must be
// exactly the pool's sector size.
func (p *Pool) Read(dst []byte, sector uint32) {
	f := p.acquire(sector, false)
	copy(dst, f.data)
	f.rwmu.RUnlock()
}

// Write replaces the cached contents of sector with src and marks the
// frame dirty. src must be exactly the pool's sector size.
func (p *Pool) Write(src []byte, sector uint32) {
	f := p.acquire(sector, true)
	copy(f.data, src)
	f.dirty = true
	f.rwmu.Unlock()
}

// FlushAll writes every dirty valid frame back to the device.
func (p *Pool) FlushAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		f.rwmu.Lock()
		if f.valid && f.dirty {
			if err := p.dev.WriteSector(f.sector, f.data); err != nil {
				logger.Errorf("cachepool: flushing sector %d: %v", f.sector, err)
			}
			f.dirty = false
		}
		f.rwmu.Unlock()
	}
}

// Reset flushes then re-initializes the pool, for test hooks only (cache_reset
// in the design). It is not part of normal operation.
func (p *Pool) Reset() {
	p.FlushAll()

	p.mu.Lock()
	for _, f := range p.frames {
		f.rwmu.Lock()
		f.valid = false
		f.dirty = false
		f.sector = 0
		f.rwmu.Unlock()
	}
	p.head, p.tail = nil, nil
	for i := len(p.frames) - 1; i >= 0; i-- {
		p.pushFront(p.frames[i])
	}
	p.mu.Unlock()

	p.metrics.Reset()
}

// SectorSize reports B, the pool's fixed transfer size.
func (p *Pool) SectorSize() int { return p.sectorSize }

// Hits returns the number of cache hits observed so far.
func (p *Pool) Hits() uint64 { return p.metrics.Hits() }

// Misses returns the number of cache misses observed so far.
func (p *Pool) Misses() uint64 { return p.metrics.Misses() }
