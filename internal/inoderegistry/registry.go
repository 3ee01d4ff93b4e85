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

// Package inoderegistry keeps the process-wide set of open inodes,
// keyed by on-disk sector ID, with open-count lifetime and deny-write
// reservations. Its Inc/Dec-to-zero-then-destroy shape mirrors a
// lookup-count helper: external synchronization on the way in,
// destruction folded into the decrement that reaches zero.
package inoderegistry

import (
	"sync"

	"github.com/blockvol/blockvol/internal/blockindex"
	"github.com/blockvol/blockvol/internal/freemap"
	"github.com/blockvol/blockvol/internal/invariant"
	"github.com/blockvol/blockvol/internal/logger"
)

// Record is the in-memory state of one open inode: its on-disk
// sector, open count, deleted flag, and deny-write counter. mu guards
// every field below Sector and serializes writers of this inode.
type Record struct {
	Sector uint32

	mu           sync.Mutex
	openCnt      uint64
	deleted      bool
	denyWriteCnt int
}

// OpenCount reports the current number of live handles.
func (rec *Record) OpenCount() uint64 {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.openCnt
}

// WriteDenied reports whether a deny-write reservation is active.
func (rec *Record) WriteDenied() bool {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.denyWriteCnt > 0
}

// Lock acquires the per-inode lock for the duration of a write
// (file I/O serializes writers of the same inode through this).
func (rec *Record) Lock() { rec.mu.Lock() }

// Unlock releases the per-inode lock.
func (rec *Record) Unlock() { rec.mu.Unlock() }

// Registry is the process-wide open-inode set.
type Registry struct {
	mu      sync.Mutex
	records map[uint32]*Record

	index   *blockindex.Index
	freeMap freemap.FreeMap
}

// New builds an empty registry. index and freeMap are consulted only
// when the last handle to a deleted inode closes.
func New(index *blockindex.Index, freeMap freemap.FreeMap) *Registry {
	return &Registry{
		records: make(map[uint32]*Record),
		index:   index,
		freeMap: freeMap,
	}
}

// Open returns the record for sector, incrementing its open count, or
// inserts and returns a fresh record with open count 1.
func (r *Registry) Open(sector uint32) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[sector]; ok {
		rec.mu.Lock()
		rec.openCnt++
		rec.mu.Unlock()
		return rec
	}

	rec := &Record{Sector: sector, openCnt: 1}
	r.records[sector] = rec
	return rec
}

// Reopen increments rec's open count for an additional handle sharing
// an already-open inode.
func (r *Registry) Reopen(rec *Record) *Record {
	rec.mu.Lock()
	rec.openCnt++
	rec.mu.Unlock()
	return rec
}

// Close decrements rec's open count. When it reaches zero the record
// is removed from the set; if Remove had previously been called, the
// inode is resized to zero and its sector returned to the free-map.
func (r *Registry) Close(rec *Record) {
	r.mu.Lock()
	rec.mu.Lock()
	invariant.Check(rec.openCnt > 0, "inoderegistry: Close on sector %d with open count 0", rec.Sector)
	rec.openCnt--
	destroyed := rec.openCnt == 0
	deleted := rec.deleted
	rec.mu.Unlock()

	if destroyed {
		delete(r.records, rec.Sector)
	}
	r.mu.Unlock()

	if !destroyed || !deleted {
		return
	}

	in, err := r.index.ReadInode(rec.Sector)
	if err != nil {
		logger.Errorf("inoderegistry: reading inode at sector %d for destroy: %v", rec.Sector, err)
		return
	}
	if !r.index.Resize(&in, 0) {
		logger.Errorf("inoderegistry: resize-to-zero failed for sector %d", rec.Sector)
		return
	}
	if err := r.index.WriteInode(rec.Sector, in); err != nil {
		logger.Errorf("inoderegistry: writing zeroed inode at sector %d: %v", rec.Sector, err)
	}
	r.freeMap.Release(rec.Sector, 1)
}

// Remove marks rec as deleted. Sectors are not freed until the last
// open handle closes.
func (r *Registry) Remove(rec *Record) {
	rec.mu.Lock()
	rec.deleted = true
	rec.mu.Unlock()
}

// DenyWrite increments rec's deny-write counter, acquiring and
// releasing the per-inode lock exactly once.
func (r *Registry) DenyWrite(rec *Record) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.denyWriteCnt++
	invariant.Check(uint64(rec.denyWriteCnt) <= rec.openCnt,
		"inoderegistry: deny_write_cnt %d exceeds open_cnt %d for sector %d", rec.denyWriteCnt, rec.openCnt, rec.Sector)
}

// AllowWrite decrements rec's deny-write counter.
func (r *Registry) AllowWrite(rec *Record) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	invariant.Check(rec.denyWriteCnt > 0, "inoderegistry: allow_write with deny_write_cnt already 0 for sector %d", rec.Sector)
	rec.denyWriteCnt--
}
