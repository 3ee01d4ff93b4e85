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

// Package fileio implements offset-based read/write against an open
// inode: sector-by-sector translation through the index, full-sector
// fast paths straight into the caller's buffer, and a single bounce
// buffer for every partial-sector edge.
package fileio

import (
	"github.com/blockvol/blockvol/internal/blockindex"
	"github.com/blockvol/blockvol/internal/cachepool"
	"github.com/blockvol/blockvol/internal/inoderegistry"
)

// FileIO walks byte ranges of an inode against the cache pool.
type FileIO struct {
	pool       *cachepool.Pool
	index      *blockindex.Index
	sectorSize int
}

// New builds a FileIO driving reads and writes through pool and index.
func New(pool *cachepool.Pool, index *blockindex.Index) *FileIO {
	return &FileIO{pool: pool, index: index, sectorSize: pool.SectorSize()}
}

// Length returns the inode's on-disk length field.
func (fio *FileIO) Length(sector uint32) (int64, error) {
	in, err := fio.index.ReadInode(sector)
	if err != nil {
		return 0, err
	}
	return int64(in.Length), nil
}

// ReadAt reads up to len(buf) bytes starting at offset into buf,
// returning the number of bytes actually read. It does not take the
// inode lock: index mutations only ever grow the reachable set, and
// shrinks happen only once no reader can remain (on the last close of
// a deleted inode).
func (fio *FileIO) ReadAt(rec *inoderegistry.Record, buf []byte, offset int64) (int, error) {
	in, err := fio.index.ReadInode(rec.Sector)
	if err != nil {
		return 0, err
	}
	length := int64(in.Length)
	if length < 0 {
		length = 0
	}

	remaining := int64(len(buf))
	read := int64(0)
	bounce := make([]byte, fio.sectorSize)

	for remaining > 0 && offset+read < length {
		cur := offset + read
		sectorOfs := cur % int64(fio.sectorSize)
		lengthRemaining := length - cur
		chunk := remaining
		if lengthRemaining < chunk {
			chunk = lengthRemaining
		}
		if int64(fio.sectorSize)-sectorOfs < chunk {
			chunk = int64(fio.sectorSize) - sectorOfs
		}

		sector, allocated := fio.index.Translate(&in, cur)
		dst := buf[read : read+chunk]

		if sectorOfs == 0 && chunk == int64(fio.sectorSize) {
			if allocated {
				fio.pool.Read(dst, sector)
			} else {
				clearBytes(dst)
			}
		} else {
			if allocated {
				fio.pool.Read(bounce, sector)
			} else {
				clearBytes(bounce)
			}
			copy(dst, bounce[sectorOfs:sectorOfs+chunk])
		}

		read += chunk
		remaining -= chunk
	}

	return int(read), nil
}

// WriteAt writes len(buf) bytes at offset, growing the inode first if
// the write extends past the current length. It acquires the
// per-inode lock for the entire call, serializing writers of the same
// inode. If a deny-write reservation is active, it returns 0 with no
// error without ever acquiring the lock's protected state twice.
func (fio *FileIO) WriteAt(rec *inoderegistry.Record, buf []byte, offset int64) (int, error) {
	if rec.WriteDenied() {
		return 0, nil
	}

	rec.Lock()
	defer rec.Unlock()

	in, err := fio.index.ReadInode(rec.Sector)
	if err != nil {
		return 0, err
	}

	oldLength := int64(in.Length)
	need := offset + int64(len(buf))
	if need > int64(in.Length) {
		if !fio.index.Resize(&in, need) {
			return 0, nil
		}
		if err := fio.index.WriteInode(rec.Sector, in); err != nil {
			return 0, err
		}
	}

	length := int64(in.Length)
	remaining := int64(len(buf))
	written := int64(0)
	bounce := make([]byte, fio.sectorSize)

	for remaining > 0 && offset+written < length {
		cur := offset + written
		sectorOfs := cur % int64(fio.sectorSize)
		lengthRemaining := length - cur
		chunk := remaining
		if lengthRemaining < chunk {
			chunk = lengthRemaining
		}
		if int64(fio.sectorSize)-sectorOfs < chunk {
			chunk = int64(fio.sectorSize) - sectorOfs
		}

		sector, allocated := fio.index.Translate(&in, cur)
		src := buf[written : written+chunk]

		if sectorOfs == 0 && chunk == int64(fio.sectorSize) {
			fio.pool.Write(src, sector)
		} else {
			sectorStart := cur - sectorOfs
			if sectorStart >= oldLength {
				// This sector starts at or past the pre-write length:
				// whatever's past the write is unwritten, so start
				// from zeros instead of reading it back.
				clearBytes(bounce)
			} else if allocated {
				fio.pool.Read(bounce, sector)
			} else {
				clearBytes(bounce)
			}
			copy(bounce[sectorOfs:sectorOfs+chunk], src)
			fio.pool.Write(bounce, sector)
		}

		written += chunk
		remaining -= chunk
	}

	return int(written), nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
