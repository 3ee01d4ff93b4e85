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

package blockindex

import (
	"encoding/binary"

	"github.com/blockvol/blockvol/internal/cachepool"
	"github.com/blockvol/blockvol/internal/freemap"
)

// Index drives the inode index tree: reading and writing inode
// sectors through the cache pool, translating offsets to sectors, and
// growing/shrinking a file's footprint against the free-map.
type Index struct {
	pool       *cachepool.Pool
	freeMap    freemap.FreeMap
	sectorSize int
}

// New builds an Index over pool, allocating from freeMap.
func New(pool *cachepool.Pool, freeMap freemap.FreeMap) *Index {
	return &Index{pool: pool, freeMap: freeMap, sectorSize: pool.SectorSize()}
}

// ReadInode loads and parses the inode stored at sector.
func (idx *Index) ReadInode(sector uint32) (Inode, error) {
	buf := make([]byte, idx.sectorSize)
	idx.pool.Read(buf, sector)
	return Unmarshal(buf)
}

// WriteInode serializes in and writes it to sector through the cache.
func (idx *Index) WriteInode(sector uint32, in Inode) error {
	buf, err := in.Marshal(idx.sectorSize)
	if err != nil {
		return err
	}
	idx.pool.Write(buf, sector)
	return nil
}

func (idx *Index) readSectorIDs(sector uint32, out []uint32) {
	buf := make([]byte, idx.sectorSize)
	idx.pool.Read(buf, sector)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
}

func (idx *Index) writeSectorIDs(sector uint32, ids []uint32) {
	buf := make([]byte, idx.sectorSize)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[i*4:], id)
	}
	idx.pool.Write(buf, sector)
}

func (idx *Index) zeroSector(sector uint32) {
	idx.pool.Write(make([]byte, idx.sectorSize), sector)
}

// Translate maps a byte offset within in to the data sector holding
// it. ok is false when the offset falls in an unallocated hole: the
// caller must treat that as a zero-filled sector, never as sector 0.
func (idx *Index) Translate(in *Inode, offset int64) (sector uint32, ok bool) {
	entries := entriesPerSector(idx.sectorSize)
	s := sectorIndex(offset, idx.sectorSize)

	if s < DirectCount {
		id := in.Direct[s]
		return id, id != 0
	}
	s -= DirectCount

	if s < int64(entries) {
		if in.Indirect == 0 {
			return 0, false
		}
		ids := make([]uint32, entries)
		idx.readSectorIDs(in.Indirect, ids)
		id := ids[s]
		return id, id != 0
	}
	s -= int64(entries)

	if in.IndirectDouble == 0 {
		return 0, false
	}
	outer := s / int64(entries)
	inner := s % int64(entries)

	outerIDs := make([]uint32, entries)
	idx.readSectorIDs(in.IndirectDouble, outerIDs)
	subSector := outerIDs[outer]
	if subSector == 0 {
		return 0, false
	}

	innerIDs := make([]uint32, entries)
	idx.readSectorIDs(subSector, innerIDs)
	id := innerIDs[inner]
	return id, id != 0
}

// blocksNeeded returns the total sector count (data sectors plus the
// indirect/double-indirect sectors required to address them) for a
// file of the given size.
func blocksNeeded(size int64, sectorSize int) int {
	n := dataSectorCount(size, sectorSize)
	entries := entriesPerSector(sectorSize)

	blocks := n
	if n > DirectCount {
		blocks++ // indirect sector itself
	}
	if n > DirectCount+entries {
		blocks++ // double-indirect sector itself
		rem := n - DirectCount - entries
		blocks += (rem + entries - 1) / entries // inner single-indirect sectors
	}
	return blocks
}

// Resize grows or shrinks in to newSize, allocating every newly
// reachable data/index sector in a single up-front non-consecutive
// allocation and releasing every sector that falls out of range. It
// either succeeds completely, leaving in.Length == newSize, or leaves
// in entirely unmodified and returns false.
func (idx *Index) Resize(in *Inode, newSize int64) bool {
	oldLen := int64(in.Length)
	if oldLen < 0 {
		oldLen = 0
	}

	oldBlocks := blocksNeeded(oldLen, idx.sectorSize)
	newBlocks := blocksNeeded(newSize, idx.sectorSize)

	var fresh []uint32
	if delta := newBlocks - oldBlocks; delta > 0 {
		ids, ok := idx.freeMap.AllocateNonConsecutive(delta)
		if !ok {
			return false
		}
		fresh = ids
	}
	cursor := 0
	nextFresh := func() uint32 {
		id := fresh[cursor]
		cursor++
		return id
	}

	entries := entriesPerSector(idx.sectorSize)
	newDataCount := dataSectorCount(newSize, idx.sectorSize)
	directLimit := int64(DirectCount) * int64(idx.sectorSize)
	singleLimit := int64(DirectCount+entries) * int64(idx.sectorSize)

	// Step 3: direct slots.
	for i := 0; i < DirectCount; i++ {
		needed := i < newDataCount
		switch {
		case !needed && in.Direct[i] != 0:
			idx.freeMap.Release(in.Direct[i], 1)
			in.Direct[i] = 0
		case needed && in.Direct[i] == 0:
			id := nextFresh()
			idx.zeroSector(id)
			in.Direct[i] = id
		}
	}

	// Step 4.
	if newSize <= directLimit && in.Indirect == 0 {
		in.Length = int32(newSize)
		return true
	}

	// Step 5: single-indirect sector.
	indirectWasZero := in.Indirect == 0
	if indirectWasZero {
		in.Indirect = nextFresh()
	}
	indirectIDs := make([]uint32, entries)
	if !indirectWasZero {
		idx.readSectorIDs(in.Indirect, indirectIDs)
	}

	indirectNeeded := newDataCount - DirectCount
	if indirectNeeded < 0 {
		indirectNeeded = 0
	}
	if indirectNeeded > entries {
		indirectNeeded = entries
	}
	for i := 0; i < entries; i++ {
		needed := i < indirectNeeded
		switch {
		case !needed && indirectIDs[i] != 0:
			idx.freeMap.Release(indirectIDs[i], 1)
			indirectIDs[i] = 0
		case needed && indirectIDs[i] == 0:
			id := nextFresh()
			idx.zeroSector(id)
			indirectIDs[i] = id
		}
	}

	idx.writeSectorIDs(in.Indirect, indirectIDs)

	// Step 6/7: double-indirect sector. Processed whenever the new size
	// still reaches into it, or an existing double-indirect subtree
	// needs tearing down because the file shrank straight past it in
	// one call — in.IndirectDouble must never survive a shrink that
	// lands below singleLimit, however far below.
	if newSize > singleLimit || in.IndirectDouble != 0 {
		doubleWasZero := in.IndirectDouble == 0
		if doubleWasZero {
			in.IndirectDouble = nextFresh()
		}
		outerIDs := make([]uint32, entries)
		if !doubleWasZero {
			idx.readSectorIDs(in.IndirectDouble, outerIDs)
		}

		doubleNeeded := newDataCount - DirectCount - entries
		if doubleNeeded < 0 {
			doubleNeeded = 0
		}

		for outer := 0; outer < entries; outer++ {
			innerNeeded := doubleNeeded - outer*entries
			if innerNeeded < 0 {
				innerNeeded = 0
			}
			if innerNeeded > entries {
				innerNeeded = entries
			}

			switch {
			case innerNeeded == 0 && outerIDs[outer] != 0:
				idx.releaseSingleIndirect(outerIDs[outer], entries)
				outerIDs[outer] = 0
			case innerNeeded > 0:
				subWasZero := outerIDs[outer] == 0
				if subWasZero {
					outerIDs[outer] = nextFresh()
				}
				innerIDs := make([]uint32, entries)
				if !subWasZero {
					idx.readSectorIDs(outerIDs[outer], innerIDs)
				}
				for i := 0; i < entries; i++ {
					needed := i < innerNeeded
					switch {
					case !needed && innerIDs[i] != 0:
						idx.freeMap.Release(innerIDs[i], 1)
						innerIDs[i] = 0
					case needed && innerIDs[i] == 0:
						id := nextFresh()
						idx.zeroSector(id)
						innerIDs[i] = id
					}
				}
				idx.writeSectorIDs(outerIDs[outer], innerIDs)
			}
		}

		if newSize <= singleLimit {
			idx.writeSectorIDs(in.IndirectDouble, outerIDs)
			idx.freeMap.Release(in.IndirectDouble, 1)
			in.IndirectDouble = 0
		} else {
			idx.writeSectorIDs(in.IndirectDouble, outerIDs)
		}
	}

	// The indirect sector itself is no longer referenced once the file
	// shrinks back into the direct-only range, regardless of how deep
	// the index tree had grown before this call.
	if newSize <= directLimit {
		idx.freeMap.Release(in.Indirect, 1)
		in.Indirect = 0
	}

	in.Length = int32(newSize)
	return true
}

// releaseSingleIndirect frees every data sector a single-indirect
// sector references, then the sector itself.
func (idx *Index) releaseSingleIndirect(sector uint32, entries int) {
	ids := make([]uint32, entries)
	idx.readSectorIDs(sector, ids)
	for _, id := range ids {
		if id != 0 {
			idx.freeMap.Release(id, 1)
		}
	}
	idx.freeMap.Release(sector, 1)
}
