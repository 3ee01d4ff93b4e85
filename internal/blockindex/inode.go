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

// Package blockindex implements the on-disk inode layout, the
// byte-offset-to-sector translation, and the grow/shrink resize
// algorithm that keeps an inode's index tree consistent with a
// free-map-backed block device.
package blockindex

import (
	"encoding/binary"
	"fmt"
)

// DirectCount is the number of direct sector pointers carried in every
// inode, regardless of sector size.
const DirectCount = 12

// Magic identifies a sector as holding a valid inode.
const Magic uint32 = 0x494e4f44

// inodeHeaderSize is the portion of the inode sector preceding the
// zero-padded reserved region: 12 direct pointers, indirect, double
// indirect, length, magic.
const inodeHeaderSize = 4*DirectCount + 4 + 4 + 4 + 4

// Inode is the in-memory image of one on-disk inode sector.
type Inode struct {
	Direct         [DirectCount]uint32
	Indirect       uint32
	IndirectDouble uint32
	Length         int32
}

// Marshal serializes in into a zero-padded buffer of exactly
// sectorSize bytes, matching the bit-exact little-endian layout:
// direct[0..12], indirect, indirect_double, length, magic, reserved.
func (in *Inode) Marshal(sectorSize int) ([]byte, error) {
	if sectorSize < inodeHeaderSize {
		return nil, fmt.Errorf("blockindex: sector size %d too small for inode header of %d bytes", sectorSize, inodeHeaderSize)
	}

	buf := make([]byte, sectorSize)
	off := 0
	for i := 0; i < DirectCount; i++ {
		binary.LittleEndian.PutUint32(buf[off:], in.Direct[i])
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], in.Indirect)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], in.IndirectDouble)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(in.Length))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], Magic)

	return buf, nil
}

// Unmarshal parses an inode sector previously produced by Marshal,
// returning an error if the magic constant does not match.
func Unmarshal(buf []byte) (Inode, error) {
	if len(buf) < inodeHeaderSize {
		return Inode{}, fmt.Errorf("blockindex: sector buffer too small: %d bytes", len(buf))
	}

	var in Inode
	off := 0
	for i := 0; i < DirectCount; i++ {
		in.Direct[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	in.Indirect = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	in.IndirectDouble = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	in.Length = int32(binary.LittleEndian.Uint32(buf[off:]))
	off += 4

	magic := binary.LittleEndian.Uint32(buf[off:])
	if magic != Magic {
		return Inode{}, fmt.Errorf("blockindex: bad inode magic %#x", magic)
	}

	return in, nil
}
