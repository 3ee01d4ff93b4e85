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

// Package device defines the block device adapter blockvol's cache pool
// sits on top of. The adapter is treated as an external collaborator per
// the design: it transfers exactly SectorSize bytes per call, synchronously,
// and is assumed infallible from the cache pool's point of view other than
// the error it returns.
package device

// BlockDevice is the contract the cache pool relies on. Two concrete
// implementations are provided: Memory (for tests) and File (for a real
// backing file or block special file).
type BlockDevice interface {
	// SectorSize returns B, the fixed transfer size in bytes.
	SectorSize() int

	// SectorCount returns the number of addressable sectors on the device.
	SectorCount() uint32

	// ReadSector copies exactly SectorSize bytes from the given sector into
	// dst. len(dst) must equal SectorSize.
	ReadSector(id uint32, dst []byte) error

	// WriteSector copies exactly SectorSize bytes from src to the given
	// sector. len(src) must equal SectorSize.
	WriteSector(id uint32, src []byte) error
}
