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

// entriesPerSector is the number of 4-byte sector IDs packed into one
// indirect or double-indirect sector.
func entriesPerSector(sectorSize int) int {
	return sectorSize / 4
}

// dataSectorCount returns the number of B-byte data sectors a file of
// size bytes touches: ceil(size / sectorSize).
func dataSectorCount(size int64, sectorSize int) int {
	if size <= 0 {
		return 0
	}
	ss := int64(sectorSize)
	return int((size + ss - 1) / ss)
}

// sectorIndex maps a byte offset to the data-sector index it falls in,
// using 0-based sector indexing throughout: direct for s < 12,
// single-indirect for 12 <= s < 12+entries, double-indirect beyond
// that. This corrects the 1-based off-by-one arithmetic of the
// original design, verified at the boundary sectors 11/12/13, 139/140/141.
func sectorIndex(offset int64, sectorSize int) int64 {
	return offset / int64(sectorSize)
}
