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

package freemap

import "sync"

// Bitmap is a FreeMap backed by an in-memory bit-per-sector map. It covers
// sectors [base, base+size).
type Bitmap struct {
	mu   sync.Mutex
	base uint32
	used []bool
	free int
}

var _ FreeMap = (*Bitmap)(nil)

// NewBitmap creates a Bitmap covering size sectors starting at base, all
// initially free.
func NewBitmap(base uint32, size int) *Bitmap {
	return &Bitmap{base: base, used: make([]bool, size), free: size}
}

// AllocateNonConsecutive reserves n free bits anywhere in the map. The
// allocation either fully succeeds or leaves the map unchanged.
func (b *Bitmap) AllocateNonConsecutive(n int) ([]uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 {
		return nil, true
	}
	if n > b.free {
		return nil, false
	}

	ids := make([]uint32, 0, n)
	for i := range b.used {
		if len(ids) == n {
			break
		}
		if !b.used[i] {
			b.used[i] = true
			ids = append(ids, b.base+uint32(i))
		}
	}

	b.free -= len(ids)
	return ids, true
}

// Release marks [id, id+count) free again.
func (b *Bitmap) Release(id uint32, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < count; i++ {
		idx := int(id) + i - int(b.base)
		if idx < 0 || idx >= len(b.used) {
			continue
		}
		if b.used[idx] {
			b.used[idx] = false
			b.free++
		}
	}
}

// Free reports the number of currently unreserved sectors.
func (b *Bitmap) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.free
}
