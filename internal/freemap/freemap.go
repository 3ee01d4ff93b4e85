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

// Package freemap defines the free-sector allocator blockindex.Resize
// drives. It is an external collaborator per the design: a real deployment
// would back it onto an on-disk bitmap sector range, guarded by its own
// lock innermost in the lock order (registry -> per-inode -> pool ->
// per-frame -> free-map).
package freemap

// FreeMap allocates and releases sectors. Implementations guard their own
// state; callers never need an external lock around these calls.
type FreeMap interface {
	// AllocateNonConsecutive atomically reserves n distinct free sectors.
	// On success it returns exactly n sector IDs and ok is true. On
	// failure (not enough free sectors), it returns ok=false without
	// reserving anything.
	AllocateNonConsecutive(n int) (ids []uint32, ok bool)

	// Release returns a run of count consecutive sector IDs, starting at
	// id, to the pool of free sectors.
	Release(id uint32, count int)

	// Free reports the number of currently free sectors.
	Free() int
}
