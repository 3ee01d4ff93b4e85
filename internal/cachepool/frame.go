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

package cachepool

import "sync"

// frame holds one sector's worth of cached bytes. Its identity fields
// (sector, valid, dirty) and its LRU links are GUARDED_BY the owning
// Pool's mu; its data is guarded by its own rwmu. Go's sync.RWMutex
// queues new readers behind a pending writer, which gives us the
// writer-preferring behavior the design calls for without a custom
// implementation.
type frame struct {
	rwmu sync.RWMutex

	sector uint32
	valid  bool
	dirty  bool
	data   []byte

	prev, next *frame
}
