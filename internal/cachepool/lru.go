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

// The pool keeps its frames in an intrusive doubly linked list, front
// (p.head) to back (p.tail), in strict most-recently-used order. This is
// the same node-splicing shape as common.linkedListQueue, generalized to
// support O(1) removal from the middle (a plain FIFO queue only ever pops
// its front). All of these must be called with p.mu held.

func (p *Pool) unlink(f *frame) {
	if f.prev != nil {
		f.prev.next = f.next
	} else {
		p.head = f.next
	}
	if f.next != nil {
		f.next.prev = f.prev
	} else {
		p.tail = f.prev
	}
	f.prev, f.next = nil, nil
}

func (p *Pool) pushFront(f *frame) {
	f.prev = nil
	f.next = p.head
	if p.head != nil {
		p.head.prev = f
	}
	p.head = f
	if p.tail == nil {
		p.tail = f
	}
}

// moveToFront promotes f to the most-recently-used position. Used by both
// hits and misses per the design.
func (p *Pool) moveToFront(f *frame) {
	if p.head == f {
		return
	}
	p.unlink(f)
	p.pushFront(f)
}
