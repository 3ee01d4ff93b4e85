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

// Package invariant holds the one helper used to turn a contract
// breach (not a recoverable error) into a fatal assertion failure:
// deny_write_cnt exceeding open_cnt, allow_write with no reservation,
// and closing an inode whose open count is already zero. An inode
// sector of the wrong size is not checked here: blockindex's Marshal
// and Unmarshal report it as an ordinary error.
package invariant

import "fmt"

// Check panics with a formatted message if cond is false.
func Check(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(msg, args...))
	}
}
