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

package blockindex_test

import (
	"testing"

	"github.com/blockvol/blockvol/internal/blockindex"
	"github.com/stretchr/testify/require"
)

func TestInode_MarshalUnmarshalRoundTrip(t *testing.T) {
	in := blockindex.Inode{
		Indirect:       7,
		IndirectDouble: 9,
		Length:         12345,
	}
	for i := range in.Direct {
		in.Direct[i] = uint32(i + 1)
	}

	buf, err := in.Marshal(512)
	require.NoError(t, err)
	require.Len(t, buf, 512)

	got, err := blockindex.Unmarshal(buf)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestInode_UnmarshalRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 512)
	_, err := blockindex.Unmarshal(buf)
	require.Error(t, err)
}

func TestInode_MarshalRejectsUndersizedSector(t *testing.T) {
	in := blockindex.Inode{}
	_, err := in.Marshal(16)
	require.Error(t, err)
}
