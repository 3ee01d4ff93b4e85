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

package metrics_test

import (
	"context"
	"testing"

	"github.com/blockvol/blockvol/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestCacheMetrics_HitsAndMisses(t *testing.T) {
	m, err := metrics.NewCacheMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordHit(ctx)
	m.RecordHit(ctx)
	m.RecordMiss(ctx)
	m.RecordEviction(ctx)

	require.Equal(t, uint64(2), m.Hits())
	require.Equal(t, uint64(1), m.Misses())
	require.Equal(t, uint64(1), m.Evictions())

	m.Reset()
	require.Equal(t, uint64(0), m.Hits())
	require.Equal(t, uint64(0), m.Misses())
}
