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

// Package metrics instruments the cache pool's lookup path, the way
// common/otel_metrics.go instruments GCS and file-cache operations: an
// OpenTelemetry counter per event, plus an atomic mirror for callers (like
// cache_hits()/cache_misses() in the design) that need a synchronous read
// rather than waiting on a metrics exporter.
package metrics

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var cacheMeter = otel.Meter("blockvol/cache")

// CacheMetrics tracks cache pool events. The zero value is not usable; call
// NewCacheMetrics.
type CacheMetrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter

	hitsAtomic      atomic.Int64
	missesAtomic    atomic.Int64
	evictionsAtomic atomic.Int64
}

// NewCacheMetrics registers the blockvol/cache instruments against the
// global OpenTelemetry meter provider.
func NewCacheMetrics() (*CacheMetrics, error) {
	hits, err := cacheMeter.Int64Counter("cache_hits", metric.WithDescription("Cache pool lookups resolved by a resident frame."))
	if err != nil {
		return nil, err
	}
	misses, err := cacheMeter.Int64Counter("cache_misses", metric.WithDescription("Cache pool lookups that required refilling the least-recently-used frame."))
	if err != nil {
		return nil, err
	}
	evictions, err := cacheMeter.Int64Counter("cache_evictions", metric.WithDescription("Frames evicted to satisfy a miss."))
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{hits: hits, misses: misses, evictions: evictions}, nil
}

func (m *CacheMetrics) RecordHit(ctx context.Context) {
	m.hitsAtomic.Add(1)
	m.hits.Add(ctx, 1)
}

func (m *CacheMetrics) RecordMiss(ctx context.Context) {
	m.missesAtomic.Add(1)
	m.misses.Add(ctx, 1)
}

func (m *CacheMetrics) RecordEviction(ctx context.Context) {
	m.evictionsAtomic.Add(1)
	m.evictions.Add(ctx, 1)
}

// Hits returns the number of cache hits observed so far.
func (m *CacheMetrics) Hits() uint64 { return uint64(m.hitsAtomic.Load()) }

// Misses returns the number of cache misses observed so far.
func (m *CacheMetrics) Misses() uint64 { return uint64(m.missesAtomic.Load()) }

// Evictions returns the number of frame evictions observed so far.
func (m *CacheMetrics) Evictions() uint64 { return uint64(m.evictionsAtomic.Load()) }

// Reset zeroes the atomic mirrors, used by cache_reset test hooks. The
// OpenTelemetry counters are monotonic and are intentionally left alone:
// an exporter scraping across a reset should still see a monotonic series.
func (m *CacheMetrics) Reset() {
	m.hitsAtomic.Store(0)
	m.missesAtomic.Store(0)
	m.evictionsAtomic.Store(0)
}
