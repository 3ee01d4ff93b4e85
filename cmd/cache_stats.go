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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheStatsCmd opens the volume, reports the hit/miss counters it
// accumulated during mount, then flushes and closes it (cache_destroy). It exists
// so the cache_hits()/cache_misses() operations in the design have a
// command-line surface, the way gcsfuse-scc-gc reports its own counters.
var cacheStatsCmd = &cobra.Command{
	Use:   "cache-stats",
	Short: "Report cache hit/miss counters for a device file",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.CacheDestroy()

	fmt.Printf("hits=%d misses=%d\n", engine.CacheHits(), engine.CacheMisses())
	return nil
}
