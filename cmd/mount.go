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
	"os"
	"os/signal"
	"syscall"

	"github.com/blockvol/blockvol"
	"github.com/blockvol/blockvol/internal/device"
	"github.com/blockvol/blockvol/internal/freemap"
	"github.com/blockvol/blockvol/internal/logger"
	"github.com/blockvol/blockvol/internal/metrics"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount a device file as a block-addressed volume",
	RunE:  runMount,
}

// openEngine wires a device, free-map, and cache pool from Config,
// the way the teacher's mountWithArgs resolves a bucket handle from
// flags before constructing the fuse file system.
func openEngine() (*blockvol.Engine, error) {
	if err := checkInit(); err != nil {
		return nil, err
	}

	if err := logger.InitLogFile(Config.Logging); err != nil {
		return nil, fmt.Errorf("initializing log file: %w", err)
	}
	logger.SetLogFormat(Config.Logging.Format)

	if err := metrics.InstallPrometheusProvider(); err != nil {
		logger.Warnf("cmd: prometheus metrics exporter unavailable: %v", err)
	}

	dev, err := device.OpenFile(Config.Volume.DeviceFile, Config.Volume.SectorSize, Config.Volume.SectorCount)
	if err != nil {
		return nil, fmt.Errorf("opening device file: %w", err)
	}

	fm := freemap.NewBitmap(Config.Volume.FreeMapBase, int(Config.Volume.SectorCount)-int(Config.Volume.FreeMapBase))

	engine, err := blockvol.Open(dev, fm, Config.Volume.CacheFrames)
	if err != nil {
		return nil, fmt.Errorf("cache_init: %w", err)
	}

	sessionID := uuid.NewString()
	logger.Infof("blockvol: mounted %s (session %s, sector-size=%d, cache-frames=%d, sectors=%d)",
		Config.Volume.DeviceFile, sessionID, Config.Volume.SectorSize, Config.Volume.CacheFrames, Config.Volume.SectorCount)

	return engine, nil
}

func runMount(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Infof("blockvol: mounted at %s, waiting for SIGINT/SIGTERM to unmount", Config.Volume.DeviceFile)
	<-sigCh

	logger.Infof("blockvol: unmounting %s (hits=%d misses=%d)", Config.Volume.DeviceFile, engine.CacheHits(), engine.CacheMisses())
	return engine.CacheDestroy()
}
