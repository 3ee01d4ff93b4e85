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

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top-level configuration for a blockvol mount. It is bound
// from command-line flags via pflag/viper and can be overridden by a YAML
// config file.
type Config struct {
	Volume  VolumeConfig  `yaml:"volume"`
	Logging LoggingConfig `yaml:"logging"`
}

// VolumeConfig describes the backing device and the engine's resource
// budgets.
type VolumeConfig struct {
	// DeviceFile is the path to the raw block device file backing the volume.
	DeviceFile string `yaml:"device-file"`

	// SectorSize is B in the design: the fixed size of a sector in bytes.
	SectorSize int `yaml:"sector-size"`

	// CacheFrames is C in the design: the number of frames in the buffer
	// cache pool.
	CacheFrames int `yaml:"cache-frames"`

	// SectorCount is the total number of sectors the device file holds.
	SectorCount uint32 `yaml:"sector-count"`

	// FreeMapBase is the first sector ID the free-map bitmap may hand
	// out; sectors below it are reserved for inode placement by the
	// (out-of-scope) directory layer.
	FreeMapBase uint32 `yaml:"free-map-base"`
}

// LoggingConfig controls log destination, format, and rotation.
type LoggingConfig struct {
	FilePath string `yaml:"file-path"`

	// Format is either "text" or "json".
	Format string `yaml:"format"`

	// Severity is one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF.
	Severity string `yaml:"severity"`

	LogRotate LogRotateConfig `yaml:"log-rotate"`
}

// LogRotateConfig mirrors the knobs lumberjack.Logger exposes.
type LogRotateConfig struct {
	MaxFileSizeMB   int  `yaml:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count"`
	Compress        bool `yaml:"compress"`
}

// BindFlags registers the flags that populate a Config and binds each one
// into viper under the same key used by the yaml tags above.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.String("device-file", "", "Path to the backing block device file.")
	flagSet.Int("sector-size", 512, "Sector size in bytes (B in the design).")
	flagSet.Int("cache-frames", 64, "Number of frames in the buffer cache pool (C in the design).")
	flagSet.Uint32("sector-count", 1<<20, "Total number of sectors the device file holds.")
	flagSet.Uint32("free-map-base", 1, "First sector ID the free-map bitmap may allocate.")

	flagSet.String("log-file-path", "", "Path to the log file. Empty logs to stderr.")
	flagSet.String("log-format", "text", "Log format: text or json.")
	flagSet.String("log-severity", "INFO", "Minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	flagSet.Int("log-max-file-size-mb", 512, "Maximum size in MB before a log file is rotated.")
	flagSet.Int("log-backup-file-count", 10, "Number of rotated log files to retain.")
	flagSet.Bool("log-compress", true, "Compress rotated log files.")

	for _, binding := range []struct {
		key  string
		flag string
	}{
		{"volume.device-file", "device-file"},
		{"volume.sector-size", "sector-size"},
		{"volume.cache-frames", "cache-frames"},
		{"volume.sector-count", "sector-count"},
		{"volume.free-map-base", "free-map-base"},
		{"logging.file-path", "log-file-path"},
		{"logging.format", "log-format"},
		{"logging.severity", "log-severity"},
		{"logging.log-rotate.max-file-size-mb", "log-max-file-size-mb"},
		{"logging.log-rotate.backup-file-count", "log-backup-file-count"},
		{"logging.log-rotate.compress", "log-compress"},
	} {
		if err := viper.BindPFlag(binding.key, flagSet.Lookup(binding.flag)); err != nil {
			return err
		}
	}

	return nil
}
