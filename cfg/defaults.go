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

// DefaultSectorSize is B, the design constant, in bytes.
const DefaultSectorSize = 512

// DefaultCacheFrames is C, the design constant: the size of the frame pool.
const DefaultCacheFrames = 64

// DefaultSectorCount is the device size assumed when none is configured.
const DefaultSectorCount = 1 << 20

// DefaultFreeMapBase is the first sector ID the free-map may allocate,
// leaving a small reserved range below it for inode placement.
const DefaultFreeMapBase = 1

// GetDefaultLoggingConfig returns the configuration used before a config
// file or flags have been parsed.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: "INFO",
		Format:   "text",
		LogRotate: LogRotateConfig{
			MaxFileSizeMB:   512,
			BackupFileCount: 10,
			Compress:        true,
		},
	}
}

// GetDefaultConfig returns the configuration used before a config file or
// flags have been parsed.
func GetDefaultConfig() Config {
	return Config{
		Volume: VolumeConfig{
			SectorSize:  DefaultSectorSize,
			CacheFrames: DefaultCacheFrames,
			SectorCount: DefaultSectorCount,
			FreeMapBase: DefaultFreeMapBase,
		},
		Logging: GetDefaultLoggingConfig(),
	}
}
