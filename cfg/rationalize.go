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

// Rationalize fills in computed defaults that flags/viper leave at their
// zero value, the way the original gcsfuse config package resolves
// derived fields before validation.
func Rationalize(c *Config) {
	if c.Volume.SectorSize == 0 {
		c.Volume.SectorSize = DefaultSectorSize
	}
	if c.Volume.CacheFrames == 0 {
		c.Volume.CacheFrames = DefaultCacheFrames
	}
	if c.Volume.SectorCount == 0 {
		c.Volume.SectorCount = DefaultSectorCount
	}
	if c.Volume.FreeMapBase == 0 {
		c.Volume.FreeMapBase = DefaultFreeMapBase
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Severity == "" {
		c.Logging.Severity = "INFO"
	}
	if c.Logging.LogRotate.MaxFileSizeMB == 0 {
		c.Logging.LogRotate.MaxFileSizeMB = 512
	}
}
