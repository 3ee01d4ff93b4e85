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

import "fmt"

const (
	DeviceFileRequiredError   = "volume.device-file must be set"
	SectorSizeInvalidError    = "volume.sector-size must be a positive multiple of 4"
	CacheFramesInvalidError   = "volume.cache-frames must be at least 1"
	LogSeverityInvalidError   = "logging.severity must be one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF"
	LogFormatInvalidError     = "logging.format must be text or json"
	LogRotateSizeInvalidError = "logging.log-rotate.max-file-size-mb must be at least 1"
)

var validSeverities = map[string]bool{
	"TRACE": true, "DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true, "OFF": true,
}

// Validate rejects configurations that would make the cache or index
// arithmetic ill-defined. Sector size must divide evenly by 4 because the
// indirect/double-indirect layout packs 4-byte sector IDs.
func Validate(c *Config) error {
	if c.Volume.DeviceFile == "" {
		return fmt.Errorf(DeviceFileRequiredError)
	}
	if c.Volume.SectorSize <= 0 || c.Volume.SectorSize%4 != 0 {
		return fmt.Errorf(SectorSizeInvalidError)
	}
	if c.Volume.CacheFrames < 1 {
		return fmt.Errorf(CacheFramesInvalidError)
	}
	if !validSeverities[c.Logging.Severity] {
		return fmt.Errorf(LogSeverityInvalidError)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf(LogFormatInvalidError)
	}
	if c.Logging.LogRotate.MaxFileSizeMB < 1 {
		return fmt.Errorf(LogRotateSizeInvalidError)
	}
	return nil
}
