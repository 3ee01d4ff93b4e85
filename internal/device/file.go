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

package device

import (
	"fmt"
	"os"
)

// File is a BlockDevice backed by a regular file or block special file,
// addressed with pread/pwrite-style offset I/O via os.File.ReadAt/WriteAt.
type File struct {
	f          *os.File
	sectorSize int
	sectors    uint32
}

var _ BlockDevice = (*File)(nil)

// OpenFile opens path (creating it if missing and truncating it to
// exactly sectorCount sectors of sectorSize bytes each, which grows a
// shorter file and shortens a longer one) as a File device.
func OpenFile(path string, sectorSize int, sectorCount uint32) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("device: opening %s: %w", path, err)
	}

	size := int64(sectorSize) * int64(sectorCount)
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("device: sizing %s to %d bytes: %w", path, size, err)
	}

	return &File{f: f, sectorSize: sectorSize, sectors: sectorCount}, nil
}

func (d *File) SectorSize() int     { return d.sectorSize }
func (d *File) SectorCount() uint32 { return d.sectors }

func (d *File) ReadSector(id uint32, dst []byte) error {
	if err := d.checkBounds(id, dst); err != nil {
		return err
	}
	_, err := d.f.ReadAt(dst, int64(id)*int64(d.sectorSize))
	return err
}

func (d *File) WriteSector(id uint32, src []byte) error {
	if err := d.checkBounds(id, src); err != nil {
		return err
	}
	_, err := d.f.WriteAt(src, int64(id)*int64(d.sectorSize))
	return err
}

// Close releases the underlying file descriptor.
func (d *File) Close() error {
	return d.f.Close()
}

func (d *File) checkBounds(id uint32, buf []byte) error {
	if id >= d.sectors {
		return fmt.Errorf("device: sector %d out of range (%d sectors)", id, d.sectors)
	}
	if len(buf) != d.sectorSize {
		return fmt.Errorf("device: buffer length %d != sector size %d", len(buf), d.sectorSize)
	}
	return nil
}
