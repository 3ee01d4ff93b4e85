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

import "fmt"

// Memory is an in-memory BlockDevice, used by tests in place of a real
// block special file.
type Memory struct {
	sectorSize int
	sectors    [][]byte
}

var _ BlockDevice = (*Memory)(nil)

// NewMemory allocates a zero-filled in-memory device with the given
// geometry.
func NewMemory(sectorSize int, sectorCount uint32) *Memory {
	sectors := make([][]byte, sectorCount)
	for i := range sectors {
		sectors[i] = make([]byte, sectorSize)
	}
	return &Memory{sectorSize: sectorSize, sectors: sectors}
}

func (m *Memory) SectorSize() int     { return m.sectorSize }
func (m *Memory) SectorCount() uint32 { return uint32(len(m.sectors)) }

func (m *Memory) ReadSector(id uint32, dst []byte) error {
	if err := m.checkBounds(id, dst); err != nil {
		return err
	}
	copy(dst, m.sectors[id])
	return nil
}

func (m *Memory) WriteSector(id uint32, src []byte) error {
	if err := m.checkBounds(id, src); err != nil {
		return err
	}
	copy(m.sectors[id], src)
	return nil
}

func (m *Memory) checkBounds(id uint32, buf []byte) error {
	if id >= uint32(len(m.sectors)) {
		return fmt.Errorf("device: sector %d out of range (%d sectors)", id, len(m.sectors))
	}
	if len(buf) != m.sectorSize {
		return fmt.Errorf("device: buffer length %d != sector size %d", len(buf), m.sectorSize)
	}
	return nil
}
