// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package reg

import (
	"encoding/binary"
	"sync"
)

// Bytes is a little endian Memory over a byte slice, such as a block RAM
// image or a test fixture.
type Bytes struct {
	sync.Mutex
	B []byte
}

func (m *Bytes) Load32(off uint64) uint32 {
	m.Lock()
	defer m.Unlock()
	return binary.LittleEndian.Uint32(m.B[off:])
}

func (m *Bytes) Store32(off uint64, v uint32) {
	m.Lock()
	defer m.Unlock()
	binary.LittleEndian.PutUint32(m.B[off:], v)
}

func (m *Bytes) Unmap() error { return nil }
