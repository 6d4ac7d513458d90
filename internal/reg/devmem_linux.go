// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build linux

package reg

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/platinasystems/hwchar/internal/memmap"
)

// DefaultDevMem is the physical memory device.
const DefaultDevMem = "/dev/mem"

// DevMem maps regions of a physical memory device file. Each Map recomputes
// the page aligned window containing the region.
type DevMem struct {
	Name string
}

type mmapMemory struct {
	b   []byte
	off uint64
}

func (m *DevMem) Map(r memmap.Region) (*Window, error) {
	if r.Size == 0 {
		return nil, &MapError{r, fmt.Errorf("zero size")}
	}
	name := m.Name
	if len(name) == 0 {
		name = DefaultDevMem
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, &MapError{r, err}
	}
	defer f.Close()
	pagesize := uint64(os.Getpagesize())
	page, off := memmap.PageAlign(r.Base, pagesize)
	n := memmap.PageRound(off+r.Size, pagesize)
	b, err := unix.Mmap(int(f.Fd()), int64(page), int(n),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &MapError{r, fmt.Errorf("mmap %s: %w", name, err)}
	}
	return NewWindow(r, &mmapMemory{b, off}), nil
}

func (m *mmapMemory) word(off uint64) *uint32 {
	return (*uint32)(unsafe.Pointer(&m.b[m.off+off]))
}

func (m *mmapMemory) Load32(off uint64) uint32 {
	return atomic.LoadUint32(m.word(off))
}

func (m *mmapMemory) Store32(off uint64, v uint32) {
	atomic.StoreUint32(m.word(off), v)
}

func (m *mmapMemory) Unmap() error {
	b := m.b
	m.b = nil
	return unix.Munmap(b)
}
