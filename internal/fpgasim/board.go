// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package fpgasim simulates the reference board: the PS DDR, the CDMA
// engine, the compute unit and its two block RAMs, as seen through their
// physical addresses.
package fpgasim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/platinasystems/hwchar/internal/coherent"
	"github.com/platinasystems/hwchar/internal/memmap"
	"github.com/platinasystems/hwchar/internal/reg"
)

// Ddr is the simulated DDR the coherent buffer is carved from.
var Ddr = memmap.Region{Name: "ddr", Base: 0x1f000000, Size: 16 << 20}

var ErrUnmapped = errors.New("unmapped address")

type device interface {
	load(off uint64) uint32
	store(off uint64, v uint32)
}

type space struct {
	memmap.Region
	mem []byte
	dev device
}

// Access is a traced register access.
type Access struct {
	Write bool
	Addr  uint64
	Value uint32
}

func (a Access) String() string {
	op := "r"
	if a.Write {
		op = "w"
	}
	return fmt.Sprintf("%s %08x %08x", op, a.Addr, a.Value)
}

type Board struct {
	mu     sync.Mutex
	spaces []*space
	trace  []Access
	next   uint64

	Cdma    *Cdma
	Compute *Compute
}

// New builds a board from the given table, which needs the Cdma, MyIP, HwA,
// HwB, HwACdma and HwBCdma regions. The diagnostic regions, if present,
// alias the block RAM at the same address.
func New(t memmap.Table) (*Board, error) {
	b := &Board{next: Ddr.Base}
	for _, name := range []string{memmap.Cdma, memmap.MyIP, memmap.HwA,
		memmap.HwB, memmap.HwACdma, memmap.HwBCdma} {
		if _, err := t.Lookup(name); err != nil {
			return nil, err
		}
	}
	b.addMem(Ddr, make([]byte, Ddr.Size))
	a := make([]byte, t[memmap.HwA].Size)
	b.addMem(t[memmap.HwA], a)
	b.alias(t[memmap.HwACdma], a)
	bb := make([]byte, t[memmap.HwB].Size)
	b.addMem(t[memmap.HwB], bb)
	b.alias(t[memmap.HwBCdma], bb)
	b.Cdma = &Cdma{b: b, sr: SrIdle, ResetReads: 2}
	b.spaces = append(b.spaces, &space{Region: t[memmap.Cdma], dev: b.Cdma})
	b.Compute = &Compute{b: b, a: a, bb: bb}
	b.spaces = append(b.spaces, &space{Region: t[memmap.MyIP],
		dev: b.Compute})
	return b, nil
}

func (b *Board) addMem(r memmap.Region, mem []byte) {
	b.spaces = append(b.spaces, &space{Region: r, mem: mem})
}

// alias maps r onto the leading bytes of mem.
func (b *Board) alias(r memmap.Region, mem []byte) {
	if r.Size > uint64(len(mem)) {
		r.Size = uint64(len(mem))
	}
	b.addMem(r, mem[:r.Size])
}

func (b *Board) find(addr, n uint64) *space {
	for _, s := range b.spaces {
		if s.Contains(addr, n) {
			return s
		}
	}
	return nil
}

// Bytes returns the memory backing [addr, addr+n).
func (b *Board) Bytes(addr, n uint64) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bytes(addr, n)
}

func (b *Board) bytes(addr, n uint64) ([]byte, error) {
	s := b.find(addr, n)
	if s == nil || s.mem == nil {
		return nil, fmt.Errorf("%#x[%d]: %w", addr, n, ErrUnmapped)
	}
	off := addr - s.Base
	return s.mem[off : off+n], nil
}

func (b *Board) copy(src, dst, n uint64) error {
	from, err := b.bytes(src, n)
	if err != nil {
		return err
	}
	to, err := b.bytes(dst, n)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}

func (b *Board) load(addr uint64) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.find(addr, 4)
	if s == nil {
		return 0xffffffff
	}
	if s.dev != nil {
		v := s.dev.load(addr - s.Base)
		b.trace = append(b.trace, Access{false, addr, v})
		return v
	}
	return binary.LittleEndian.Uint32(s.mem[addr-s.Base:])
}

func (b *Board) store(addr uint64, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.find(addr, 4)
	if s == nil {
		return
	}
	if s.dev != nil {
		b.trace = append(b.trace, Access{true, addr, v})
		s.dev.store(addr-s.Base, v)
		return
	}
	binary.LittleEndian.PutUint32(s.mem[addr-s.Base:], v)
}

// Trace returns the register accesses since the last ResetTrace.
func (b *Board) Trace() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Access(nil), b.trace...)
}

func (b *Board) ResetTrace() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trace = b.trace[:0]
}

type window struct {
	b    *Board
	base uint64
}

func (w *window) Load32(off uint64) uint32     { return w.b.load(w.base + off) }
func (w *window) Store32(off uint64, v uint32) { w.b.store(w.base+off, v) }
func (w *window) Unmap() error                 { return nil }

// Map implements reg.Mapper for any region inside one simulated space.
func (b *Board) Map(r memmap.Region) (*reg.Window, error) {
	b.mu.Lock()
	s := b.find(r.Base, r.Size)
	b.mu.Unlock()
	if s == nil || r.Size == 0 {
		return nil, &reg.MapError{Region: r, Err: ErrUnmapped}
	}
	return reg.NewWindow(r, &window{b, r.Base}), nil
}

// Allocate implements coherent.Allocator out of Ddr.
func (b *Board) Allocate(capacity int) (*coherent.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := memmap.PageRound(uint64(capacity), memmap.PageSize)
	if capacity <= 0 || !Ddr.Contains(b.next, n) {
		return nil, &coherent.AllocationError{Capacity: capacity,
			Err: fmt.Errorf("%s: exhausted", Ddr.Name)}
	}
	phys := b.next
	mem, _ := b.bytes(phys, uint64(capacity))
	b.next += n
	return coherent.New(mem[:capacity:capacity], phys, nil), nil
}
