// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package reg maps physical address windows and accesses their 32-bit
// registers at byte offsets.
package reg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/platinasystems/hwchar/internal/memmap"
)

var (
	ErrRange    = errors.New("register offset out of range")
	ErrUnmapped = errors.New("window unmapped")
)

// Memory is the backing of a mapped window. Offsets are checked by Window
// before they get here.
type Memory interface {
	Load32(off uint64) uint32
	Store32(off uint64, v uint32)
	Unmap() error
}

// Mapper maps physical regions into the process.
type Mapper interface {
	Map(r memmap.Region) (*Window, error)
}

type MapError struct {
	Region memmap.Region
	Err    error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("map %v: %v", e.Region, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// Window is a mapped region. Its Read32 and Write32 are bounds checked and
// fail after Unmap.
type Window struct {
	memmap.Region

	mu  sync.Mutex
	mem Memory
}

// NewWindow wraps a Memory backing the given region; Mapper
// implementations use this to return their windows.
func NewWindow(r memmap.Region, mem Memory) *Window {
	return &Window{Region: r, mem: mem}
}

func (w *Window) check(off uint64) (Memory, error) {
	w.mu.Lock()
	mem := w.mem
	w.mu.Unlock()
	if mem == nil {
		return nil, fmt.Errorf("%s: %w", w.Name, ErrUnmapped)
	}
	if off&3 != 0 || w.Size < 4 || off > w.Size-4 {
		return nil, fmt.Errorf("%s: %#x: %w", w.Name, off, ErrRange)
	}
	return mem, nil
}

func (w *Window) Read32(off uint64) (uint32, error) {
	mem, err := w.check(off)
	if err != nil {
		return 0, err
	}
	return mem.Load32(off), nil
}

func (w *Window) Write32(off uint64, v uint32) error {
	mem, err := w.check(off)
	if err != nil {
		return err
	}
	mem.Store32(off, v)
	return nil
}

// Set ORs mask into the register at off.
func (w *Window) Set(off uint64, mask uint32) error {
	v, err := w.Read32(off)
	if err != nil {
		return err
	}
	return w.Write32(off, v|mask)
}

// Clear ANDs NOT mask into the register at off.
func (w *Window) Clear(off uint64, mask uint32) error {
	v, err := w.Read32(off)
	if err != nil {
		return err
	}
	return w.Write32(off, v&^mask)
}

// Unmap releases the backing memory; only the first call does so.
func (w *Window) Unmap() error {
	w.mu.Lock()
	mem := w.mem
	w.mem = nil
	w.mu.Unlock()
	if mem == nil {
		return fmt.Errorf("%s: %w", w.Name, ErrUnmapped)
	}
	return mem.Unmap()
}

// Mapped reports whether the window is still mapped.
func (w *Window) Mapped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mem != nil
}

// Peek32 maps the page containing addr, reads it, and unmaps.
func Peek32(m Mapper, addr uint64) (v uint32, err error) {
	w, off, err := mapPage(m, addr)
	if err != nil {
		return 0, err
	}
	defer func() {
		if uerr := w.Unmap(); err == nil {
			err = uerr
		}
	}()
	return w.Read32(off)
}

// Poke32 maps the page containing addr, writes it, and unmaps.
func Poke32(m Mapper, addr uint64, v uint32) (err error) {
	w, off, err := mapPage(m, addr)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := w.Unmap(); err == nil {
			err = uerr
		}
	}()
	return w.Write32(off, v)
}

func mapPage(m Mapper, addr uint64) (*Window, uint64, error) {
	page, off := memmap.PageAlign(addr, memmap.PageSize)
	w, err := m.Map(memmap.Region{
		Name: fmt.Sprintf("%#x", page),
		Base: page,
		Size: memmap.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return w, off, nil
}
