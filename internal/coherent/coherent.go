// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package coherent provides the DMA-addressable buffer shared by the CPU and
// the CDMA engine.
//
// Since this is physically allocated memory, it is important to Release it
// before process exit.
package coherent

import (
	"errors"
	"fmt"
	"sync"
)

var ErrReleased = errors.New("buffer released")

// Allocator provides one physically contiguous, cache coherent region.
type Allocator interface {
	Allocate(capacity int) (*Buffer, error)
}

type AllocationError struct {
	Capacity int
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocate %d coherent bytes: %v", e.Capacity, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

type Buffer struct {
	mu      sync.Mutex
	b       []byte
	phys    uint64
	release func() error
}

// New returns a Buffer over b, whose first byte is at physical address
// phys. release, if not nil, is called once by Release.
func New(b []byte, phys uint64, release func() error) *Buffer {
	return &Buffer{b: b, phys: phys, release: release}
}

// Bytes returns the CPU view of the buffer or nil after Release.
func (buf *Buffer) Bytes() []byte {
	buf.mu.Lock()
	defer buf.mu.Unlock()
	return buf.b
}

// Phys is the address the engine uses as transfer source or destination.
func (buf *Buffer) Phys() uint64 { return buf.phys }

func (buf *Buffer) Cap() int { return cap(buf.Bytes()) }

func (buf *Buffer) String() string {
	return fmt.Sprintf("coherent %#x[%d]", buf.phys, len(buf.Bytes()))
}

func (buf *Buffer) Release() error {
	buf.mu.Lock()
	b, release := buf.b, buf.release
	buf.b, buf.release = nil, nil
	buf.mu.Unlock()
	if b == nil {
		return ErrReleased
	}
	if release != nil {
		return release()
	}
	return nil
}
