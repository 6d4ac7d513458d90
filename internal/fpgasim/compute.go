// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fpgasim

import (
	"encoding/binary"

	"github.com/platinasystems/hwchar/internal/myip"
)

// Compute models the unit that copies block RAM a to block RAM b when
// started.
type Compute struct {
	b     *Board
	a, bb []byte

	// DoneCode is reported in Status on completion; zero means myip.Done.
	DoneCode uint32
	// LatencyReads is the number of Status reads before completion.
	LatencyReads int
	// Hang never completes.
	Hang bool

	Runs int

	status  uint32
	running bool
	left    int
	flips   map[uint64]uint32
}

// Flip xors mask into the word at byte offset off of b after every run.
func (c *Compute) Flip(off uint64, mask uint32) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if c.flips == nil {
		c.flips = make(map[uint64]uint32)
	}
	c.flips[off] ^= mask
}

func (c *Compute) load(off uint64) uint32 {
	switch off {
	case myip.Start:
		if c.running {
			return myip.Go
		}
		return myip.Idle
	case myip.Status:
		if c.running && !c.Hang {
			if c.left--; c.left <= 0 {
				c.finish()
			}
		}
		return c.status
	}
	return 0
}

func (c *Compute) finish() {
	copy(c.bb, c.a)
	for off, mask := range c.flips {
		if off+4 <= uint64(len(c.bb)) {
			v := binary.LittleEndian.Uint32(c.bb[off:])
			binary.LittleEndian.PutUint32(c.bb[off:], v^mask)
		}
	}
	c.running = false
	c.status = c.DoneCode
	if c.status == 0 {
		c.status = myip.Done
	}
	c.Runs++
}

func (c *Compute) store(off uint64, v uint32) {
	if off != myip.Start {
		return
	}
	switch v {
	case myip.Idle:
		c.running = false
		c.status = 0
	case myip.Go:
		c.running = true
		c.status = 0
		c.left = c.LatencyReads
		if c.LatencyReads <= 0 && !c.Hang {
			c.finish()
		}
	}
}
