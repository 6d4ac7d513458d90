// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fpgasim

import "github.com/platinasystems/hwchar/internal/cdma"

const SrIdle = cdma.SrIdle

// Cdma models the AXI CDMA registers. The copy happens when BTT is written;
// SR then reports busy for BusyReads reads.
type Cdma struct {
	b *Board

	// ResetReads is the number of CR reads before reset self-clears.
	ResetReads int
	// StuckReset never clears reset.
	StuckReset bool
	// BusyReads is the number of SR reads reporting busy per transfer.
	BusyReads int
	// Stuck never returns to idle after a transfer.
	Stuck bool

	Transfers int

	cr, sr, sa, da, btt uint32
	resetLeft, busyLeft int
}

// SetSgMode puts the engine in scatter-gather mode, as after power on of a
// hybrid build.
func (c *Cdma) SetSgMode() {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.cr |= cdma.CrSgMode
	c.sr |= cdma.SrSgIncluded
}

// CR returns the control register without side effects.
func (c *Cdma) CR() uint32 {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return c.cr
}

func (c *Cdma) load(off uint64) uint32 {
	switch off {
	case cdma.CR:
		if c.cr&cdma.CrReset != 0 && !c.StuckReset {
			if c.resetLeft--; c.resetLeft <= 0 {
				c.endReset()
			}
		}
		return c.cr
	case cdma.SR:
		if c.sr&SrIdle == 0 && c.cr&cdma.CrReset == 0 && !c.Stuck {
			if c.busyLeft <= 0 {
				c.sr |= SrIdle
			} else {
				c.busyLeft--
			}
		}
		return c.sr
	case cdma.SA:
		return c.sa
	case cdma.DA:
		return c.da
	case cdma.BTT:
		return c.btt
	}
	return 0
}

func (c *Cdma) endReset() {
	c.cr = 0
	c.sr = SrIdle | c.sr&cdma.SrSgIncluded
}

func (c *Cdma) store(off uint64, v uint32) {
	switch off {
	case cdma.CR:
		if v&cdma.CrReset != 0 {
			c.cr = cdma.CrReset
			c.sr &= cdma.SrSgIncluded
			c.resetLeft = c.ResetReads
			if c.ResetReads <= 0 && !c.StuckReset {
				c.endReset()
			}
			return
		}
		c.cr = v
	case cdma.SA:
		c.sa = v
	case cdma.DA:
		c.da = v
	case cdma.BTT:
		c.btt = v
		c.Transfers++
		c.sr &^= SrIdle | cdma.SrErrAll
		if err := c.b.copy(uint64(c.sa), uint64(c.da),
			uint64(v)); err != nil {
			c.sr |= cdma.SrErrDecode
		}
		c.busyLeft = c.BusyReads
		if c.BusyReads <= 0 && !c.Stuck {
			c.sr |= SrIdle
		}
	}
}
