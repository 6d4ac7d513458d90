// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fpgasim

import (
	"errors"
	"testing"

	"github.com/platinasystems/hwchar/internal/cdma"
	"github.com/platinasystems/hwchar/internal/coherent"
	"github.com/platinasystems/hwchar/internal/memmap"
	"github.com/platinasystems/hwchar/internal/myip"
	"github.com/platinasystems/hwchar/internal/reg"
	"github.com/platinasystems/hwchar/internal/test"
)

func board(t *testing.T) *Board {
	b, err := New(memmap.Default())
	test.Assert{TB: t}.Nil(err)
	return b
}

func TestAliases(t *testing.T) {
	assert := test.Assert{TB: t}
	b := board(t)
	tbl := memmap.Default()
	a, err := b.Map(tbl[memmap.HwA])
	assert.Nil(err)
	ac, err := b.Map(tbl[memmap.HwACdma])
	assert.Nil(err)
	diag, err := b.Map(tbl[memmap.DiagA])
	assert.Nil(err)
	assert.Nil(a.Write32(8, 0x12345678))
	v, _ := ac.Read32(8)
	assert.Uint32(v, 0x12345678)
	v, _ = diag.Read32(8)
	assert.Uint32(v, 0x12345678)
	assert.Int(len(b.Trace()), 0)
}

func TestMapUnknown(t *testing.T) {
	assert := test.Assert{TB: t}
	b := board(t)
	_, err := b.Map(memmap.Region{Name: "nowhere", Base: 0x10, Size: 4})
	var merr *reg.MapError
	assert.True(errors.As(err, &merr))
	assert.Error(err, ErrUnmapped)
}

func TestMissingRegion(t *testing.T) {
	tbl := memmap.Default()
	delete(tbl, memmap.MyIP)
	_, err := New(tbl)
	test.Assert{TB: t}.Error(err, memmap.ErrNotFound)
}

func TestAllocate(t *testing.T) {
	assert := test.Assert{TB: t}
	b := board(t)
	buf, err := b.Allocate(1535000)
	assert.Nil(err)
	assert.True(buf.Phys() == Ddr.Base)
	assert.Int(buf.Cap(), 1535000)
	buf.Bytes()[0] = 0xaa
	mem, err := b.Bytes(Ddr.Base, 1)
	assert.Nil(err)
	assert.True(mem[0] == 0xaa)
	next, err := b.Allocate(4096)
	assert.Nil(err)
	assert.True(next.Phys() == Ddr.Base+memmap.PageRound(1535000,
		memmap.PageSize))
	_, err = b.Allocate(int(Ddr.Size))
	var aerr *coherent.AllocationError
	assert.True(errors.As(err, &aerr))
}

func TestCdmaCopy(t *testing.T) {
	assert := test.Assert{TB: t}
	b := board(t)
	b.Cdma.BusyReads = 2
	w, err := b.Map(memmap.Default()[memmap.Cdma])
	assert.Nil(err)
	src, _ := b.Bytes(Ddr.Base, 8)
	copy(src, "abcdefgh")
	assert.Nil(w.Write32(cdma.SA, uint32(Ddr.Base)))
	assert.Nil(w.Write32(cdma.DA, 0x44a40000))
	assert.Nil(w.Write32(cdma.BTT, 8))
	for i := 0; i < 2; i++ {
		v, _ := w.Read32(cdma.SR)
		assert.Uint32(v&SrIdle, 0)
	}
	v, _ := w.Read32(cdma.SR)
	assert.Uint32(v&SrIdle, SrIdle)
	dst, _ := b.Bytes(0x80040000, 8)
	assert.Equal(string(dst), "abcdefgh")
	assert.Int(b.Cdma.Transfers, 1)

	b.Cdma.BusyReads = 0
	assert.Nil(w.Write32(cdma.SA, 0x10))
	assert.Nil(w.Write32(cdma.BTT, 8))
	v, _ = w.Read32(cdma.SR)
	assert.Uint32(v&cdma.SrErrDecode, cdma.SrErrDecode)
	assert.Int(len(b.Trace()), 9)
	b.ResetTrace()
	assert.Int(len(b.Trace()), 0)
}

func TestCompute(t *testing.T) {
	assert := test.Assert{TB: t}
	b := board(t)
	tbl := memmap.Default()
	b.Compute.LatencyReads = 3
	b.Compute.Flip(4, 0xff)
	a, _ := b.Map(tbl[memmap.HwA])
	bw, _ := b.Map(tbl[memmap.HwB])
	ctl, _ := b.Map(tbl[memmap.MyIP])
	assert.Nil(a.Write32(0, 1))
	assert.Nil(a.Write32(4, 2))
	u := &myip.Unit{W: ctl}
	assert.Nil(u.Run())
	assert.Int(b.Compute.Runs, 1)
	v, _ := bw.Read32(0)
	assert.Uint32(v, 1)
	v, _ = bw.Read32(4)
	assert.Uint32(v, 2^0xff)
}
