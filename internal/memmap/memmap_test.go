// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package memmap

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/platinasystems/hwchar/internal/test"
)

const iomem = `
# reference design
7e200000-7e20ffff : cdma
80040000-8013ffff : hw.a
43c00000-43c0ffff : myip   # compute unit
`

func TestReaderToTable(t *testing.T) {
	assert := test.Assert{TB: t}
	tbl, err := ReaderToTable(strings.NewReader(iomem))
	assert.Nil(err)
	assert.Int(len(tbl), 3)
	r, err := tbl.Lookup(Cdma)
	assert.Nil(err)
	assert.True(r.Base == 0x7e200000)
	assert.True(r.Size == 0x10000)
	r, err = tbl.Lookup(MyIP)
	assert.Nil(err)
	assert.Equal(r.String(), "myip: 43c00000-43c0ffff")
	_, err = tbl.Lookup("nope")
	assert.Error(err, ErrNotFound)
}

func TestReaderToTableErrors(t *testing.T) {
	assert := test.Assert{TB: t}
	for _, s := range []string{
		"7e200000-7e20ffff",
		"zz-7e20ffff : cdma",
		"7e20ffff-7e200000 : cdma",
		"7e200000-7e20ffff : ",
	} {
		_, err := ReaderToTable(strings.NewReader(s))
		if err == nil {
			assert.Fatalf("%q: expected error", s)
		}
	}
}

func TestTableString(t *testing.T) {
	assert := test.Assert{TB: t}
	tbl, err := ReaderToTable(strings.NewReader(iomem))
	assert.Nil(err)
	again, err := ReaderToTable(strings.NewReader(tbl.String()))
	assert.Nil(err)
	assert.Equal(again.String(), tbl.String())
	assert.Match(tbl.String(), "^43c00000-43c0ffff : myip\n")
}

func TestDefault(t *testing.T) {
	assert := test.Assert{TB: t}
	tbl := Default()
	for _, name := range []string{Cdma, HwA, HwB, HwACdma, HwBCdma, MyIP,
		DiagA, DiagB} {
		r, err := tbl.Lookup(name)
		assert.Nil(err)
		assert.Equal(r.Name, name)
	}
	tbl.Merge(Table{Cdma: {Cdma, 0x40400000, 0x1000}})
	assert.True(tbl[Cdma].Base == 0x40400000)
}

func TestRegion(t *testing.T) {
	assert := test.Assert{TB: t}
	r := Region{"x", 0x1000, 0x100}
	assert.True(r.Contains(0x1000, 0x100))
	assert.True(r.Contains(0x10fc, 4))
	assert.False(r.Contains(0x10fd, 4))
	assert.False(r.Contains(0xffc, 4))
	assert.False(r.Contains(0x1000, 0x101))
	page, off := PageAlign(0x80040123, PageSize)
	assert.True(page == 0x80040000)
	assert.True(off == 0x123)
	assert.True(PageRound(1, PageSize) == PageSize)
	assert.True(PageRound(PageSize, PageSize) == PageSize)
}

// dtb assembles a minimal flattened device tree with one CDMA node.
func dtb(compatible string, base, size uint32) []byte {
	be := binary.BigEndian
	var st, strs bytes.Buffer
	cell := func(v uint32) { binary.Write(&st, be, v) }
	pad := func() {
		for st.Len()%4 != 0 {
			st.WriteByte(0)
		}
	}
	prop := func(name string, value []byte) {
		cell(3)
		cell(uint32(len(value)))
		cell(uint32(strs.Len()))
		strs.WriteString(name)
		strs.WriteByte(0)
		st.Write(value)
		pad()
	}
	cell(1)
	st.WriteByte(0)
	pad()
	cell(1)
	st.WriteString("dma@7e200000")
	st.WriteByte(0)
	pad()
	prop("compatible", append([]byte(compatible), 0))
	reg := make([]byte, 8)
	be.PutUint32(reg, base)
	be.PutUint32(reg[4:], size)
	prop("reg", reg)
	cell(2)
	cell(2)
	cell(9)

	var b bytes.Buffer
	offStruct := uint32(fdtHeaderSize)
	offStrings := offStruct + uint32(st.Len())
	total := offStrings + uint32(strs.Len())
	for _, v := range []uint32{fdtMagic, total, offStruct, offStrings,
		fdtHeaderSize, 17, 16, 0, uint32(strs.Len()),
		uint32(st.Len())} {
		binary.Write(&b, be, v)
	}
	b.Write(st.Bytes())
	b.Write(strs.Bytes())
	return b.Bytes()
}

func TestFromDeviceTree(t *testing.T) {
	assert := test.Assert{TB: t}
	tbl := Default()
	assert.Nil(FromDeviceTree(dtb("xlnx,axi-cdma-4.1", 0x7e400000,
		0x20000), tbl))
	assert.True(tbl[Cdma].Base == 0x7e400000)
	assert.True(tbl[Cdma].Size == 0x20000)

	assert.Error(FromDeviceTree(dtb("xlnx,axi-dma-7.1", 1, 1), tbl),
		ErrNotFound)
	assert.Error(FromDeviceTree([]byte("not a device tree blob at all"),
		tbl), "device tree: bad magic")
}
