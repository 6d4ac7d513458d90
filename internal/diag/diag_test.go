// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package diag

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/platinasystems/hwchar/internal/memmap"
	"github.com/platinasystems/hwchar/internal/reg"
	"github.com/platinasystems/hwchar/internal/test"
)

func window(name string, words []uint32) *reg.Window {
	b := make([]byte, 4*len(words))
	for i, v := range words {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return reg.NewWindow(memmap.Region{Name: name, Size: uint64(len(b))},
		&reg.Bytes{B: b})
}

func TestScan(t *testing.T) {
	assert := test.Assert{TB: t}
	const n = 4
	var wa, wb []uint32
	for i := 0; i < Lanes*n; i++ {
		wa = append(wa, uint32(0xa000+i))
		wb = append(wb, uint32(0xb000+i))
	}
	rows, err := Scan(window("a", wa), window("b", wb), n)
	assert.Nil(err)
	assert.Int(len(rows), n)
	assert.Int(rows[1].K, 1)
	assert.Uint32(rows[1].A[0], 0xa001)
	assert.Uint32(rows[1].A[1], 0xa005)
	assert.Uint32(rows[1].A[2], 0xa009)
	assert.Uint32(rows[3].B[2], 0xb00b)

	var buf bytes.Buffer
	assert.Nil(Fprint(&buf, rows[:1]))
	assert.Equal(buf.String(),
		"a 0000a000 0000a004 0000a008  b 0000b000 0000b004 0000b008\n")
}

func TestScanShort(t *testing.T) {
	assert := test.Assert{TB: t}
	w := window("a", make([]uint32, 8))
	rows, err := Scan(w, w, 4)
	assert.Error(err, reg.ErrRange)
	assert.Int(len(rows), 0)
}

func TestScanNegative(t *testing.T) {
	assert := test.Assert{TB: t}
	w := window("a", make([]uint32, 3))
	rows, err := Scan(w, w, -1)
	assert.Error(err, reg.ErrRange)
	assert.Int(len(rows), 0)
}
