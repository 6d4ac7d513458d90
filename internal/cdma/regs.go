// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cdma

import "strings"

// AXI CDMA register byte offsets.
const (
	CR    = 0x00 // control
	SR    = 0x04 // status
	CDESC = 0x08 // current descriptor pointer
	TDESC = 0x10 // tail descriptor pointer
	SA    = 0x18 // source address
	DA    = 0x20 // destination address
	BTT   = 0x28 // bytes to transfer; writing it starts the transfer
)

// Control register bits.
const (
	CrReset     uint32 = 1 << 2
	CrSgMode    uint32 = 1 << 3
	CrIrqIoc    uint32 = 1 << 12
	CrIrqDelay  uint32 = 1 << 13
	CrIrqError  uint32 = 1 << 14
	CrIrqAll           = CrIrqIoc | CrIrqDelay | CrIrqError
	CrIrqSimple        = CrIrqIoc | CrIrqError
)

// Status register bits.
const (
	SrIdle       uint32 = 1 << 1
	SrSgIncluded uint32 = 1 << 3
	SrErrInt     uint32 = 1 << 4
	SrErrSlave   uint32 = 1 << 5
	SrErrDecode  uint32 = 1 << 6
	SrErrSgInt   uint32 = 1 << 8
	SrErrSgSlave uint32 = 1 << 9
	SrErrSgDec   uint32 = 1 << 10
	SrErrAll            = SrErrInt | SrErrSlave | SrErrDecode |
		SrErrSgInt | SrErrSgSlave | SrErrSgDec
	SrIrqIoc   uint32 = 1 << 12
	SrIrqDelay uint32 = 1 << 13
	SrIrqError uint32 = 1 << 14
)

// MaxBTT is the largest transfer of a CDMA built with a 23 bit length
// register.
const MaxBTT = 1<<23 - 1

// Status is the decoded SR.
type Status uint32

var statusStrings = []struct {
	mask uint32
	name string
}{
	{SrIdle, "idle"},
	{SrSgIncluded, "sg-included"},
	{SrErrInt, "internal-error"},
	{SrErrSlave, "slave-error"},
	{SrErrDecode, "decode-error"},
	{SrErrSgInt, "sg-internal-error"},
	{SrErrSgSlave, "sg-slave-error"},
	{SrErrSgDec, "sg-decode-error"},
	{SrIrqIoc, "ioc-irq"},
	{SrIrqDelay, "delay-irq"},
	{SrIrqError, "error-irq"},
}

func (s Status) Idle() bool { return uint32(s)&SrIdle != 0 }

// Err returns the error bits.
func (s Status) Err() uint32 { return uint32(s) & SrErrAll }

func (s Status) String() string {
	var names []string
	for _, x := range statusStrings {
		if uint32(s)&x.mask != 0 {
			names = append(names, x.name)
		}
	}
	if len(names) == 0 {
		return "busy"
	}
	return strings.Join(names, ",")
}
