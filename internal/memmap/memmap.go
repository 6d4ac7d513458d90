// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package memmap names the physical address windows of the FPGA design.
//
// Tables are read from files of /proc/iomem structure,
//
//	7e200000-7e20ffff : cdma
//	80040000-8013ffff : hw.a
//
// or taken from Default.
package memmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Region names of the reference design.
const (
	Cdma     = "cdma"
	HwA      = "hw.a"
	HwB      = "hw.b"
	HwACdma  = "hw.a.cdma"
	HwBCdma  = "hw.b.cdma"
	MyIP     = "myip"
	DiagA    = "diag.a"
	DiagB    = "diag.b"
	PageSize = 4096
)

var ErrNotFound = errors.New("region not found")

type Region struct {
	Name string
	Base uint64
	Size uint64
}

type Table map[string]Region

func (r Region) String() string {
	return fmt.Sprintf("%s: %x-%x", r.Name, r.Base, r.End())
}

// End is the last byte address of the region.
func (r Region) End() uint64 { return r.Base + r.Size - 1 }

// Contains reports whether [addr, addr+n) lies within the region.
func (r Region) Contains(addr, n uint64) bool {
	return addr >= r.Base && n <= r.Size && addr-r.Base <= r.Size-n
}

// PageAlign returns the page containing addr and addr's offset within it.
func PageAlign(addr, pagesize uint64) (page, offset uint64) {
	page = addr &^ (pagesize - 1)
	return page, addr - page
}

// PageRound rounds n up to a whole number of pages.
func PageRound(n, pagesize uint64) uint64 {
	return (n + pagesize - 1) &^ (pagesize - 1)
}

// Default returns the windows of the reference Zynq design; the CDMA sees
// the compute block RAMs at different addresses than the PS. The diagnostic
// lanes read the block RAMs through the PS view.
func Default() Table {
	return Table{
		Cdma:    {Cdma, 0x7e200000, 0x10000},
		HwA:     {HwA, 0x80040000, 0x100000},
		HwB:     {HwB, 0x80140000, 0x100000},
		HwACdma: {HwACdma, 0x44a40000, 0x100000},
		HwBCdma: {HwBCdma, 0x44b40000, 0x100000},
		MyIP:    {MyIP, 0x43c00000, 0x10000},
		DiagA:   {DiagA, 0x80040000, 0x100000},
		DiagB:   {DiagB, 0x80140000, 0x100000},
	}
}

// Lookup returns the named region.
func (t Table) Lookup(name string) (Region, error) {
	r, found := t[name]
	if !found {
		return Region{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return r, nil
}

// Merge overrides t's regions with those of u.
func (t Table) Merge(u Table) {
	for k, r := range u {
		t[k] = r
	}
}

func (t Table) String() string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		return t[names[i]].Base < t[names[j]].Base ||
			(t[names[i]].Base == t[names[j]].Base &&
				names[i] < names[j])
	})
	var sb strings.Builder
	for _, k := range names {
		r := t[k]
		fmt.Fprintf(&sb, "%08x-%08x : %s\n", r.Base, r.End(), r.Name)
	}
	return sb.String()
}

func ReaderToTable(r io.Reader) (Table, error) {
	t := make(Table)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}
		if len(strings.TrimSpace(text)) == 0 {
			continue
		}
		fields := strings.SplitN(text, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: %q: missing name", line,
				text)
		}
		var start, end uint64
		n, err := fmt.Sscanf(strings.TrimSpace(fields[0]), "%x-%x",
			&start, &end)
		if err != nil || n != 2 {
			return nil, fmt.Errorf("line %d: %q: invalid range",
				line, fields[0])
		}
		if end < start {
			return nil, fmt.Errorf("line %d: %x-%x: inverted range",
				line, start, end)
		}
		name := strings.TrimSpace(fields[1])
		if len(name) == 0 {
			return nil, fmt.Errorf("line %d: missing name", line)
		}
		t[name] = Region{name, start, end - start + 1}
	}
	return t, scanner.Err()
}

func FileToTable(s string) (Table, error) {
	f, err := os.OpenFile(s, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReaderToTable(f)
}
