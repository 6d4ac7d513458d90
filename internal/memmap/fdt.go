// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package memmap

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/fdt"
)

// CdmaCompatible matches the AXI CDMA nodes of Xilinx device trees.
const CdmaCompatible = "xlnx,axi-cdma"

const (
	fdtMagic      = 0xd00dfeed
	fdtHeaderSize = 40
)

// FromDeviceTree overrides the Cdma region of t with the reg property of the
// first AXI CDMA node of the given flattened device tree blob.
func FromDeviceTree(b []byte, t Table) (err error) {
	if len(b) < fdtHeaderSize ||
		binary.BigEndian.Uint32(b) != fdtMagic {
		return fmt.Errorf("device tree: bad magic")
	}
	tree := &fdt.Tree{Debug: false, IsLittleEndian: false}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("device tree: %v", r)
		}
	}()
	tree.Parse(b)
	if tree.RootNode == nil {
		return fmt.Errorf("device tree: no root node")
	}
	var found *fdt.Node
	tree.EachProperty("compatible", CdmaCompatible,
		func(n *fdt.Node, name string, value string) {
			if found == nil {
				found = n
			}
		})
	if found == nil {
		return fmt.Errorf("device tree: %s: %w", CdmaCompatible,
			ErrNotFound)
	}
	r, err := nodeRegion(tree, found)
	if err != nil {
		return err
	}
	t[Cdma] = r
	return nil
}

// nodeRegion decodes a one cell address, one cell size reg property.
func nodeRegion(tree *fdt.Tree, n *fdt.Node) (Region, error) {
	reg, found := n.Properties["reg"]
	if !found {
		return Region{}, fmt.Errorf("%s: missing reg", n.Name)
	}
	cells := tree.PropUint32Slice(reg)
	if len(cells) < 2 {
		return Region{}, fmt.Errorf("%s: reg: %d cells", n.Name,
			len(cells))
	}
	if cells[1] == 0 {
		return Region{}, fmt.Errorf("%s: reg: zero size", n.Name)
	}
	return Region{Cdma, uint64(cells[0]), uint64(cells[1])}, nil
}
