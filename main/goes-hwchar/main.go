// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is the hwchar machine, run on the processor side of a Zynq class
// board with the CDMA reference bitstream loaded.
package main

import (
	"github.com/platinasystems/hwchar"
	"github.com/platinasystems/hwchar/cmd/cdma"
	"github.com/platinasystems/hwchar/cmd/cdmatest"
	"github.com/platinasystems/hwchar/cmd/devmem"
	"github.com/platinasystems/hwchar/cmd/regscan"
)

func Goes() hwchar.ByName {
	g := make(hwchar.ByName)
	g.Plot(
		cdma.Command{},
		cdmatest.Command{},
		devmem.Command{},
		regscan.Command{},
	)
	return g
}

func main() {
	Goes().Main()
}
