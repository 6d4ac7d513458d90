// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cdma

import (
	"fmt"
	"io"
	"os"

	"github.com/platinasystems/hwchar/internal/cdma"
	"github.com/platinasystems/hwchar/internal/machine"
	"github.com/platinasystems/hwchar/lang"
)

type Command struct {
	Stdout io.Writer
}

func (Command) String() string { return "cdma" }

func (Command) Usage() string {
	return "cdma [status | reset | init] " + machine.Usage
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "show or reset the CDMA engine",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	status	print the control and status registers, the default
	reset	soft reset the engine
	init	reset and put the engine in simple mode` + machine.Man,
	}
}

func (c Command) Main(args ...string) error {
	cfg, args, err := machine.Parse(args)
	if err != nil {
		return err
	}
	op := "status"
	switch len(args) {
	case 0:
	case 1:
		op = args[0]
	default:
		return fmt.Errorf("%v: unexpected", args[1:])
	}
	m, err := machine.Open(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	e, err := m.Engine()
	if err != nil {
		return err
	}
	switch op {
	case "status":
	case "reset":
		err = e.Reset()
	case "init":
		err = e.Init()
	default:
		return fmt.Errorf("%s: unknown", op)
	}
	if err != nil {
		return err
	}
	cr, err := e.Window().Read32(cdma.CR)
	if err != nil {
		return err
	}
	s, err := e.Status()
	if err != nil {
		return err
	}
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "cr: %08x\nsr: %08x %s\n", cr, uint32(s), s)
	return nil
}
