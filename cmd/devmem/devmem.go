// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package devmem

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/hwchar/internal/machine"
	"github.com/platinasystems/hwchar/internal/reg"
	"github.com/platinasystems/hwchar/lang"
	"github.com/platinasystems/parms"
)

type Command struct {
	Stdout io.Writer
}

func (Command) String() string { return "devmem" }

func (Command) Usage() string {
	return "devmem [[-r] | -w] ADDRESS [-D DATA] " + machine.Usage
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "read/write a 32-bit physical register",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	This command maps the page containing ADDRESS, reads or writes its
	32-bit word, and unmaps it.
	  -r to read, default
	  -w to write
	     ADDRESS is a hex value aligned to 4 bytes
	  -D DATA is a hex value` + machine.Man,
	}
}

func (c Command) Main(args ...string) (err error) {
	cfg, args, err := machine.Parse(args)
	if err != nil {
		return err
	}
	flag, args := flags.New(args, "-r", "-w")
	parm, args := parms.New(args, "-D")
	if len(args) == 0 {
		return fmt.Errorf("ADDRESS: missing")
	}
	if parm.ByName["-D"] == "" {
		parm.ByName["-D"] = "0x0"
	}

	var a, d uint64

	if a, err = strconv.ParseUint(args[0], 0, 64); err != nil {
		return fmt.Errorf("%s: %v", args[0], err)
	}
	if d, err = strconv.ParseUint(parm.ByName["-D"], 0, 32); err != nil {
		return fmt.Errorf("%s: %v", parm.ByName["-D"], err)
	}

	m, err := machine.Open(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if flag.ByName["-w"] {
		return reg.Poke32(m.Mapper, a, uint32(d))
	}
	v, err := reg.Peek32(m.Mapper, a)
	if err != nil {
		return err
	}
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "%08x: %08x\n", a, v)
	return nil
}
