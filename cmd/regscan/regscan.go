// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package regscan

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/platinasystems/hwchar/internal/diag"
	"github.com/platinasystems/hwchar/internal/machine"
	"github.com/platinasystems/hwchar/lang"
	"github.com/platinasystems/parms"
)

type Command struct {
	Stdout io.Writer
}

func (Command) String() string { return "regscan" }

func (Command) Usage() string {
	return "regscan [-n WORDS] " + machine.Usage
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "print the compute unit block RAMs",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Read the compute unit's input (a) and output (b) block RAMs through
	the processor's view, bypassing the CDMA, as three lanes of WORDS/3
	words each. Row k prints word k of each lane of a then of b.

OPTIONS
	-n WORDS
		words per block RAM (default, the whole diagnostic window)` + machine.Man,
	}
}

func (c Command) Main(args ...string) error {
	cfg, args, err := machine.Parse(args)
	if err != nil {
		return err
	}
	parm, args := parms.New(args, "-n")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}
	n := 0
	if s := parm.ByName["-n"]; len(s) > 0 {
		u, err := strconv.ParseUint(s, 0, 31)
		if err != nil {
			return fmt.Errorf("-n: %v", err)
		}
		n = int(u)
	}
	m, err := machine.Open(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	a, b, err := m.Diag()
	if err != nil {
		return err
	}
	if n == 0 {
		n = int(a.Size / 4)
	}
	rows, err := diag.Scan(a, b, n/diag.Lanes)
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	if perr := diag.Fprint(w, rows); err == nil {
		err = perr
	}
	return err
}
