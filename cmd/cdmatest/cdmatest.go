// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cdmatest round trips a vector through the CDMA device and the
// compute unit.
package cdmatest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/hwchar/internal/machine"
	"github.com/platinasystems/hwchar/internal/verify"
	"github.com/platinasystems/hwchar/lang"
	"github.com/platinasystems/parms"
)

// Words is the default vector length.
const Words = 1024

type Command struct {
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
}

func (Command) String() string { return "cdmatest" }

func (Command) Usage() string {
	return "cdmatest [-random] [-seed N] [-n WORDS] [-corrupt INDEX] [-v] " +
		machine.Usage
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "verify a CDMA round trip through the compute unit",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Write a vector of 32-bit words to the compute unit's input block RAM
	through the CDMA, start the unit, wait for its completion code, read
	its output block RAM back, and compare. On success this prints
	"we are all good"; otherwise it prints the first differing word
	followed by a scan of both block RAMs read around the engine.

OPTIONS
	-random	pseudo random words instead of the 1.01 + 10i ramp
	-seed N	random seed (default 1)
	-n WORDS
		vector length (default 1024)
	-corrupt INDEX
		with -sim, make the compute unit flip word INDEX
	-v	print transfer timings, the default on a terminal` +
			machine.Man,
	}
}

func (c Command) Main(args ...string) error {
	cfg, args, err := machine.Parse(args)
	if err != nil {
		return err
	}
	flag, args := flags.New(args, "-random", "-v")
	parm, args := parms.New(args, "-n", "-corrupt", "-seed")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}
	n := Words
	if s := parm.ByName["-n"]; len(s) > 0 {
		u, err := strconv.ParseUint(s, 0, 31)
		if err != nil {
			return fmt.Errorf("-n: %v", err)
		}
		n = int(u)
	}
	if n < 1 || 4*n > cfg.Capacity {
		return fmt.Errorf("-n: %d: out of range", n)
	}
	seed := int64(1)
	if s := parm.ByName["-seed"]; len(s) > 0 {
		if seed, err = strconv.ParseInt(s, 0, 64); err != nil {
			return fmt.Errorf("-seed: %v", err)
		}
	}

	w := c.Stdout
	verbose := flag.ByName["-v"]
	if w == nil {
		w = os.Stdout
		verbose = verbose || isatty.IsTerminal(os.Stdout.Fd())
	}

	m, err := machine.Open(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if s := parm.ByName["-corrupt"]; len(s) > 0 {
		i, err := strconv.ParseUint(s, 0, 31)
		if err != nil {
			return fmt.Errorf("-corrupt: %v", err)
		}
		if m.Board == nil {
			return fmt.Errorf("-corrupt: requires -sim")
		}
		m.Board.Compute.Flip(4*i, 0xffffffff)
	}

	dev, err := m.Device()
	if err != nil {
		return err
	}
	unit, err := m.Unit()
	if err != nil {
		return err
	}
	a, b, err := m.Diag()
	if err != nil {
		return err
	}
	client := &verify.Client{
		Dev:   dev,
		Unit:  unit,
		DiagA: a,
		DiagB: b,
		Out:   w,
	}

	words := verify.Ramp(n)
	if flag.ByName["-random"] {
		words = verify.Random(n, seed)
	}
	r, err := client.Run(words)
	if verbose {
		fmt.Fprintln(w, r)
	}
	var mismatch *verify.Mismatch
	if errors.As(err, &mismatch) {
		return fmt.Errorf("mismatch at index %d: %v", mismatch.Index,
			mismatch)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "we are all good")
	return nil
}
