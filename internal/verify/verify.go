// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package verify round trips a word vector through the device and the
// compute unit and checks what comes back.
package verify

import (
	"fmt"
	"io"
	"time"

	"github.com/platinasystems/hwchar/internal/device"
	"github.com/platinasystems/hwchar/internal/diag"
	"github.com/platinasystems/hwchar/internal/myip"
	"github.com/platinasystems/hwchar/internal/reg"
	"github.com/platinasystems/log"
)

var ErrComputeTimeout = myip.ErrTimeout

type Opener interface {
	Open() (*device.Session, error)
}

type Client struct {
	Dev Opener
	// Unit, if not nil, is started after the write and polled for
	// completion before the read.
	Unit *myip.Unit
	// DiagA and DiagB, if not nil, are scanned after a mismatch.
	DiagA, DiagB *reg.Window
	// Out receives the scan.
	Out io.Writer
}

type Report struct {
	Words       int
	Write, Read time.Duration
	Rows        []diag.Row
}

func (r *Report) String() string {
	return fmt.Sprintf("%d words, write %v, read %v", r.Words, r.Write,
		r.Read)
}

// Run writes words, runs the compute unit, reads the result and compares
// it with words. A difference returns the report with a *Mismatch error.
func (c *Client) Run(words []uint32) (*Report, error) {
	r := &Report{Words: len(words)}
	got, err := c.roundTrip(r, words)
	if err != nil {
		return r, err
	}
	m := Compare(words, got)
	if m == nil {
		return r, nil
	}
	log.Print("err", m)
	if c.DiagA != nil && c.DiagB != nil {
		rows, err := diag.Scan(c.DiagA, c.DiagB, len(words)/diag.Lanes)
		r.Rows = rows
		if err != nil {
			log.Print("err", "scan: ", err)
		}
		if c.Out != nil {
			diag.Fprint(c.Out, rows)
		}
	}
	return r, m
}

func (c *Client) roundTrip(r *Report, words []uint32) ([]uint32, error) {
	s, err := c.Dev.Open()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	start := time.Now()
	if _, err = s.Write(Encode(words)); err != nil {
		return nil, err
	}
	r.Write = time.Since(start)
	if c.Unit != nil {
		if err = c.Unit.Run(); err != nil {
			return nil, err
		}
	}
	b := make([]byte, 4*len(words))
	start = time.Now()
	if _, err = s.Read(b); err != nil {
		return nil, err
	}
	r.Read = time.Since(start)
	return Decode(b), nil
}
