// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package myip signals the FPGA compute unit that consumes the block RAM
// written by the CDMA and polls for its completion code.
package myip

import (
	"errors"
	"fmt"

	"github.com/platinasystems/hwchar/internal/poll"
	"github.com/platinasystems/hwchar/internal/reg"
)

// Register byte offsets.
const (
	Start  = 0x00
	Status = 0x04
)

const (
	Go   uint32 = 1
	Idle uint32 = 0
	// Done is the default completion code.
	Done uint32 = 1
)

var ErrTimeout = errors.New("compute unit timeout")

type Unit struct {
	W *reg.Window
	// DoneCode is the Status value reporting completion; zero means Done.
	DoneCode uint32
	Policy   poll.Policy
}

// Run pokes Start and polls Status for the completion code.
func (u *Unit) Run() error {
	done := u.DoneCode
	if done == 0 {
		done = Done
	}
	policy := u.Policy
	if policy == (poll.Policy{}) {
		policy = poll.Default
	}
	if err := u.W.Write32(Start, Idle); err != nil {
		return err
	}
	if err := u.W.Write32(Start, Go); err != nil {
		return err
	}
	var v uint32
	_, err := policy.Until(func() (bool, error) {
		var err error
		v, err = u.W.Read32(Status)
		return v == done, err
	})
	if errors.Is(err, poll.ErrTimeout) {
		return fmt.Errorf("status %#x: %w", v, ErrTimeout)
	}
	return err
}
