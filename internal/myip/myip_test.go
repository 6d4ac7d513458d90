// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package myip_test

import (
	"testing"

	"github.com/platinasystems/hwchar/internal/fpgasim"
	"github.com/platinasystems/hwchar/internal/memmap"
	"github.com/platinasystems/hwchar/internal/myip"
	"github.com/platinasystems/hwchar/internal/poll"
	"github.com/platinasystems/hwchar/internal/test"
)

func unit(t *testing.T) (*fpgasim.Board, *myip.Unit) {
	assert := test.Assert{TB: t}
	b, err := fpgasim.New(memmap.Default())
	assert.Nil(err)
	w, err := b.Map(memmap.Default()[memmap.MyIP])
	assert.Nil(err)
	return b, &myip.Unit{W: w, Policy: poll.Policy{Retries: 20}}
}

func TestRun(t *testing.T) {
	assert := test.Assert{TB: t}
	b, u := unit(t)
	b.Compute.LatencyReads = 5
	assert.Nil(u.Run())
	assert.Int(b.Compute.Runs, 1)
	trace := b.Trace()
	assert.Uint32(trace[0].Value, myip.Idle)
	assert.Uint32(trace[1].Value, myip.Go)
	assert.Int(len(trace), 2+5)
}

func TestDoneCode(t *testing.T) {
	assert := test.Assert{TB: t}
	b, u := unit(t)
	b.Compute.DoneCode = 0x600d
	assert.Error(u.Run(), myip.ErrTimeout)
	u.DoneCode = 0x600d
	assert.Nil(u.Run())
}

func TestHang(t *testing.T) {
	assert := test.Assert{TB: t}
	b, u := unit(t)
	b.Compute.Hang = true
	err := u.Run()
	assert.Error(err, myip.ErrTimeout)
	assert.Equal(err.Error(), "status 0x0: compute unit timeout")
	assert.Int(b.Compute.Runs, 0)
}
