// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package poll

import (
	"errors"
	"testing"
	"time"

	"github.com/platinasystems/hwchar/internal/test"
)

func TestUntilDone(t *testing.T) {
	assert := test.Assert{TB: t}
	n := 0
	i, err := Policy{Retries: 10}.Until(func() (bool, error) {
		n++
		return n == 3, nil
	})
	assert.Nil(err)
	assert.Int(i, 3)
}

func TestUntilRetries(t *testing.T) {
	assert := test.Assert{TB: t}
	n := 0
	i, err := Policy{Retries: 25}.Until(func() (bool, error) {
		n++
		return false, nil
	})
	assert.Error(err, ErrTimeout)
	assert.Int(i, 25)
	assert.Int(n, 25)
}

func TestUntilTimeout(t *testing.T) {
	assert := test.Assert{TB: t}
	p := Policy{
		Spin:    2,
		Timeout: 20 * time.Millisecond,
		Min:     time.Millisecond,
		Max:     2 * time.Millisecond,
	}
	start := time.Now()
	_, err := p.Until(func() (bool, error) { return false, nil })
	assert.Error(err, ErrTimeout)
	assert.True(time.Since(start) < time.Second)
}

func TestUntilError(t *testing.T) {
	assert := test.Assert{TB: t}
	oops := errors.New("oops")
	i, err := Default.Until(func() (bool, error) { return false, oops })
	assert.Error(err, oops)
	assert.Int(i, 1)
}

func TestUnbounded(t *testing.T) {
	assert := test.Assert{TB: t}
	n := 0
	_, err := Policy{}.Until(func() (bool, error) {
		n++
		return false, nil
	})
	assert.Error(err, ErrTimeout)
	assert.Int(n, Default.Retries)
}
