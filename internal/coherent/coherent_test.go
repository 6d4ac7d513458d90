// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package coherent

import (
	"testing"

	"github.com/platinasystems/hwchar/internal/test"
)

func TestRelease(t *testing.T) {
	assert := test.Assert{TB: t}
	n := 0
	buf := New(make([]byte, 64), 0x1f000000, func() error {
		n++
		return nil
	})
	assert.Int(buf.Cap(), 64)
	assert.True(buf.Phys() == 0x1f000000)
	assert.Equal(buf.String(), "coherent 0x1f000000[64]")
	assert.Nil(buf.Release())
	assert.Error(buf.Release(), ErrReleased)
	assert.Int(n, 1)
	assert.True(buf.Bytes() == nil)
	assert.Int(buf.Cap(), 0)
}
