// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package device

import (
	"fmt"
	"time"

	"github.com/platinasystems/log"
)

type Stats struct {
	Op      string
	Bytes   int
	Elapsed time.Duration
}

// MBps is the transfer rate in megabytes per second.
func (s Stats) MBps() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.Elapsed.Seconds() / 1e6
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: %d bytes, %d ns, %.2f MB/s", s.Op, s.Bytes,
		s.Elapsed.Nanoseconds(), s.MBps())
}

func (s Stats) publish(p Publisher) {
	for _, x := range []struct {
		key   string
		value interface{}
	}{
		{"bytes", s.Bytes},
		{"ns", s.Elapsed.Nanoseconds()},
		{"mbps", fmt.Sprintf("%.2f", s.MBps())},
	} {
		if err := p.Publish(s.Op+"."+x.key, x.value); err != nil {
			log.Print("err", "publish: ", err)
			return
		}
	}
}
