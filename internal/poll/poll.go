// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package poll evaluates hardware status conditions under a bounded
// retry and time budget.
package poll

import (
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

var ErrTimeout = errors.New("timeout")

// Policy bounds a poll loop. The condition is evaluated Spin times back to
// back, then with a backoff sleep between Min and Max. The loop ends with
// ErrTimeout after Retries evaluations or once Timeout has passed, whichever
// comes first; zero disables that bound but not both.
type Policy struct {
	Spin    int
	Retries int
	Timeout time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Default suits register polls that complete in microseconds.
var Default = Policy{
	Spin:    1000,
	Retries: 1000000,
	Timeout: time.Second,
	Min:     time.Microsecond,
	Max:     time.Millisecond,
}

// Until evaluates cond until it returns true or an error, or the policy is
// exhausted. It returns the number of evaluations.
func (p Policy) Until(cond func() (bool, error)) (int, error) {
	retries := p.Retries
	if retries <= 0 && p.Timeout <= 0 {
		retries = Default.Retries
	}
	var deadline time.Time
	if p.Timeout > 0 {
		deadline = time.Now().Add(p.Timeout)
	}
	b := &backoff.Backoff{
		Min:    p.Min,
		Max:    p.Max,
		Factor: 2,
		Jitter: false,
	}
	for i := 1; ; i++ {
		done, err := cond()
		if err != nil {
			return i, err
		}
		if done {
			return i, nil
		}
		if retries > 0 && i >= retries {
			return i, ErrTimeout
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return i, ErrTimeout
		}
		if i >= p.Spin && p.Max > 0 {
			time.Sleep(b.Duration())
		}
	}
}
