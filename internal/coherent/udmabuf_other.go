// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build !linux

package coherent

import "errors"

type Udmabuf struct {
	Name       string
	Sysfs, Dev string
}

const DefaultUdmabuf = "udmabuf0"

func (u *Udmabuf) Allocate(capacity int) (*Buffer, error) {
	return nil, &AllocationError{capacity,
		errors.New("not supported on this OS")}
}
