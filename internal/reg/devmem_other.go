// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build !linux

package reg

import (
	"errors"

	"github.com/platinasystems/hwchar/internal/memmap"
)

const DefaultDevMem = "/dev/mem"

type DevMem struct {
	Name string
}

func (*DevMem) Map(r memmap.Region) (*Window, error) {
	return nil, &MapError{r, errors.New("not supported on this OS")}
}
