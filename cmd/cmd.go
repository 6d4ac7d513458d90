// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cmd defines the methods of an hwchar command.
package cmd

import "github.com/platinasystems/hwchar/lang"

type Cmd interface {
	Apropos() lang.Alt
	Main(...string) error
	// String returns the command name.
	String() string
	Usage() string
}

// Maner is a Cmd with a manual page.
type Maner interface {
	Man() lang.Alt
}

// Closer is a Cmd holding resources past Main.
type Closer interface {
	Close() error
}
