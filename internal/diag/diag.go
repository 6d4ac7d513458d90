// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package diag reads the compute unit's block RAMs through their processor
// view, bypassing the engine, to tell engine faults from compute faults.
package diag

import (
	"fmt"
	"io"

	"github.com/platinasystems/hwchar/internal/reg"
)

// Lanes is the number of words read per row from each window.
const Lanes = 3

// Row holds word k of each lane; lane i is at byte offset 4k + 4in.
type Row struct {
	K    int
	A, B [Lanes]uint32
}

// Scan reads n rows from both windows.
func Scan(a, b *reg.Window, n int) ([]Row, error) {
	if n < 0 {
		return nil, fmt.Errorf("%d rows: %w", n, reg.ErrRange)
	}
	rows := make([]Row, n)
	for k := range rows {
		rows[k].K = k
		for i := 0; i < Lanes; i++ {
			off := uint64(4*k + 4*i*n)
			var err error
			if rows[k].A[i], err = a.Read32(off); err != nil {
				return rows[:k], err
			}
			if rows[k].B[i], err = b.Read32(off); err != nil {
				return rows[:k], err
			}
		}
	}
	return rows, nil
}

func (r Row) String() string {
	return fmt.Sprintf("a %08x %08x %08x  b %08x %08x %08x",
		r.A[0], r.A[1], r.A[2], r.B[0], r.B[1], r.B[2])
}

func Fprint(w io.Writer, rows []Row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}
