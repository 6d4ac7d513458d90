// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package verify

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
)

// Float32Word returns the IEEE-754 bits of f.
func Float32Word(f float32) uint32 { return math.Float32bits(f) }

// WordFloat32 returns the float32 with bits w.
func WordFloat32(w uint32) float32 { return math.Float32frombits(w) }

// Ramp returns n words with word i the bits of 1.01 + 10i.
func Ramp(n int) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = Float32Word(1.01 + 10.0*float32(i))
	}
	return words
}

// Random returns n pseudo random words from seed.
func Random(n int, seed int64) []uint32 {
	r := rand.New(rand.NewSource(seed))
	words := make([]uint32, n)
	for i := range words {
		words[i] = r.Uint32()
	}
	return words
}

// Encode returns the little endian image of words.
func Encode(words []uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*i:], w)
	}
	return b
}

// Decode is the inverse of Encode; trailing bytes are ignored.
func Decode(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return words
}

type Mismatch struct {
	Index     int
	Want, Got uint32
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("word %d: got %08x (%g), want %08x (%g)", m.Index,
		m.Got, WordFloat32(m.Got), m.Want, WordFloat32(m.Want))
}

// Compare returns the first differing word, or nil. A length difference is
// a mismatch at the shorter length.
func Compare(want, got []uint32) *Mismatch {
	n := len(want)
	if len(got) < n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return &Mismatch{Index: i, Want: want[i], Got: got[i]}
		}
	}
	if len(want) != len(got) {
		m := &Mismatch{Index: n}
		if n < len(want) {
			m.Want = want[n]
		}
		if n < len(got) {
			m.Got = got[n]
		}
		return m
	}
	return nil
}
