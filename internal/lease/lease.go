// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package lease hands out zero-copy views of the coherent buffer.
//
// A Lease aliases the buffer memory directly; writes through it are seen by
// the engine on the next transfer without an intermediate copy.
package lease

import (
	"errors"
	"fmt"
	"sync"

	"github.com/platinasystems/hwchar/internal/coherent"
	"github.com/platinasystems/hwchar/internal/memmap"
)

var (
	ErrSizeExceeded = errors.New("mapping exceeds buffer")
	ErrAlign        = errors.New("offset not page aligned")
	ErrReleased     = errors.New("lease released")
)

type Provider struct {
	mu     sync.Mutex
	buf    *coherent.Buffer
	leases map[*Lease]struct{}
}

func New(buf *coherent.Buffer) *Provider {
	return &Provider{buf: buf, leases: make(map[*Lease]struct{})}
}

// Map leases [offset, offset+length) of the buffer.
func (p *Provider) Map(offset, length int) (*Lease, error) {
	if offset < 0 || uint64(offset)%memmap.PageSize != 0 {
		return nil, fmt.Errorf("%#x: %w", offset, ErrAlign)
	}
	b := p.buf.Bytes()
	if b == nil {
		return nil, coherent.ErrReleased
	}
	if length <= 0 || offset+length > len(b) {
		return nil, fmt.Errorf("%#x[%d] of %d: %w", offset, length,
			len(b), ErrSizeExceeded)
	}
	l := &Lease{
		p:    p,
		b:    b[offset : offset+length : offset+length],
		phys: p.buf.Phys() + uint64(offset),
	}
	p.mu.Lock()
	p.leases[l] = struct{}{}
	p.mu.Unlock()
	return l, nil
}

// Revoke releases every live lease; call it before releasing the buffer.
func (p *Provider) Revoke() {
	p.mu.Lock()
	leases := make([]*Lease, 0, len(p.leases))
	for l := range p.leases {
		leases = append(leases, l)
	}
	p.mu.Unlock()
	for _, l := range leases {
		l.Release()
	}
}

// Active is the number of unreleased leases.
func (p *Provider) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.leases)
}

type Lease struct {
	p    *Provider
	mu   sync.Mutex
	b    []byte
	phys uint64
}

// Bytes is the leased memory, nil after Release.
func (l *Lease) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b
}

func (l *Lease) Phys() uint64 { return l.phys }

func (l *Lease) Len() int { return len(l.Bytes()) }

func (l *Lease) String() string {
	return fmt.Sprintf("lease %#x[%d]", l.phys, l.Len())
}

// Release returns the lease; only the first call does so.
func (l *Lease) Release() error {
	l.mu.Lock()
	b := l.b
	l.b = nil
	l.mu.Unlock()
	if b == nil {
		return ErrReleased
	}
	l.p.mu.Lock()
	delete(l.p.leases, l)
	l.p.mu.Unlock()
	return nil
}
