// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package device

import (
	"fmt"
	"sync"

	"github.com/platinasystems/hwchar/internal/lease"
	"github.com/platinasystems/log"
	uuid "github.com/satori/go.uuid"
)

// Session is the open state of the device. Each operation is all or
// nothing: it returns the full length or zero with an error.
type Session struct {
	ID uuid.UUID

	d      *Device
	mu     sync.Mutex
	closed bool
	leases []*lease.Lease
}

func newSession(d *Device) *Session {
	return &Session{ID: uuid.NewV4(), d: d}
}

func (s *Session) check(n int) error {
	if s.closed {
		return ErrNotOpen
	}
	if n > s.d.cfg.Capacity {
		return fmt.Errorf("%d > %d: %w", n, s.d.cfg.Capacity, ErrOverflow)
	}
	return nil
}

// Write copies p into the buffer and transfers it to the sink.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(len(p)); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	err := s.d.transfer("write", s.d.buf.Phys(), s.d.cfg.Sink, len(p),
		func(b []byte) { copy(b, p) }, nil)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read transfers len(p) bytes from the source into the buffer and copies
// them to p.
func (s *Session) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(len(p)); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	err := s.d.transfer("read", s.d.cfg.Source, s.d.buf.Phys(), len(p),
		nil, func(b []byte) { copy(p, b) })
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Push transfers the first n bytes of the buffer to the sink, as written
// through a lease.
func (s *Session) Push(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.d.transfer("push", s.d.buf.Phys(), s.d.cfg.Sink, n, nil, nil)
}

// Pull transfers n bytes from the source into the start of the buffer.
func (s *Session) Pull(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.d.transfer("pull", s.d.cfg.Source, s.d.buf.Phys(), n, nil, nil)
}

// Mmap leases the first length bytes of the buffer. The lease is released
// by Close if not before.
func (s *Session) Mmap(length int) (*lease.Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrNotOpen
	}
	l, err := s.d.leases.Map(0, length)
	if err != nil {
		return nil, err
	}
	s.leases = append(s.leases, l)
	return l, nil
}

// Close releases the session leases and the device.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotOpen
	}
	s.closed = true
	for _, l := range s.leases {
		l.Release()
	}
	s.leases = nil
	log.Print("debug", "close ", s.ID)
	s.d.lock.Unlock()
	return nil
}
