// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package device presents the CDMA engine and its coherent buffer as an
// exclusive, file like device.
//
// Open grants the one session; Write copies into the buffer and transfers
// it to the sink, Read transfers from the source into the buffer and copies
// out, and Mmap leases the buffer itself.
package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/platinasystems/hwchar/internal/cdma"
	"github.com/platinasystems/hwchar/internal/coherent"
	"github.com/platinasystems/hwchar/internal/lease"
	"github.com/platinasystems/hwchar/internal/memmap"
	"github.com/platinasystems/hwchar/internal/reg"
	"github.com/platinasystems/log"
)

// Capacity is the default size of the coherent buffer.
const Capacity = 1535000

var (
	ErrBusy      = errors.New("device busy")
	ErrNotOpen   = errors.New("session not open")
	ErrOverflow  = errors.New("length exceeds buffer capacity")
	ErrCopyFault = errors.New("device shut down")
)

// Publisher receives transfer statistics.
type Publisher interface {
	Publish(key string, value interface{}) error
}

type Config struct {
	// Capacity of the coherent buffer; zero means Capacity.
	Capacity int
	// Sink is the engine address Write transfers to and Source the one
	// Read transfers from; zero means the engine view of hw.a and hw.b.
	Sink, Source uint64
	// Cdma is the engine register region; zero means the default table's.
	Cdma   memmap.Region
	Engine cdma.Config

	Publisher Publisher
}

type Device struct {
	cfg    Config
	w      *reg.Window
	buf    *coherent.Buffer
	engine *cdma.Engine
	leases *lease.Provider

	lock sync.Mutex // held by the open session

	mu   sync.Mutex // serializes transfers and shutdown
	down bool
	last Stats
}

// New maps the engine, allocates the coherent buffer and initializes the
// engine. A failure releases whatever was acquired.
func New(m reg.Mapper, a coherent.Allocator, cfg Config) (*Device, error) {
	def := memmap.Default()
	if cfg.Capacity == 0 {
		cfg.Capacity = Capacity
	}
	if cfg.Sink == 0 {
		cfg.Sink = def[memmap.HwACdma].Base
	}
	if cfg.Source == 0 {
		cfg.Source = def[memmap.HwBCdma].Base
	}
	if cfg.Cdma.Size == 0 {
		cfg.Cdma = def[memmap.Cdma]
	}
	w, err := m.Map(cfg.Cdma)
	if err != nil {
		return nil, err
	}
	buf, err := a.Allocate(cfg.Capacity)
	if err != nil {
		w.Unmap()
		return nil, err
	}
	engine := cdma.New(w, cfg.Engine)
	if err = engine.Init(); err != nil {
		buf.Release()
		w.Unmap()
		return nil, fmt.Errorf("%s: init: %w", cfg.Cdma.Name, err)
	}
	log.Print("info", cfg.Cdma, " ", buf)
	return &Device{
		cfg:    cfg,
		w:      w,
		buf:    buf,
		engine: engine,
		leases: lease.New(buf),
	}, nil
}

func (d *Device) Engine() *cdma.Engine { return d.engine }

func (d *Device) Buffer() *coherent.Buffer { return d.buf }

func (d *Device) Capacity() int { return d.cfg.Capacity }

// Last returns the statistics of the most recent transfer.
func (d *Device) Last() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Open returns the device session or ErrBusy without waiting, and
// ErrCopyFault after Shutdown.
func (d *Device) Open() (*Session, error) {
	d.mu.Lock()
	down := d.down
	d.mu.Unlock()
	if down {
		return nil, ErrCopyFault
	}
	if !d.lock.TryLock() {
		log.Print("alert", "device busy")
		return nil, ErrBusy
	}
	s := newSession(d)
	log.Print("debug", "open ", s.ID)
	return s, nil
}

// Shutdown revokes the session leases, releases the buffer and unmaps the
// engine. Sessions still open fail their copies with ErrCopyFault, as does
// a later Open.
func (d *Device) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.down {
		return nil
	}
	d.down = true
	d.leases.Revoke()
	return errors.Join(d.buf.Release(), d.w.Unmap())
}

// transfer runs one engine transfer of n bytes; fill, if not nil, runs
// before it and drain after it, under the same lock.
func (d *Device) transfer(op string, src, dst uint64, n int,
	fill, drain func(b []byte)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.down {
		return ErrCopyFault
	}
	b := d.buf.Bytes()
	if fill != nil {
		fill(b[:n])
	}
	start := time.Now()
	if err := d.engine.Transfer(src, dst, n); err != nil {
		log.Print("err", op, ": ", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	d.last = Stats{Op: op, Bytes: n, Elapsed: time.Since(start)}
	if drain != nil {
		drain(b[:n])
	}
	log.Print("debug", d.last)
	if d.cfg.Publisher != nil {
		d.last.publish(d.cfg.Publisher)
	}
	return nil
}
