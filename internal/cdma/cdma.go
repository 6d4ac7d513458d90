// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cdma drives a Xilinx AXI Central DMA engine in simple mode.
//
// The engine moves one contiguous block per Transfer. Callers serialize
// Transfers; the engine has a single set of address and length registers.
package cdma

import (
	"errors"
	"fmt"

	"github.com/platinasystems/hwchar/internal/poll"
	"github.com/platinasystems/hwchar/internal/reg"
)

var (
	ErrBusy            = errors.New("engine busy")
	ErrResetTimeout    = errors.New("engine reset timeout")
	ErrTransferTimeout = errors.New("engine transfer timeout")
	ErrLength          = errors.New("invalid transfer length")
	ErrAddress         = errors.New("address beyond 32 bits")
)

// StatusError reports a transfer that completed with SR error bits set.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine error: %s", e.Status)
}

type Config struct {
	// Policy bounds the reset and transfer polls.
	Policy poll.Policy
	// EnableIrq sets the CR interrupt enables. Completion is still polled.
	EnableIrq bool
}

type Engine struct {
	w   *reg.Window
	cfg Config
}

func New(w *reg.Window, cfg Config) *Engine {
	if cfg.Policy == (poll.Policy{}) {
		cfg.Policy = poll.Default
	}
	return &Engine{w: w, cfg: cfg}
}

func (e *Engine) Window() *reg.Window { return e.w }

func (e *Engine) Status() (Status, error) {
	v, err := e.w.Read32(SR)
	return Status(v), err
}

// Reset sets the reset bit and polls until the engine clears it.
func (e *Engine) Reset() error {
	if err := e.w.Write32(CR, CrReset); err != nil {
		return err
	}
	_, err := e.cfg.Policy.Until(func() (bool, error) {
		v, err := e.w.Read32(CR)
		return v&CrReset == 0, err
	})
	if errors.Is(err, poll.ErrTimeout) {
		return ErrResetTimeout
	}
	return err
}

// ConfigureMode switches an idle engine out of scatter-gather mode.
func (e *Engine) ConfigureMode() error {
	s, err := e.Status()
	if err != nil {
		return err
	}
	if !s.Idle() {
		return fmt.Errorf("%w: %s", ErrBusy, s)
	}
	v, err := e.w.Read32(CR)
	if err != nil {
		return err
	}
	if v&CrSgMode == 0 {
		return nil
	}
	return e.w.Write32(CR, v&^CrSgMode)
}

// Init resets the engine, sets its interrupt enables if configured, and
// puts it in simple mode.
func (e *Engine) Init() error {
	if err := e.Reset(); err != nil {
		return err
	}
	if e.cfg.EnableIrq {
		if err := e.w.Set(CR, CrIrqAll); err != nil {
			return err
		}
	}
	return e.ConfigureMode()
}

// Transfer copies n bytes from physical address src to dst. The source,
// destination and length registers are written in that order; the length
// write starts the engine, after which the status is polled for idle.
func (e *Engine) Transfer(src, dst uint64, n int) error {
	if n <= 0 || n > MaxBTT {
		return fmt.Errorf("%d: %w", n, ErrLength)
	}
	if src > 0xffffffff || dst > 0xffffffff {
		return fmt.Errorf("%#x -> %#x: %w", src, dst, ErrAddress)
	}
	if err := e.w.Write32(SA, uint32(src)); err != nil {
		return err
	}
	if err := e.w.Write32(DA, uint32(dst)); err != nil {
		return err
	}
	if err := e.w.Write32(BTT, uint32(n)); err != nil {
		return err
	}
	var s Status
	_, err := e.cfg.Policy.Until(func() (bool, error) {
		var err error
		s, err = e.Status()
		return s.Idle(), err
	})
	if errors.Is(err, poll.ErrTimeout) {
		return fmt.Errorf("%#x -> %#x [%d]: %s: %w", src, dst, n, s,
			ErrTransferTimeout)
	}
	if err != nil {
		return err
	}
	if s.Err() != 0 {
		return &StatusError{s}
	}
	return nil
}
