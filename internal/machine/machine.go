// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package machine brings up the board, real or simulated, for the hwchar
// commands. Parts are acquired on first use and released by Close in
// reverse order.
package machine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/hwchar/internal/cdma"
	"github.com/platinasystems/hwchar/internal/coherent"
	"github.com/platinasystems/hwchar/internal/device"
	"github.com/platinasystems/hwchar/internal/fpgasim"
	"github.com/platinasystems/hwchar/internal/memmap"
	"github.com/platinasystems/hwchar/internal/myip"
	"github.com/platinasystems/hwchar/internal/poll"
	"github.com/platinasystems/hwchar/internal/publisher"
	"github.com/platinasystems/hwchar/internal/reg"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
)

// Usage describes the options parsed by Parse.
const Usage = `[-sim] [-irq] [-windows FILE] [-dtb FILE] [-udmabuf NAME]
	[-capacity BYTES] [-redis ADDRESS] [-timeout DURATION]`

// Man describes the options parsed by Parse.
const Man = `
	-sim	run against the simulated board
	-irq	set the engine interrupt enables
	-windows FILE
		override regions with "START-END : NAME" lines
	-dtb FILE
		take the cdma region from this flattened device tree
	-udmabuf NAME
		coherent buffer device (default udmabuf0)
	-capacity BYTES
		coherent buffer size (default 1535000)
	-redis ADDRESS
		publish transfer statistics to this redis server
	-timeout DURATION
		bound each register poll (default 1s)`

type Config struct {
	Sim      bool
	Irq      bool
	Windows  string
	Dtb      string
	Udmabuf  string
	Capacity int
	Redis    string
	Timeout  time.Duration
}

// Parse removes the machine options from args.
func Parse(args []string) (*Config, []string, error) {
	flag, args := flags.New(args, "-sim", "-irq")
	parm, args := parms.New(args, "-windows", "-dtb", "-udmabuf",
		"-capacity", "-redis", "-timeout")
	cfg := &Config{
		Sim:      flag.ByName["-sim"],
		Irq:      flag.ByName["-irq"],
		Windows:  parm.ByName["-windows"],
		Dtb:      parm.ByName["-dtb"],
		Udmabuf:  parm.ByName["-udmabuf"],
		Redis:    parm.ByName["-redis"],
		Capacity: device.Capacity,
		Timeout:  poll.Default.Timeout,
	}
	if s := parm.ByName["-capacity"]; len(s) > 0 {
		n, err := strconv.ParseUint(s, 0, 31)
		if err != nil {
			return nil, args, fmt.Errorf("-capacity: %v", err)
		}
		cfg.Capacity = int(n)
	}
	if s := parm.ByName["-timeout"]; len(s) > 0 {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, args, fmt.Errorf("-timeout: %v", err)
		}
		cfg.Timeout = d
	}
	return cfg, args, nil
}

// Policy is the poll policy for the configured timeout.
func (cfg *Config) Policy() poll.Policy {
	p := poll.Default
	p.Timeout = cfg.Timeout
	return p
}

type Machine struct {
	Config *Config
	Table  memmap.Table
	Mapper reg.Mapper
	// Board is the simulated board, nil on hardware.
	Board     *fpgasim.Board
	Allocator coherent.Allocator

	dev          *device.Device
	unit         *myip.Unit
	diagA, diagB *reg.Window
	closers      []func() error
}

// Open builds the region table and selects the mapper and allocator.
func Open(cfg *Config) (*Machine, error) {
	t := memmap.Default()
	if len(cfg.Windows) > 0 {
		u, err := memmap.FileToTable(cfg.Windows)
		if err != nil {
			return nil, err
		}
		t.Merge(u)
	}
	if len(cfg.Dtb) > 0 {
		b, err := os.ReadFile(cfg.Dtb)
		if err != nil {
			return nil, err
		}
		if err = memmap.FromDeviceTree(b, t); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Dtb, err)
		}
	}
	m := &Machine{Config: cfg, Table: t}
	if cfg.Sim {
		b, err := fpgasim.New(t)
		if err != nil {
			return nil, err
		}
		m.Board, m.Mapper, m.Allocator = b, b, b
	} else {
		m.Mapper = &reg.DevMem{}
		m.Allocator = &coherent.Udmabuf{Name: cfg.Udmabuf}
	}
	return m, nil
}

func (m *Machine) onClose(f func() error) {
	m.closers = append(m.closers, f)
}

// Map maps the named region until Close.
func (m *Machine) Map(name string) (*reg.Window, error) {
	r, err := m.Table.Lookup(name)
	if err != nil {
		return nil, err
	}
	w, err := m.Mapper.Map(r)
	if err != nil {
		return nil, err
	}
	m.onClose(func() error {
		if w.Mapped() {
			return w.Unmap()
		}
		return nil
	})
	return w, nil
}

// Engine maps the cdma region without initializing the engine.
func (m *Machine) Engine() (*cdma.Engine, error) {
	w, err := m.Map(memmap.Cdma)
	if err != nil {
		return nil, err
	}
	return cdma.New(w, m.engineConfig()), nil
}

func (m *Machine) engineConfig() cdma.Config {
	return cdma.Config{Policy: m.Config.Policy(), EnableIrq: m.Config.Irq}
}

// Device starts the device on first call.
func (m *Machine) Device() (*device.Device, error) {
	if m.dev != nil {
		return m.dev, nil
	}
	cfg := device.Config{
		Capacity: m.Config.Capacity,
		Sink:     m.Table[memmap.HwACdma].Base,
		Source:   m.Table[memmap.HwBCdma].Base,
		Cdma:     m.Table[memmap.Cdma],
		Engine:   m.engineConfig(),
	}
	if len(m.Config.Redis) > 0 {
		p, err := publisher.Dial(m.Config.Redis, publisher.Hash)
		if err != nil {
			log.Print("warning", err)
		} else {
			cfg.Publisher = p
			m.onClose(p.Close)
		}
	}
	d, err := device.New(m.Mapper, m.Allocator, cfg)
	if err != nil {
		return nil, err
	}
	m.dev = d
	m.onClose(d.Shutdown)
	return d, nil
}

// Unit maps the compute unit control registers on first call.
func (m *Machine) Unit() (*myip.Unit, error) {
	if m.unit != nil {
		return m.unit, nil
	}
	w, err := m.Map(memmap.MyIP)
	if err != nil {
		return nil, err
	}
	m.unit = &myip.Unit{W: w, Policy: m.Config.Policy()}
	return m.unit, nil
}

// Diag maps the diagnostic windows on first call.
func (m *Machine) Diag() (a, b *reg.Window, err error) {
	if m.diagA != nil {
		return m.diagA, m.diagB, nil
	}
	if a, err = m.Map(memmap.DiagA); err != nil {
		return
	}
	if b, err = m.Map(memmap.DiagB); err != nil {
		return
	}
	m.diagA, m.diagB = a, b
	return
}

// Close releases everything acquired, last first.
func (m *Machine) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	m.dev, m.unit, m.diagA, m.diagB = nil, nil, nil, nil
	return errors.Join(errs...)
}
