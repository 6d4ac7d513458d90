// Copyright © 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

//go:build linux

package coherent

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Udmabuf allocates from a u-dma-buf device, a contiguous region reserved by
// the kernel at boot and exported as /dev/NAME with its attributes under
// /sys/class/u-dma-buf/NAME.
type Udmabuf struct {
	Name string
	// Sysfs and Dev default to /sys/class/u-dma-buf and /dev.
	Sysfs, Dev string
}

const (
	DefaultUdmabuf      = "udmabuf0"
	DefaultUdmabufSysfs = "/sys/class/u-dma-buf"
)

func (u *Udmabuf) names() (name, sysfs, dev string) {
	name, sysfs, dev = u.Name, u.Sysfs, u.Dev
	if len(name) == 0 {
		name = DefaultUdmabuf
	}
	if len(sysfs) == 0 {
		sysfs = DefaultUdmabufSysfs
	}
	if len(dev) == 0 {
		dev = "/dev"
	}
	return
}

func (u *Udmabuf) attr(name string) (uint64, error) {
	udmabuf, sysfs, _ := u.names()
	fn := filepath.Join(sysfs, udmabuf, name)
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	return v, nil
}

// Region returns the physical address and size of the device.
func (u *Udmabuf) Region() (phys, size uint64, err error) {
	if phys, err = u.attr("phys_addr"); err != nil {
		return
	}
	size, err = u.attr("size")
	return
}

func (u *Udmabuf) Allocate(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, &AllocationError{capacity,
			fmt.Errorf("invalid capacity")}
	}
	phys, size, err := u.Region()
	if err != nil {
		return nil, &AllocationError{capacity, err}
	}
	name, _, dev := u.names()
	if uint64(capacity) > size {
		return nil, &AllocationError{capacity,
			fmt.Errorf("%s has %d bytes", name, size)}
	}
	f, err := os.OpenFile(filepath.Join(dev, name), os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, &AllocationError{capacity, err}
	}
	defer f.Close()
	b, err := unix.Mmap(int(f.Fd()), 0, capacity,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &AllocationError{capacity, err}
	}
	return New(b, phys, func() error { return unix.Munmap(b) }), nil
}
