// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hwchar dispatches the commands that drive a CDMA attached FPGA
// compute region from user space.
package hwchar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/hwchar/cmd"
	"github.com/platinasystems/hwchar/lang"
)

var (
	Exit = os.Exit

	// Stdout receives the helper output.
	Stdout io.Writer = os.Stdout
)

type ByName map[string]cmd.Cmd

// Plot commands on the map; panics on a duplicate name.
func (byName ByName) Plot(cmds ...cmd.Cmd) {
	for _, v := range cmds {
		name := v.String()
		if _, found := byName[name]; found {
			panic(fmt.Errorf("%s: duplicate", name))
		}
		byName[name] = v
	}
}

// Names returns the sorted command names.
func (byName ByName) Names() []string {
	names := make([]string, 0, len(byName))
	for k := range byName {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Complete returns the names with the given prefix.
func (byName ByName) Complete(prefix string) (ss []string) {
	for _, k := range byName.Names() {
		if strings.HasPrefix(k, prefix) {
			ss = append(ss, k)
		}
	}
	return
}

// Main runs the args[0] command. When run w/o args this uses os.Args and
// exits instead of returns on error.
//
// If args has "-h", "-help", or "--help", this prints the command usage.
// Similarly for "-apropos", "-man", and "-usage". These are also commands:
//
//	apropos [COMMAND]...
//	man COMMAND...
//	usage COMMAND
//	help [COMMAND]
func (byName ByName) Main(args ...string) (err error) {
	if len(args) == 0 {
		defer func() {
			if err != nil && err != io.EOF {
				fmt.Fprintf(os.Stderr, "%s: %v\n",
					filepath.Base(os.Args[0]), err)
				Exit(1)
			}
		}()
		if len(os.Args) == 0 {
			return
		}
		// as with busybox, a link named for a command runs it
		args = os.Args[1:]
		base := filepath.Base(os.Args[0])
		if _, found := byName[base]; found {
			args = append([]string{base}, args...)
		}
	}
	if len(args) == 0 {
		return byName.usage()
	}
	defer func() {
		for _, v := range byName {
			if method, found := v.(cmd.Closer); found {
				if cerr := method.Close(); err == nil {
					err = cerr
				}
			}
		}
	}()
	name := args[0]
	args = args[1:]
	flag, args := flags.New(args,
		[]string{"-h", "-help", "--help"},
		[]string{"-apropos", "--apropos"},
		[]string{"-man", "--man"},
		[]string{"-usage", "--usage"})
	switch {
	case flag.ByName["-h"], flag.ByName["-usage"]:
		args, name = []string{name}, "usage"
	case flag.ByName["-apropos"]:
		args, name = []string{name}, "apropos"
	case flag.ByName["-man"]:
		args, name = []string{name}, "man"
	}
	switch name {
	case "apropos":
		return byName.apropos(args...)
	case "help":
		if len(args) == 0 {
			return byName.usage()
		}
		return byName.usageOf(args[0])
	case "man":
		return byName.man(args...)
	case "usage":
		if len(args) == 0 {
			return byName.usage()
		}
		return byName.usageOf(args[0])
	}
	v := byName[name]
	if v == nil {
		return fmt.Errorf("%s: command not found", name)
	}
	if err = v.Main(args...); err == io.EOF {
		err = nil
	}
	if err != nil {
		err = fmt.Errorf("%s: %v", name, err)
	}
	return
}

func Usage(v cmd.Cmd) string {
	return fmt.Sprint("usage:\t", strings.TrimSpace(v.Usage()))
}

func (byName ByName) usage() error {
	fmt.Fprint(Stdout, `usage:	hwchar COMMAND [ ARGS ]...
	hwchar COMMAND -[-]HELPER
	hwchar HELPER [ COMMAND ]...

	HELPER := { apropos | help | man | usage }
`)
	return nil
}

func (byName ByName) usageOf(name string) error {
	v := byName[name]
	if v == nil {
		return fmt.Errorf("%s: not found", name)
	}
	fmt.Fprintln(Stdout, Usage(v))
	return nil
}

func (byName ByName) apropos(args ...string) error {
	if len(args) == 0 {
		args = byName.Names()
	}
	for _, name := range args {
		v := byName[name]
		if v == nil {
			return fmt.Errorf("%s: not found", name)
		}
		pad := 16 - len(name)
		if pad < 1 {
			pad = 1
		}
		fmt.Fprint(Stdout, name, strings.Repeat(" ", pad), v.Apropos(),
			"\n")
	}
	return nil
}

var section = struct {
	name, synopsis lang.Alt
}{
	name: lang.Alt{
		lang.EnUS: "NAME",
	},
	synopsis: lang.Alt{
		lang.EnUS: "SYNOPSIS",
	},
}

func (byName ByName) man(args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("COMMAND: missing")
	}
	for i, name := range args {
		v := byName[name]
		if v == nil {
			return fmt.Errorf("%s: not found", name)
		}
		if i > 0 {
			fmt.Fprintln(Stdout)
		}
		fmt.Fprint(Stdout, section.name, "\n\t", v, " - ", v.Apropos(),
			"\n\n", section.synopsis, "\n\t",
			strings.TrimSpace(v.Usage()), "\n")
		if method, found := v.(cmd.Maner); found {
			man := method.Man().String()
			if !strings.HasPrefix(man, "\n") {
				fmt.Fprintln(Stdout)
			}
			fmt.Fprint(Stdout, man)
			if !strings.HasSuffix(man, "\n") {
				fmt.Fprintln(Stdout)
			}
		}
	}
	return nil
}
