// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwchar

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/platinasystems/hwchar/internal/test"
	"github.com/platinasystems/hwchar/lang"
)

type echo struct {
	args   []string
	closed int
}

func (*echo) String() string { return "echo" }
func (*echo) Usage() string  { return "echo [ARG]..." }

func (*echo) Apropos() lang.Alt {
	return lang.Alt{lang.EnUS: "print arguments"}
}

func (*echo) Man() lang.Alt {
	return lang.Alt{lang.EnUS: "\nDESCRIPTION\n\tRemember args."}
}

func (e *echo) Main(args ...string) error {
	e.args = args
	if len(args) > 0 && args[0] == "eof" {
		return io.EOF
	}
	if len(args) > 0 && args[0] == "fail" {
		return errors.New("failed")
	}
	return nil
}

func (e *echo) Close() error {
	e.closed++
	return nil
}

type quiet struct{}

func (quiet) String() string            { return "quiet" }
func (quiet) Usage() string             { return "quiet" }
func (quiet) Apropos() lang.Alt         { return lang.Alt{lang.EnUS: "nothing"} }
func (quiet) Main(args ...string) error { return nil }

func byName() (ByName, *echo, *bytes.Buffer) {
	e := new(echo)
	g := make(ByName)
	g.Plot(e, quiet{})
	out := new(bytes.Buffer)
	Stdout = out
	return g, e, out
}

func TestDispatch(t *testing.T) {
	assert := test.Assert{TB: t}
	g, e, _ := byName()
	assert.Nil(g.Main("echo", "a", "b"))
	assert.Int(len(e.args), 2)
	assert.Int(e.closed, 1)
	assert.Nil(g.Main("echo", "eof"))
	assert.Error(g.Main("echo", "fail"), "echo: failed")
	assert.Error(g.Main("nope"), "nope: command not found")
}

func TestPlotDuplicate(t *testing.T) {
	defer func() {
		test.Assert{TB: t}.True(recover() != nil)
	}()
	g, _, _ := byName()
	g.Plot(quiet{})
}

func TestComplete(t *testing.T) {
	assert := test.Assert{TB: t}
	g, _, _ := byName()
	assert.Int(len(g.Complete("")), 2)
	ss := g.Complete("e")
	assert.Int(len(ss), 1)
	assert.Equal(ss[0], "echo")
}

func TestHelpers(t *testing.T) {
	assert := test.Assert{TB: t}
	g, e, out := byName()

	assert.Nil(g.Main("echo", "-usage"))
	assert.Equal(out.String(), "usage:\techo [ARG]...\n")
	assert.True(e.args == nil)

	out.Reset()
	assert.Nil(g.Main("help", "quiet"))
	assert.Equal(out.String(), "usage:\tquiet\n")

	out.Reset()
	assert.Nil(g.Main("apropos"))
	assert.Equal(out.String(),
		"echo            print arguments\nquiet           nothing\n")

	out.Reset()
	assert.Nil(g.Main("quiet", "--apropos"))
	assert.Equal(out.String(), "quiet           nothing\n")

	out.Reset()
	assert.Nil(g.Main("echo", "-man"))
	assert.Equal(out.String(), "NAME\n\techo - print arguments\n\n"+
		"SYNOPSIS\n\techo [ARG]...\n\nDESCRIPTION\n\tRemember args.\n")

	out.Reset()
	assert.Nil(g.Main("man", "quiet"))
	assert.Equal(out.String(),
		"NAME\n\tquiet - nothing\n\nSYNOPSIS\n\tquiet\n")

	assert.Error(g.Main("man", "nope"), "nope: not found")
	assert.Error(g.Main("man"), "COMMAND: missing")
	assert.Error(g.Main("usage", "nope"), "nope: not found")

	out.Reset()
	assert.Nil(g.Main("usage"))
	assert.Match(out.String(), "^usage:\thwchar COMMAND")
}
