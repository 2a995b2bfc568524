// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdline2

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vanadium-archive/qfeb/textutil"
)

// NewEnv returns a new environment based on the current process: stdin,
// stdout, stderr and the process's own environment variables.
func NewEnv() *Env {
	return &Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Vars:   environToMap(os.Environ()),
	}
}

func environToMap(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			vars[kv[:i]] = kv[i+1:]
		}
	}
	return vars
}

// Env represents the environment for command parsing and running.
// Typically NewEnv is used to produce a default environment; it may be
// explicitly constructed for finer control, e.g. in tests.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Vars   map[string]string

	// Usage prints usage information to w. Set by Main or Parse to the
	// usage of the leaf command being run.
	Usage func(w io.Writer)
}

// UsageErrorf prints the error message represented by the printf-style
// format and args, followed by the output of the Usage function, and
// returns ErrUsage.
func (e *Env) UsageErrorf(format string, args ...interface{}) error {
	return usageErrorf(e.Stderr, e.Usage, format, args...)
}

func usageErrorf(stderr io.Writer, usage func(io.Writer), format string, args ...interface{}) error {
	fmt.Fprint(stderr, "ERROR: ")
	fmt.Fprintf(stderr, format, args...)
	fmt.Fprint(stderr, "\n\n")
	if usage != nil {
		usage(stderr)
	} else {
		fmt.Fprint(stderr, "usage error\n")
	}
	return ErrUsage
}

// defaultWidth is a reasonable default output width in runes, used when
// neither CMDLINE_WIDTH nor the terminal size is available.
const defaultWidth = 80

func (e *Env) width() int {
	if width, err := strconv.Atoi(e.Vars["CMDLINE_WIDTH"]); err == nil && width != 0 {
		return width
	}
	if _, width, err := textutil.TerminalSize(); err == nil && width != 0 {
		return width
	}
	return defaultWidth
}

func (e *Env) style() style {
	s := styleCompact
	s.Set(e.Vars["CMDLINE_STYLE"])
	return s
}

// style describes the formatting style for usage descriptions.
type style int

const (
	styleCompact style = iota
	styleFull
	styleGoDoc
)

func (s *style) String() string {
	switch *s {
	case styleCompact:
		return "compact"
	case styleFull:
		return "full"
	case styleGoDoc:
		return "godoc"
	default:
		panic(fmt.Errorf("unhandled style %d", *s))
	}
}

// Set implements the flag.Value interface method.
func (s *style) Set(value string) error {
	switch value {
	case "compact":
		*s = styleCompact
	case "full":
		*s = styleFull
	case "godoc":
		*s = styleGoDoc
	default:
		return fmt.Errorf("unknown style %q", value)
	}
	return nil
}
