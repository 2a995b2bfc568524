package main

import (
	"strconv"

	"github.com/spf13/pflag"
)

var (
	flagWorkers  int
	flagStripes  uint32
	flagLockFree bool
	flagValue    uint64
)

// uint32Value adapts a *uint32 to flag.Value, since the stdlib flag
// package has no Uint32Var.
type uint32Value uint32

func (v *uint32Value) String() string { return strconv.FormatUint(uint64(*v), 10) }
func (v *uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*v = uint32Value(n)
	return nil
}

func init() {
	cmdQfebDemo.Flags.IntVar(&flagWorkers, "workers", 4, `
Number of shepherd worker goroutines to start.
`)
	cmdQfebDemo.Flags.Uint64Var(&flagValue, "value", 42, `
The word value written with writeF before it is read back with readFF.
`)
	flagStripes = 128
	cmdQfebDemo.Flags.Var((*uint32Value)(&flagStripes), "stripes", `
Number of stripes in the registry's map array; must be a power of two.
`)
	cmdQfebDemo.Flags.BoolVar(&flagLockFree, "lock-free", false, `
Use the hazard-pointer-based lock-free striped map instead of the
coarse-locked one.
`)

	// Bridge the command's stdlib FlagSet onto a pflag.FlagSet, the way
	// the teacher's pflagvar.RegisterFlagsInStruct bridges flag->pflag
	// (AddGoFlagSet). The pflag set is local to init and is not used for
	// parsing: cmdline2 parses the command's stdlib FlagSet.
	pfs := pflag.NewFlagSet(cmdQfebDemo.Name, pflag.ContinueOnError)
	pfs.AddGoFlagSet(&cmdQfebDemo.Flags)
}
