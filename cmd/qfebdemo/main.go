// Command qfebdemo is a tiny end-to-end exercise of the feb package: it
// starts a shepherd worker pool, performs a writeF/readFF round trip
// through it, and prints the value the read observed. It exists to give
// the feb core's configuration surface (which is deliberately not a CLI
// — see SPEC_FULL.md §10.3) somewhere to be exposed as flags, entirely
// outside the feb/fastlock/shepherd packages themselves.
package main

import (
	"fmt"

	"github.com/vanadium-archive/qfeb/cmdline2"
	"github.com/vanadium-archive/qfeb/feb"
	"github.com/vanadium-archive/qfeb/shepherd"
)

func main() {
	cmdline2.Main(cmdQfebDemo)
}

var cmdQfebDemo = &cmdline2.Command{
	Runner: cmdline2.RunnerFunc(runDemo),
	Name:   "qfebdemo",
	Short:  "demonstrates the feb full/empty-bit engine",
	Long: `
Command qfebdemo starts a small shepherd worker pool and a feb registry,
then runs a writeF followed by a readFF on the same address, printing the
value observed. It is a demonstration of the library's external surface,
not a benchmark or a stress test.
`,
}

func runDemo(env *cmdline2.Env, args []string) error {
	pool := shepherd.New(flagWorkers)
	defer pool.Close()

	reg, err := feb.New(
		feb.WithStripes(flagStripes),
		feb.WithLockFreeMaps(flagLockFree),
		feb.WithScheduler(pool),
	)
	if err != nil {
		return err
	}

	var slot feb.Word
	ctx := pool.Context(0)

	if err := reg.WriteF(ctx, &slot, wordPtr(feb.Word(flagValue))); err != nil {
		return err
	}

	var observed feb.Word
	if err := reg.ReadFF(ctx, &observed, &slot); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "wrote %d, readFF observed %d, status=%v\n", flagValue, observed, reg.Status(&slot))
	return nil
}

func wordPtr(w feb.Word) *feb.Word { return &w }
