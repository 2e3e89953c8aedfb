// cmd/wisp is the ambient CLI wrapping the interpreter core: run, coroutine,
// and version subcommands over hand-assembled demo prototypes, since the
// bytecode loader/parser that would normally produce one is out of scope
// (spec.md §1). Grounded on the teacher's cmd/sentra/main.go: a flat
// os.Args dispatch table with no CLI framework, matching the teacher's own
// choice rather than the pack's (a different example repo reaches for
// urfave/cli; this one hand-rolls dispatch, so this CLI does too).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"wisp/internal/coroutine"
	"wisp/internal/machine"
	"wisp/internal/proto"
	"wisp/internal/session"
	"wisp/internal/stringlib"
	"wisp/internal/value"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "run":
		runDemo(args[1:])
	case "coroutine":
		runCoroutineDemo(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "wisp: unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`wisp - a register-based bytecode interpreter core

Usage:
  wisp run [--stats]     run the built-in numeric-for demo prototype
  wisp coroutine [--log path]
                         run the built-in yield/resume demo, optionally
                         recording the suspend/resume trace to a SQLite log
  wisp version           print the interpreter version
  wisp help              show this message`)
}

func showVersion() {
	fmt.Printf("wisp %s\n", version)
}

// runDemo assembles and executes the end-to-end "numeric for" scenario
// spec.md §8 names: init=1, limit=3, step=1, body increments an
// accumulator, expected return [6].
func runDemo(args []string) {
	showStats := false
	for _, a := range args {
		if a == "--stats" {
			showStats = true
		}
	}

	p := buildNumericForDemo()
	ctx := &machine.ExecContext{
		Globals:   machine.NewGlobals(),
		StringLib: stringlib.New(),
	}
	fn := &machine.Function{Proto: p, Ctx: ctx}

	start := time.Now()
	result, err := fn.Call(nil)
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("=>")
	for _, v := range result {
		fmt.Printf(" %s", v.String())
	}
	fmt.Println()

	if showStats {
		fmt.Printf("instructions: %s, elapsed: %s\n",
			humanize.Comma(int64(len(p.Instructions))), elapsed)
	}
}

// runCoroutineDemo assembles and drives the end-to-end "coroutine
// yield/resume" scenario spec.md §8 names: a nested call yields (7, 8),
// the caller resumes it with (9,), and the coroutine returns [9]. With
// --log, every suspend/resume is appended to a SQLite-backed session
// trace (internal/session), the supplemental collaborator original_source
// had informally as console output.
func runCoroutineDemo(args []string) {
	logPath := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "--log" && i+1 < len(args) {
			logPath = args[i+1]
			i++
		}
	}

	var rec *session.Recorder
	if logPath != "" {
		r, err := session.Open(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wisp: opening session log: %v\n", err)
			os.Exit(1)
		}
		defer r.Close()
		rec = r
	}

	entryProto := buildYieldDemo()
	ctrl := coroutine.New()
	ctx := &machine.ExecContext{
		Globals:   machine.NewGlobals(),
		StringLib: stringlib.New(),
		Coroutine: ctrl,
	}
	ctx.Globals.Set("yield", coroutine.YieldCallable())
	entryFn := &machine.Function{Proto: entryProto, Ctx: ctx}

	yielded, err := ctrl.Start(entryFn, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp: %v\n", err)
		os.Exit(1)
	}
	recordEvent(rec, ctrl.ID, session.KindSuspend, entryProto.SourceName, yielded)
	fmt.Print("yielded:")
	for _, v := range yielded {
		fmt.Printf(" %s", v.String())
	}
	fmt.Println()

	resumeWith := []value.Value{value.Number(9)}
	recordEvent(rec, ctrl.ID, session.KindResume, entryProto.SourceName, resumeWith)
	result, err := ctrl.Resume(resumeWith)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp: %v\n", err)
		os.Exit(1)
	}
	recordEvent(rec, ctrl.ID, session.KindReturn, entryProto.SourceName, result)

	fmt.Print("=>")
	for _, v := range result {
		fmt.Printf(" %s", v.String())
	}
	fmt.Println()
}

func recordEvent(rec *session.Recorder, coroutineID string, kind session.Kind, sourceName string, vals []value.Value) {
	if rec == nil {
		return
	}
	detail := ""
	for i, v := range vals {
		if i > 0 {
			detail += ", "
		}
		detail += v.String()
	}
	if err := rec.Record(context.Background(), coroutineID, kind, sourceName, 0, detail); err != nil {
		fmt.Fprintf(os.Stderr, "wisp: recording session event: %v\n", err)
	}
}

// buildYieldDemo hand-assembles a two-prototype program: an entry function
// that calls a helper, and a helper that calls the global "yield" function
// with (7, 8), then returns whatever value the resumed call produces.
func buildYieldDemo() *proto.Prototype {
	helper := proto.NewBuilder("demo:helper").SetParamCount(0).SetMaxStack(3)
	kYield := helper.Constant(value.String("yield"))
	kSeven := helper.Constant(value.Number(7))
	kEight := helper.Constant(value.Number(8))
	helper.Emit(uint32(machine.NewABx(machine.OpGetGlobal, 0, uint32(kYield))), 1)
	helper.Emit(uint32(machine.NewABx(machine.OpLoadK, 1, uint32(kSeven))), 2)
	helper.Emit(uint32(machine.NewABx(machine.OpLoadK, 2, uint32(kEight))), 2)
	helper.Emit(uint32(machine.NewABC(machine.OpCall, 0, 3, 2)), 3)
	helper.Emit(uint32(machine.NewABC(machine.OpReturn, 0, 2, 0)), 4)
	helperProto := helper.Build()

	entry := proto.NewBuilder("demo:coroutine-entry").SetParamCount(0).SetMaxStack(1)
	helperIdx := entry.Nested(helperProto)
	entry.Emit(uint32(machine.NewABx(machine.OpClosure, 0, uint32(helperIdx))), 1)
	entry.Emit(uint32(machine.NewABC(machine.OpCall, 0, 1, 2)), 2)
	entry.Emit(uint32(machine.NewABC(machine.OpReturn, 0, 2, 0)), 3)
	return entry.Build()
}

// buildNumericForDemo hand-assembles a prototype equivalent to:
//
//	local acc = 0
//	for i = 1, 3, 1 do acc = acc + i end
//	return acc
//
// Register layout: R0 = acc, R1..R3 = for-loop (init, limit, step), R4 =
// loop variable i.
func buildNumericForDemo() *proto.Prototype {
	b := proto.NewBuilder("demo:numeric-for")

	kZero := b.Constant(value.Number(0))
	kOne := b.Constant(value.Number(1))
	kThree := b.Constant(value.Number(3))

	// R0 = 0 (acc)
	b.Emit(uint32(machine.NewABx(machine.OpLoadK, 0, uint32(kZero))), 1)
	// R1 = 1 (init)
	b.Emit(uint32(machine.NewABx(machine.OpLoadK, 1, uint32(kOne))), 2)
	// R2 = 3 (limit)
	b.Emit(uint32(machine.NewABx(machine.OpLoadK, 2, uint32(kThree))), 2)
	// R3 = 1 (step)
	b.Emit(uint32(machine.NewABx(machine.OpLoadK, 3, uint32(kOne))), 2)
	// FORPREP R1, +1 (jump to FORLOOP test, skipping the body once)
	b.Emit(uint32(machine.NewAsBx(machine.OpForPrep, 1, 1)), 2)
	// body @ pc5: R0 = R0 + R4
	b.Emit(uint32(machine.NewABC(machine.OpAdd, 0, 0, 4)), 2)
	// FORLOOP R1, -2 (back to body if still in range)
	b.Emit(uint32(machine.NewAsBx(machine.OpForLoop, 1, -2)), 2)
	// RETURN R0, 2 (one return value)
	b.Emit(uint32(machine.NewABC(machine.OpReturn, 0, 2, 0)), 3)

	return b.SetParamCount(0).SetMaxStack(5).Build()
}
