// Command dmgcore runs a DMG ROM image headlessly to completion of a
// context cancellation (Ctrl-C), optionally under a line-oriented
// debugger on stdin. There is no windowing/blit layer here: that's an
// external collaborator's job, per the core's design.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/user-none/dmgcore/emu"
	"github.com/user-none/dmgcore/internal/romio"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <boot_rom_path> <game_rom_path> [--debug]\n", os.Args[0])
		flag.PrintDefaults()
	}
	debug := flag.Bool("debug", false, "read run/halt/step/break commands from stdin")
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}
	bootROMPath := flag.Arg(0)
	gameROMPath := flag.Arg(1)
	// flag.Parse stops at the first positional argument; parse what follows
	// the two ROM paths so a trailing --debug is honoured.
	flag.CommandLine.Parse(flag.Args()[2:])

	bootROM, err := romio.LoadBootROM(bootROMPath)
	if err != nil {
		log.Fatalf("boot_rom: %v", err)
	}
	log.Printf("boot_rom: %s", bootROMPath)

	gameROM, err := romio.LoadCartridge(gameROMPath)
	if err != nil {
		log.Fatalf("game_rom: %v", err)
	}
	log.Printf("game_rom: %s", gameROMPath)

	if info, err := os.Stat(gameROMPath); err == nil {
		fmt.Printf("rom file len: %#06x\n", info.Size())
	}

	soc := emu.NewSoC()
	soc.Load(bootROM, gameROM)
	debugger := emu.NewDebugger()
	emulator := emu.NewEmulator(soc, debugger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if *debug {
		g.Go(func() error { return runDebuggerREPL(ctx, debugger.Queue) })
	}

	g.Go(func() error { return runEmulationLoop(ctx, emulator) })

	if err := g.Wait(); err != nil {
		log.Fatalf("dmgcore: %v", err)
	}
}

// runEmulationLoop ticks the pacer until ctx is cancelled. It has nothing
// to display frames to; a real front end would read FrameReady()/
// FrameBuffer(i) here and blit them to a window.
func runEmulationLoop(ctx context.Context, e *emu.Emulator) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			e.Tick()
		}
	}
}

// runDebuggerREPL reads newline-delimited commands from stdin and pushes
// them onto queue. It's the external collaborator spec.md §6 describes:
// the core never reads stdin itself, only ever drains the queue this
// goroutine feeds.
func runDebuggerREPL(ctx context.Context, queue *emu.CommandQueue) error {
	fmt.Println("dmgcore debugger")
	scanner := bufio.NewScanner(os.Stdin)
	lines := make(chan string)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return scanner.Err()
			}
			parseDebuggerCommand(queue, line)
		}
	}
}

func parseDebuggerCommand(queue *emu.CommandQueue, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "run":
		queue.Push(emu.Command{Kind: emu.CmdRun})
	case "halt":
		queue.Push(emu.Command{Kind: emu.CmdHalt})
	case "step":
		queue.Push(emu.Command{Kind: emu.CmdStep})
	case "break":
		if len(fields) < 2 {
			fmt.Println("usage: break <addr>")
			return
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 16)
		if err != nil {
			// Debugger parse errors are ignored.
			return
		}
		queue.Push(emu.Command{Kind: emu.CmdBreak, Addr: uint16(addr)})
	case "help":
		fmt.Println("supported commands: run, halt, step, break <addr>, help")
	default:
		// Unknown input is ignored.
	}
}
