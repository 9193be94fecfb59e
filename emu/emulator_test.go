package emu

import (
	"testing"
	"time"
)

func newTestEmulator() (*Emulator, *fakeClock) {
	soc := NewSoC()
	boot := make([]byte, 256)
	cart := make([]byte, 0x8000) // all NOPs
	soc.Load(boot, cart)
	soc.Bus.Write(0xFF50, 0x01)

	clock := &fakeClock{t: time.Unix(0, 0)}
	e := NewEmulator(soc, NewDebugger())
	e.now = clock.Now
	return e, clock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestEmulatorPacerTimingScenario(t *testing.T) {
	e, clock := newTestEmulator()

	if e.State() != StateGetTime {
		t.Fatalf("initial state = %v, want StateGetTime", e.State())
	}
	e.Tick() // GetTime -> RunMachine
	if e.State() != StateRunMachine {
		t.Fatalf("state = %v, want StateRunMachine", e.State())
	}

	// Run enough NOPs (4 cycles each) to reach the 70224-cycle frame budget.
	for total := 0; total < cyclesPerFrame; total += 4 {
		e.Tick()
	}
	if e.State() != StateWaitNextFrame {
		t.Fatalf("state after one frame of cycles = %v, want StateWaitNextFrame", e.State())
	}

	clock.Advance(oneFrameDuration)
	e.Tick() // WaitNextFrame -> DisplayFrame
	if e.State() != StateDisplayFrame {
		t.Fatalf("state = %v, want StateDisplayFrame", e.State())
	}
	if e.FrameReady() {
		t.Fatal("FrameReady should still be false on the tick that only transitions into DisplayFrame")
	}

	e.Tick() // DisplayFrame -> GetTime, frame_ready true for this tick only
	if !e.FrameReady() {
		t.Fatal("FrameReady should be true on the DisplayFrame tick")
	}
	if e.State() != StateGetTime {
		t.Fatalf("state = %v, want StateGetTime", e.State())
	}

	e.Tick()
	if e.FrameReady() {
		t.Fatal("FrameReady should be false again one tick later")
	}
}

func TestEmulatorWaitNextFrameDoesNotAdvanceBeforeDeadline(t *testing.T) {
	e, clock := newTestEmulator()
	e.Tick()
	for total := 0; total < cyclesPerFrame; total += 4 {
		e.Tick()
	}
	clock.Advance(oneFrameDuration - time.Millisecond)
	e.Tick()
	if e.State() != StateWaitNextFrame {
		t.Fatalf("state = %v, want StateWaitNextFrame (deadline not yet reached)", e.State())
	}
}

func TestEmulatorHaltedDebuggerMakesRunMachineANoOp(t *testing.T) {
	e, _ := newTestEmulator()
	e.Tick() // GetTime -> RunMachine
	e.Debugger.Queue.Push(Command{Kind: CmdHalt})

	pcBefore := e.SoC.CPU.PC
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	if e.SoC.CPU.PC != pcBefore {
		t.Fatalf("PC advanced to %#x while debugger halted, want unchanged %#x", e.SoC.CPU.PC, pcBefore)
	}
	if e.State() != StateRunMachine {
		t.Fatalf("state = %v, want StateRunMachine (halted, but still the RunMachine phase)", e.State())
	}
}
