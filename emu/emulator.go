package emu

import "time"

// cyclesPerFrame is the master-clock cycle budget of one video frame:
// 70224 cycles of 1/4194304 s each.
const cyclesPerFrame = 70224

// oneFrameDuration is cyclesPerFrame expressed in wall-clock time.
const oneFrameDuration = 16_742_706 * time.Nanosecond

// PacerState is one of the Emulator's four frame-pacing states.
type PacerState int

const (
	StateGetTime PacerState = iota
	StateRunMachine
	StateWaitNextFrame
	StateDisplayFrame
)

// Emulator batches SoC steps into 70224-cycle frames clocked to wall
// time: GetTime -> RunMachine -> WaitNextFrame -> DisplayFrame -> GetTime.
// It is single-threaded and synchronous; Tick never blocks.
type Emulator struct {
	SoC      *SoC
	Debugger *Debugger

	state         PacerState
	cyclesElapsed int
	frameStart    time.Time
	frameReady    bool

	now func() time.Time
}

// NewEmulator returns an Emulator wired to soc and debugger, starting in
// the GetTime state.
func NewEmulator(soc *SoC, debugger *Debugger) *Emulator {
	return &Emulator{SoC: soc, Debugger: debugger, now: time.Now}
}

// Tick drains any pending debugger commands, then advances the pacer by
// one step of its current state. In RunMachine, one Tick corresponds to
// exactly one SoC.Step() call, so Tick is re-entrant with a host event
// loop; it performs no emulation at all while the debugger holds the
// machine halted.
func (e *Emulator) Tick() {
	e.frameReady = false
	e.Debugger.ApplyPending()

	switch e.state {
	case StateGetTime:
		e.frameStart = e.now()
		e.state = StateRunMachine

	case StateRunMachine:
		if !e.Debugger.ShouldStep(e.SoC.CPU.PC) {
			return
		}
		cycles, _ := e.SoC.Step()
		e.cyclesElapsed += cycles
		if e.cyclesElapsed >= cyclesPerFrame {
			e.cyclesElapsed = 0
			e.state = StateWaitNextFrame
		}

	case StateWaitNextFrame:
		if e.now().Sub(e.frameStart) >= oneFrameDuration {
			e.state = StateDisplayFrame
		}

	case StateDisplayFrame:
		e.frameReady = true
		e.state = StateGetTime
	}
}

// State returns the pacer's current state, mostly useful for tests and
// diagnostics.
func (e *Emulator) State() PacerState { return e.state }

// FrameReady reports whether the frame completed on the most recent Tick
// call; it stays true only until the next Tick call.
func (e *Emulator) FrameReady() bool { return e.frameReady }

// FrameBuffer returns pixel i (0 <= i < 160*144) of the GPU's completed
// frame buffer.
func (e *Emulator) FrameBuffer(i int) uint8 { return e.SoC.GPU.FrameBuffer(i) }
