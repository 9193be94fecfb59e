package emu

// SoC aggregates the CPU, Bus, GPU, Timer, and NVIC into one system that
// advances in whole-instruction steps. It exclusively owns all five
// components; Bus holds only borrowed references to GPU/NVIC/Timer, so
// there are no reference cycles.
type SoC struct {
	CPU   *CPU
	Bus   *Bus
	GPU   *GPU
	Timer *Timer
	NVIC  *NVIC
}

// NewSoC wires a fresh set of components together.
func NewSoC() *SoC {
	nvic := NewNVIC()
	gpu := NewGPU(nvic)
	timer := NewTimer(nvic)
	bus := NewBus(gpu, nvic, timer)
	cpu := NewCPU(bus, nvic)
	return &SoC{CPU: cpu, Bus: bus, GPU: gpu, Timer: timer, NVIC: nvic}
}

// Load installs the boot ROM and cartridge image and resets the CPU to the
// machine's power-on program counter and stack pointer.
func (s *SoC) Load(bootROM, cartROM []byte) {
	s.Bus.LoadBootROM(bootROM)
	s.Bus.LoadCartridge(cartROM)
	s.CPU.PC = 0x0000
	s.CPU.SP = 0xFFFE
}

// Step executes one CPU instruction (or interrupt dispatch, or HALT tick)
// and advances the Timer and GPU by the same number of master cycles,
// returning the cycle count and any GPU interrupt request raised along
// the way.
func (s *SoC) Step() (cycles int, irq GPUInterruptRequest) {
	cycles = s.CPU.Step()
	s.Timer.Advance(cycles)
	irq = s.GPU.Advance(cycles)
	return cycles, irq
}
