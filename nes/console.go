package nes

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// Console wires every device onto a shared Bus and drives the CPU clock
// that, in turn, ticks the PPU and APU in lockstep. It is the one type a
// frontend (cmd/vnes2, a test harness) needs to touch.
type Console struct {
	Cartridge *Cartridge

	ram   *RAM
	cpu   *CPU
	apu   *APU
	ppu   *PPU
	ctrl1 *Controller
	ctrl2 *Controller

	bus *Bus
}

// NewConsole assembles RAM, CPU, PPU, APU and both controller ports onto a
// Bus. debugOut, when non-nil, receives a disassembly trace line per
// instruction executed (see cpu.go's execute/disassemble).
func NewConsole(debugOut io.Writer) *Console {
	ram := NewRAM()
	ctrl1 := &Controller{}
	ctrl2 := &Controller{}

	ppu := &PPU{}
	ppu.Init()
	apu := NewAPU()
	cpu := NewCPU(debugOut, ppu, apu)

	bus := &Bus{
		RAM:   ram,
		CPU:   cpu,
		APU:   apu,
		PPU:   ppu,
		Ctrl1: ctrl1,
		Ctrl2: ctrl2,
	}
	cpu.AttachBus(bus)

	return &Console{
		ram:   ram,
		cpu:   cpu,
		apu:   apu,
		ppu:   ppu,
		ctrl1: ctrl1,
		ctrl2: ctrl2,
		bus:   bus,
	}
}

// Empty reports whether a cartridge has been loaded yet.
func (c *Console) Empty() bool {
	return c.Cartridge == nil
}

// Load powers the cartridge in and runs the CPU's reset sequence against
// it. Loading a second cartridge resets the rest of the console too.
func (c *Console) Load(cart *Cartridge) error {
	if cart == nil {
		return errors.New("nes: nil cartridge")
	}

	first := c.Cartridge == nil
	c.Cartridge = cart
	c.bus.Cartridge = cart
	c.ppu.Cartridge = cart

	if first {
		c.cpu.init(c.bus)
		return nil
	}

	c.Reset()
	return nil
}

func (c *Console) Reset() {
	c.cpu.reset(c.bus)
	c.apu.Reset()
}

// Step drives the console forward by the given number of PPU frames, with
// both controllers' buttons held at the given bitmasks (bit N is the
// Button constant of value N — A is bit 0, Right is bit 7) for the whole
// span. It reports whether the CPU ends up halted (KIL/JAM).
func (c *Console) Step(buttons1, buttons2 byte, frames int) (frozen bool) {
	if c.Empty() {
		return false
	}

	c.ctrl1.SetAll(buttons1)
	c.ctrl2.SetAll(buttons2)

	for i := 0; i < frames; i++ {
		frame := c.ppu.Frame
		for frame == c.ppu.Frame && !c.cpu.Frozen() {
			c.cpu.execute(c.bus)
		}
		if c.cpu.Frozen() {
			return true
		}
	}

	return false
}

// Buffer returns the RGBA framebuffer for the most recently rendered frame.
func (c *Console) Buffer() []byte {
	return c.ppu.buffer.Pix
}

// DrawNametables renders the four nametables into buf, a 512x480 RGBA pixel
// buffer (4 bytes per pixel).
func (c *Console) DrawNametables(buf []byte) {
	c.ppu.DrawNametables(&image.RGBA{Pix: buf, Stride: 512 * 4, Rect: image.Rect(0, 0, 512, 480)})
}

// DrawPatternTables renders both pattern tables side by side into buf, a
// 256x128 RGBA pixel buffer (4 bytes per pixel). The palette argument is not
// used; pixels are colored through palette entries 0-3.
func (c *Console) DrawPatternTables(buf []byte, palette byte) {
	c.ppu.DrawPatternTables(&image.RGBA{Pix: buf, Stride: 256 * 4, Rect: image.Rect(0, 0, 256, 128)})
}

func (c *Console) Read(addr uint16) byte {
	return c.bus.Read(addr)
}

func (c *Console) Write(addr uint16, v byte) {
	c.bus.Write(addr, v)
}

func (c *Console) Frozen() bool {
	return c.cpu.Frozen()
}

// SaveState serializes RAM, CPU, PPU, APU, both controllers' latches, the
// cartridge/mapper state and the CPU bus's open-bus latch into a flat byte
// walk, in the fixed order LoadState expects back.
func (c *Console) SaveState() []byte {
	s := newStateEncoder()
	c.ram.encodeState(s)
	c.cpu.encodeState(s)
	c.ppu.encodeState(s)
	c.apu.encodeState(s)
	c.ctrl1.encodeState(s)
	c.ctrl2.encodeState(s)
	if c.Cartridge != nil {
		c.Cartridge.encodeState(s)
	}
	s.putByte(c.bus.openBus)
	return s.bytes()
}

// SaveStateSize reports the byte length SaveState will produce for the
// console's current cartridge.
func (c *Console) SaveStateSize() int {
	return len(c.SaveState())
}

// LoadState restores a snapshot produced by SaveState. The cartridge must
// already be loaded; only its banking/RAM state is restored, not its
// identity.
func (c *Console) LoadState(data []byte) error {
	if len(data) != c.SaveStateSize() {
		return fmt.Errorf("nes: save state is %d bytes, want %d", len(data), c.SaveStateSize())
	}

	s := newStateDecoder(data)
	c.ram.decodeState(s)
	c.cpu.decodeState(s)
	c.ppu.decodeState(s)
	c.apu.decodeState(s)
	c.ctrl1.decodeState(s)
	c.ctrl2.decodeState(s)
	if c.Cartridge != nil {
		c.Cartridge.decodeState(s)
	}
	c.bus.openBus = s.getByte()
	return nil
}
