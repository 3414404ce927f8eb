package nes

import (
	"io"
)

const cpuFreq float64 = 1789773

// The three level-triggered sources that feed the CPU's single IRQ line,
// ORed together: the APU frame sequencer, the DMC channel, and whichever
// mapper drives a scanline IRQ (MMC3).
const (
	irqFrame byte = 1 << iota
	irqDelta
	irqMapper
)

const (
	nmiAddr    = uint16(0xFFFA)
	resetAddr  = uint16(0xFFFC)
	irqBrkAddr = uint16(0xFFFE)

	stackHi = 0x0100
)

// status are all the flags that represent the processor status.
type status byte

const (
	// Carry flag.
	//
	// After ADC, this is the carry result of the addition.
	// After SBC or CMP, this flag will be set if no borrow was the result, or
	// alternatively a "greater than or equal" result.
	// After a shift instruction (ASL, LSR, ROL, ROR), this contains the bit
	// that was shifted out.
	//
	// Increment and decrement instructions do not affect the carry flag.
	// Can be set or cleared directly with SEC, CLC.
	carry status = 1 << iota

	// Zero flag is set when the result of an instruction is zero.
	zero

	// InterruptDisable flag.
	//
	// When set, all interrupts except the NMI are inhibited.
	// Can be set or cleared directly with SEI, CLI.
	// Automatically set by the cpu when an IRQ is triggered, and restored
	// to its previous state by RTI.
	//
	// If the /IRQ line is low (IRQ pending) when this flag is cleared, an
	// interrupt will immediately be triggered.
	interruptDisable

	// Decimal flag. On the NES, this flag has no effect.
	decimal

	// Break flag.
	//
	// While there are only six flags in the processor status register within
	// the cpu, when transferred to the stack, there are two additional bits.
	//
	// These do not represent a register that can hold a value but can be used
	// to distinguish how the flags were pushed.
	//
	// Some 6502 references call this the "B flag", though it does not represent
	// an actual cpu register.
	//
	// Two interrupts (/IRQ and /NMI) and two instructions (PHP and BRK) push
	// the flags to the stack.
	//
	// In the byte pushed, Break is 1 if from an instruction (PHP or BRK) or 0
	// if from an interrupt line being pulled low (/IRQ or /NMI).
	//
	// Two instructions (PLP and RTI) pull a byte from the stack and set all the
	// flags. They ignore Unused and Break.
	//
	// The only way for an IRQ handler to distinguish /IRQ from BRK is to read
	// the flags byte from the stack and test Break.
	brk

	// Unused flag.
	unused

	// Overflow flag.
	//
	// ADC, SBC, and CMP will set this flag if the signed result would be
	// invalid http://www.6502.org/tutorials/vflag.html, necessary for making
	// signed comparisons http://www.6502.org/tutorials/compare_beyond.html#5.
	//
	// BIT will load bit 6 of the addressed value directly into the V flag.
	// Can be cleared directly with CLV.
	// There is no corresponding set instruction.
	overflow

	// Negative flag.
	//
	// After most instructions that have a value result, this flag will contain
	// bit 7 of that result.
	// BIT will load bit 7 of the addressed value directly into the N flag.
	negative
)

type CPU struct {
	cycles uint64

	// A, along with the arithmetic logic unit (ALU), supports using the status
	// register for carrying, overflow detection, and so on.
	a byte

	// X and Y are used for several addressing modes. They can be used as loop
	// counters easily, using INC/DEC and branch instructions.
	//
	// Not being the accumulator, they have limited addressing modes themselves
	// when loading and saving.
	x, y byte

	// The program counter PC supports 65536 direct (unbanked) memory locations,
	// however not all values are sent to the cartridge.
	//
	// It can be accessed either by allowing cpu's internal fetch logic
	// increment the address bus, an interrupt (NMI, Reset, IRQ/BRQ), and using
	// the RTS/JMP/JSR/Branch instructions.
	pc uint16

	// The Stack Pointer can be accessed using interrupts, pulls, pushes, and
	// transfers.
	s byte

	// The Status Register has 6 bits used by the ALU but is byte-wide.
	// PHP, PLP, arithmetic, testing, and branch instructions can access this
	// register.
	//
	// See Status for more info.
	p status

	debug  io.Writer
	halted bool

	// Two-phase interrupt model (see poll()). nmiLine/prevNMILine edge-
	// detect the PPU's /NMI output; irqLines is the OR of the three level
	// IRQ sources. should* are armed every poll(); delay* are should*'s
	// value from the *previous* poll, so an interrupt taken at the next
	// instruction boundary is always the one that was already pending
	// before the final cycle of the instruction that just completed.
	nmiLine     bool
	prevNMILine bool
	irqLines    byte
	shouldIRQ   bool
	shouldNMI   bool
	delayIRQ    bool
	delayNMI    bool

	ppu *PPU
	apu *APU

	// bus lets the DMC channel fetch sample bytes directly from CPU
	// address space without threading a *Bus through every APU clock call,
	// and lets poll() sample the mapper's IRQ line.
	bus *Bus

	// cycleIsRead records whether the bus cycle currently in flight is a
	// read or a write; the DMC channel falls back to it when delayDMA is
	// unset to decide whether its fetch steals 3 or 4 cycles.
	cycleIsRead bool

	// delayDMA is the OAM DMA engine's current cycle-alignment state,
	// shared with the DMC fetch because both units steal the same bus:
	// 0 means "unset" (DMC computes its own 3-or-4 from cycleIsRead), and
	// any other value is used directly as the steal-cycle count.
	delayDMA byte
}

// AttachBus completes the CPU<->Bus wiring once both have been constructed.
func (c *CPU) AttachBus(bus *Bus) { c.bus = bus }

// Frozen reports whether a KIL/JAM opcode has locked the CPU up. Only a
// reset clears it.
func (c *CPU) Frozen() bool { return c.halted }

func NewCPU(debug io.Writer, ppu *PPU, apu *APU) *CPU {
	return &CPU{
		debug:   debug,
		p:       interruptDisable | unused,
		s:       0xFD,
		pc:      resetAddr,
		ppu:     ppu,
		apu:     apu,
	}
}

func (c *CPU) init(bus *Bus) {
	for i := 0; i < 8; i++ {
		c.clock()
	}
	c.pc = c.readAddress(bus, resetAddr)
}

func (c *CPU) encodeState(s *stateBuffer) {
	s.putUint16(c.pc)
	s.putByte(c.a)
	s.putByte(c.x)
	s.putByte(c.y)
	s.putByte(c.s)
	s.putByte(byte(c.p))
	s.putBool(c.halted)
	s.putUint32(uint32(c.cycles))
	s.putBool(c.nmiLine)
	s.putBool(c.prevNMILine)
	s.putByte(c.irqLines)
	s.putBool(c.shouldIRQ)
	s.putBool(c.shouldNMI)
	s.putBool(c.delayIRQ)
	s.putBool(c.delayNMI)
}

func (c *CPU) decodeState(s *stateBuffer) {
	c.pc = s.getUint16()
	c.a = s.getByte()
	c.x = s.getByte()
	c.y = s.getByte()
	c.s = s.getByte()
	c.p = status(s.getByte())
	c.halted = s.getBool()
	c.cycles = uint64(s.getUint32())
	c.nmiLine = s.getBool()
	c.prevNMILine = s.getBool()
	c.irqLines = s.getByte()
	c.shouldIRQ = s.getBool()
	c.shouldNMI = s.getBool()
	c.delayIRQ = s.getBool()
	c.delayNMI = s.getBool()
}

func (c *CPU) setPC(pc uint16) {
	c.pc = pc
}

func (c *CPU) reset(bus *Bus) {
	c.p |= interruptDisable
	c.s -= 3
	c.halted = false

	c.nmiLine = false
	c.prevNMILine = false
	c.irqLines = 0
	c.shouldIRQ = false
	c.shouldNMI = false
	c.delayIRQ = false
	c.delayNMI = false

	for i := 0; i < 8; i++ {
		c.clock()
	}
	c.pc = c.readAddress(bus, resetAddr)
}

// SetNMILine sets the current level of the CPU's /NMI input. The CPU edge-
// detects this itself in poll(); the PPU calls this every tick with VBlank
// ANDed against PPUCTRL's enable-NMI bit, so toggling either one while the
// other is already asserted re-arms should_nmi (the documented
// $2000-write-during-VBlank quirk), not just the (241,1) transition.
func (c *CPU) SetNMILine(level bool) {
	c.nmiLine = level
}

// SetIRQLine asserts or deasserts one of the three level-triggered IRQ
// sources independently of the others; the CPU's IRQ input is the logical
// OR of whichever sources are currently asserted.
func (c *CPU) SetIRQLine(source byte, asserted bool) {
	if asserted {
		c.irqLines |= source
	} else {
		c.irqLines &^= source
	}
}

// poll runs at the end of every bus cycle (see clock()), which is also
// what makes it run during the extra cycles a taken branch spends. It
// copies the current armed state into the one-cycle delay latches
// execute() acts on, edge-detects the NMI line, and arms should_irq
// whenever I=0 and at least one IRQ source is asserted. Because the extra
// branch cycles call this too, a branch taken in the same cycle an
// interrupt would otherwise latch can overwrite delay_irq/delay_nmi with a
// fresher value before execute() ever looks at them — which is exactly the
// documented branch/IRQ-deferral interaction, with no special-casing
// needed in branch() itself.
func (c *CPU) poll() {
	c.delayIRQ = c.shouldIRQ
	c.delayNMI = c.shouldNMI

	if c.nmiLine && !c.prevNMILine {
		c.shouldNMI = true
	}
	c.prevNMILine = c.nmiLine

	if c.bus != nil && c.bus.Cartridge != nil {
		c.SetIRQLine(irqMapper, c.bus.Cartridge.irq())
	}

	c.shouldIRQ = c.p&interruptDisable == 0 && c.irqLines != 0
}

func (c *CPU) execute(bus *Bus) uint64 {
	oldCycles := c.cycles

	if c.halted {
		c.clock()
		return c.cycles - oldCycles
	}

	if c.delayNMI || c.delayIRQ {
		c.serviceInterrupt(bus)
	}

	initialPc := c.pc

	opCode := c.read(bus, c.pc)
	c.pc++

	inst := instructions[opCode]
	intermediateAddr, addr := c.resolveAddress(bus, inst)

	if c.debug != nil {
		disassemble(c.debug, bus, initialPc, c.a, c.x, c.y, byte(c.p), c.s, inst, intermediateAddr, addr, oldCycles, c.ppu)
	}

	switch opCode {
	case 0x04, 0x0C, 0x14, 0x1A, 0x1C, 0x34, 0x3A, 0x3C, 0x44, 0x54, 0x5A,
		0x5C, 0x64, 0x74, 0x7A, 0x7C, 0x80, 0x82, 0x89, 0xC2, 0xD4, 0xDA,
		0xDC, 0xE2, 0xEA, 0xF4, 0xFA, 0xFC:
		c.nop(bus, inst.Mode, addr)
	case 0x61, 0x65, 0x69, 0x6D, 0x71, 0x75, 0x79, 0x7D:
		c.adc(bus, inst.Mode, addr)
	case 0x93, 0x9F:
		c.ahx(bus, inst.Mode, addr)
	case 0x4B:
		c.alr(bus, inst.Mode, addr)
	case 0x0B, 0x2B:
		c.anc(bus, inst.Mode, addr)
	case 0x21, 0x25, 0x29, 0x2D, 0x31, 0x35, 0x39, 0x3D:
		c.and(bus, inst.Mode, addr)
	case 0x6B:
		c.arr(bus, inst.Mode, addr)
	case 0x06, 0x0A, 0x0E, 0x16, 0x1E:
		c.asl(bus, inst.Mode, addr)
	case 0xCB:
		c.axs(bus, inst.Mode, addr)
	case 0x90:
		c.bcc(bus, inst.Mode, addr)
	case 0xB0:
		c.bcs(bus, inst.Mode, addr)
	case 0xF0:
		c.beq(bus, inst.Mode, addr)
	case 0x24, 0x2C:
		c.bit(bus, inst.Mode, addr)
	case 0x30:
		c.bmi(bus, inst.Mode, addr)
	case 0xD0:
		c.bne(bus, inst.Mode, addr)
	case 0x10:
		c.bpl(bus, inst.Mode, addr)
	case 0x00:
		c.brk(bus, inst.Mode, addr)
	case 0x50:
		c.bvc(bus, inst.Mode, addr)
	case 0x70:
		c.bvs(bus, inst.Mode, addr)
	case 0x18:
		c.clc(bus, inst.Mode, addr)
	case 0xD8:
		c.cld(bus, inst.Mode, addr)
	case 0x58:
		c.cli(bus, inst.Mode, addr)
	case 0xB8:
		c.clv(bus, inst.Mode, addr)
	case 0xC1, 0xC5, 0xC9, 0xCD, 0xD1, 0xD5, 0xD9, 0xDD:
		c.cmp(bus, inst.Mode, addr)
	case 0xE0, 0xE4, 0xEC:
		c.cpx(bus, inst.Mode, addr)
	case 0xC0, 0xC4, 0xCC:
		c.cpy(bus, inst.Mode, addr)
	case 0xC3, 0xC7, 0xCF, 0xD3, 0xD7, 0xDB, 0xDF:
		c.dcp(bus, inst.Mode, addr)
	case 0xC6, 0xCE, 0xD6, 0xDE:
		c.dec(bus, inst.Mode, addr)
	case 0xCA:
		c.dex(bus, inst.Mode, addr)
	case 0x88:
		c.dey(bus, inst.Mode, addr)
	case 0x41, 0x45, 0x49, 0x4D, 0x51, 0x55, 0x59, 0x5D:
		c.eor(bus, inst.Mode, addr)
	case 0xE6, 0xEE, 0xF6, 0xFE:
		c.inc(bus, inst.Mode, addr)
	case 0xE8:
		c.inx(bus, inst.Mode, addr)
	case 0xC8:
		c.iny(bus, inst.Mode, addr)
	case 0xE3, 0xE7, 0xEF, 0xF3, 0xF7, 0xFB, 0xFF:
		c.isc(bus, inst.Mode, addr)
	case 0x4C, 0x6C:
		c.jmp(bus, inst.Mode, addr)
	case 0x20:
		c.jsr(bus, inst.Mode, addr)
	case 0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2:
		c.kil(bus, inst.Mode, addr)
	case 0xBB:
		c.las(bus, inst.Mode, addr)
	case 0xA3, 0xA7, 0xAB, 0xAF, 0xB3, 0xB7, 0xBF:
		c.lax(bus, inst.Mode, addr)
	case 0xA1, 0xA5, 0xA9, 0xAD, 0xB1, 0xB5, 0xB9, 0xBD:
		c.lda(bus, inst.Mode, addr)
	case 0xA2, 0xA6, 0xAE, 0xB6, 0xBE:
		c.ldx(bus, inst.Mode, addr)
	case 0xA0, 0xA4, 0xAC, 0xB4, 0xBC:
		c.ldy(bus, inst.Mode, addr)
	case 0x46, 0x4A, 0x4E, 0x56, 0x5E:
		c.lsr(bus, inst.Mode, addr)
	case 0x01, 0x05, 0x09, 0x0D, 0x11, 0x15, 0x19, 0x1D:
		c.ora(bus, inst.Mode, addr)
	case 0x48:
		c.pha(bus, inst.Mode, addr)
	case 0x08:
		c.php(bus, inst.Mode, addr)
	case 0x68:
		c.pla(bus, inst.Mode, addr)
	case 0x28:
		c.plp(bus, inst.Mode, addr)
	case 0x23, 0x27, 0x2F, 0x33, 0x37, 0x3B, 0x3F:
		c.rla(bus, inst.Mode, addr)
	case 0x26, 0x2A, 0x2E, 0x36, 0x3E:
		c.rol(bus, inst.Mode, addr)
	case 0x66, 0x6A, 0x6E, 0x76, 0x7E:
		c.ror(bus, inst.Mode, addr)
	case 0x63, 0x67, 0x6F, 0x73, 0x77, 0x7B, 0x7F:
		c.rra(bus, inst.Mode, addr)
	case 0x40:
		c.rti(bus, inst.Mode, addr)
	case 0x60:
		c.rts(bus, inst.Mode, addr)
	case 0x83, 0x87, 0x8F, 0x97:
		c.sax(bus, inst.Mode, addr)
	case 0xE1, 0xE5, 0xE9, 0xEB, 0xED, 0xF1, 0xF5, 0xF9, 0xFD:
		c.sbc(bus, inst.Mode, addr)
	case 0x38:
		c.sec(bus, inst.Mode, addr)
	case 0xF8:
		c.sed(bus, inst.Mode, addr)
	case 0x78:
		c.sei(bus, inst.Mode, addr)
	case 0x9E:
		c.shx(bus, inst.Mode, addr)
	case 0x9C:
		c.shy(bus, inst.Mode, addr)
	case 0x03, 0x07, 0x0F, 0x13, 0x17, 0x1B, 0x1F:
		c.slo(bus, inst.Mode, addr)
	case 0x43, 0x47, 0x4F, 0x53, 0x57, 0x5B, 0x5F:
		c.sre(bus, inst.Mode, addr)
	case 0x81, 0x85, 0x8D, 0x91, 0x95, 0x99, 0x9D:
		c.sta(bus, inst.Mode, addr)
	case 0x86, 0x8E, 0x96:
		c.stx(bus, inst.Mode, addr)
	case 0x84, 0x8C, 0x94:
		c.sty(bus, inst.Mode, addr)
	case 0x9B:
		c.tas(bus, inst.Mode, addr)
	case 0xAA:
		c.tax(bus, inst.Mode, addr)
	case 0xA8:
		c.tay(bus, inst.Mode, addr)
	case 0xBA:
		c.tsx(bus, inst.Mode, addr)
	case 0x8A:
		c.txa(bus, inst.Mode, addr)
	case 0x9A:
		c.txs(bus, inst.Mode, addr)
	case 0x98:
		c.tya(bus, inst.Mode, addr)
	case 0x8B:
		c.xaa(bus, inst.Mode, addr)
	}

	return c.cycles - oldCycles
}

func (c *CPU) clock() {
	c.cycles++
	c.ppu.Tick(c)
	c.ppu.Tick(c)
	c.ppu.Tick(c)
	c.apu.Clock(c)
	c.poll()
}

func (c *CPU) read(bus *Bus, address uint16) byte {
	c.cycleIsRead = true
	c.clock()
	v := bus.Read(address)
	return v
}

func (c *CPU) readAddress(bus *Bus, address uint16) uint16 {
	c.cycleIsRead = true
	c.clock()
	lo := bus.Read(address)
	c.clock()
	hi := bus.Read(address + 1)

	addr := uint16(hi)<<8 | uint16(lo)

	return addr
}

func (c *CPU) write(bus *Bus, address uint16, value byte) {
	if address == OAMDMA {
		c.dmaTransfer(bus, value)
		return
	}

	c.cycleIsRead = false
	c.clock()
	bus.Write(address, value)
}

// dmaTransfer copies 256 bytes starting at page*0x100 into OAM, one byte per
// PPU.writeDMA call. Real hardware halts the CPU for 513 cycles (a dummy get
// cycle plus 256 alternating read/write cycles), or 514 if the halt begins
// on an odd CPU cycle, since the DMA unit must first align to an even cycle
// before it can start reading. delayDMA shares the DMA engine's alignment
// state with the DMC fetch (see dmc.stealCycles): it sits at 2 for the bulk
// of the transfer, dips to 1 then 3 around the last two bytes, and ends at
// 0, reproducing the known boundary-cycle stretch at indices 254/255.
func (c *CPU) dmaTransfer(bus *Bus, page byte) {
	c.delayDMA = 2

	c.cycleIsRead = true
	if c.cycles&1 == 1 {
		c.clock()
	}
	c.clock()

	addr := uint16(page) << 8
	for i := 0; i < 256; i++ {
		c.cycleIsRead = true
		c.clock()
		v := bus.Read(addr)
		addr++

		c.cycleIsRead = false
		c.clock()

		switch i {
		case 254:
			c.delayDMA = 1
			c.ppu.writeDMA(v)
			c.delayDMA = 2
		case 255:
			c.delayDMA = 3
			c.ppu.writeDMA(v)
			c.delayDMA = 0
		default:
			c.ppu.writeDMA(v)
		}
	}
}

func (c *CPU) resolveAddress(bus *Bus, inst Instruction) (intermediateAddr, address uint16) {
	switch inst.Mode {
	case Accumulator:
		_ = c.read(bus, c.pc)
		return 0, 0

	case Implied:
		_ = c.read(bus, c.pc)
		return 0, 0

	case Immediate:
		pc := c.pc
		c.pc++
		return 0, pc

	case Absolute:
		lo := c.read(bus, c.pc)
		c.pc++

		hi := c.read(bus, c.pc)
		c.pc++

		return 0, uint16(hi)<<8 | uint16(lo)

	case ZeroPage:
		addr := c.read(bus, c.pc)
		c.pc++

		return 0, uint16(addr)

	case ZeroPageIndexedX:
		addr := c.read(bus, c.pc)
		c.pc++

		_ = c.read(bus, uint16(addr)) + c.x

		return 0, uint16(addr + c.x) //let it overflow

	case ZeroPageIndexedY:
		addr := c.read(bus, c.pc)
		c.pc++

		_ = c.read(bus, uint16(addr)) + c.y

		return 0, uint16(addr + c.y) //let it overflow

	case IndexedX:
		switch inst.Kind {
		case Read:
			lo := c.read(bus, c.pc)
			c.pc++

			hi := c.read(bus, c.pc)
			c.pc++

			if (lo + c.x) < lo {
				_ = c.read(bus, uint16(hi)<<8|uint16(lo+c.x))
			}

			return 0, uint16(hi)<<8 | uint16(lo) + uint16(c.x)

		case ReadModWrite, Write:
			lo := c.read(bus, c.pc)
			c.pc++

			hi := c.read(bus, c.pc)
			c.pc++

			_ = c.read(bus, uint16(hi)<<8|uint16(lo+c.x))

			return 0, uint16(hi)<<8 | uint16(lo) + uint16(c.x)
		}

	case IndexedY:
		switch inst.Kind {
		case Read:
			lo := c.read(bus, c.pc)
			c.pc++

			hi := c.read(bus, c.pc)
			c.pc++

			if (lo + c.y) < lo {
				_ = c.read(bus, uint16(hi)<<8|uint16(lo+c.y))
			}

			return 0, uint16(hi)<<8 | uint16(lo) + uint16(c.y)

		case Write, ReadModWrite:
			lo := c.read(bus, c.pc)
			c.pc++

			hi := c.read(bus, c.pc)
			c.pc++

			addr := uint16(hi)<<8 | uint16(lo) + uint16(c.y)
			_ = c.read(bus, addr)

			return 0, addr
		}

	case Relative:
		operand := c.read(bus, c.pc)
		c.pc++

		return 0, c.pc + uint16(int8(operand))

	case PreIndexedIndirect:
		pointer := c.read(bus, c.pc)
		c.pc++

		_ = c.read(bus, uint16(pointer)) + c.x

		pointer = pointer + c.x // let it overflow
		lo := c.read(bus, uint16(pointer))
		hi := c.read(bus, uint16(pointer+1)) // let it overflow

		return uint16(pointer), uint16(hi)<<8 | uint16(lo)

	case PostIndexedIndirect:
		switch inst.Kind {
		case Read:
			pointer := c.read(bus, c.pc)
			c.pc++

			lo := c.read(bus, uint16(pointer))
			hi := c.read(bus, uint16(pointer+1))

			if (lo + c.y) < lo {
				_ = c.read(bus, uint16(hi)<<8|uint16(lo+c.y))
			}

			addr := uint16(hi)<<8 | uint16(lo)
			return addr, addr + uint16(c.y)

		case Write, ReadModWrite:
			pointer := c.read(bus, c.pc)
			c.pc++

			lo := c.read(bus, uint16(pointer))
			hi := c.read(bus, uint16(pointer+1))

			_ = c.read(bus, uint16(hi)<<8|uint16(lo+c.y))

			addr := uint16(hi)<<8 | uint16(lo)
			return addr, addr + uint16(c.y)
		}

	case Indirect:
		pointerlo := c.read(bus, c.pc)
		c.pc++

		pointerhi := c.read(bus, c.pc)
		c.pc++

		pointer := uint16(pointerhi)<<8 | uint16(pointerlo)
		lo := c.read(bus, pointer)
		hi := c.read(bus, pointer&0xFF00|uint16(byte(pointer)+1))

		return pointer, uint16(hi)<<8 | uint16(lo)
	}

	return 0, 0
}

// serviceInterrupt runs the shared 7-cycle NMI/IRQ sequence: two dummy
// reads of PC, push PC high then low, push status (B clear, U set), set I,
// then fetch the vector. NMI wins when both are pending at once, and
// clears its own armed flag; an IRQ that loses the race is not taken
// afterwards, because I is now set and poll() keeps IRQs disarmed until
// the handler clears I again.
func (c *CPU) serviceInterrupt(bus *Bus) {
	nmi := c.delayNMI

	c.read(bus, c.pc)
	c.read(bus, c.pc)

	c.pushAddress(bus, c.pc)
	c.push(bus, byte(c.p&^brk|unused))

	c.p |= interruptDisable

	vector := irqBrkAddr
	if nmi {
		vector = nmiAddr
		c.shouldNMI = false
	}
	c.pc = c.readAddress(bus, vector)
}

func (c *CPU) push(bus *Bus, v byte) {
	stackLo := uint16(c.s)
	c.write(bus, stackHi|stackLo, v)
	c.s--
}

func (c *CPU) pull(bus *Bus) byte {
	c.s++
	stackLo := uint16(c.s)
	return c.read(bus, stackHi|stackLo)
}

func (c *CPU) pushAddress(bus *Bus, value uint16) {
	hi := byte(value >> 8)
	lo := byte(value & 0xFF)

	c.push(bus, hi)
	c.push(bus, lo)
}

func (c *CPU) pullAddress(bus *Bus) uint16 {
	lo := uint16(c.pull(bus))
	hi := uint16(c.pull(bus))

	return hi<<8 | lo
}

func (c *CPU) updateZero(v byte) {
	if v == 0 {
		c.p |= zero
	} else {
		c.p &^= zero
	}
}

func (c *CPU) updateNegative(v byte) {
	if v&0x80 > 0 {
		c.p |= negative
	} else {
		c.p &^= negative
	}
}

func (c *CPU) compare(a, b byte) {
	if a >= b {
		c.p |= carry
	} else {
		c.p &^= carry
	}

	if a == b {
		c.p |= zero
	} else {
		c.p &^= zero
	}
	c.updateNegative(a - b)
}

func (c *CPU) doDec(v byte) byte {
	r := v - 1
	c.updateZero(r)
	c.updateNegative(r)
	return r
}

func (c *CPU) doInc(v byte) byte {
	r := v + 1
	c.updateZero(r)
	c.updateNegative(r)
	return r
}

func (c *CPU) doAdd(v byte) {
	a := uint16(c.a)
	b := uint16(v)
	crry := uint16(c.p & carry)

	result := a + b + crry

	if result&0x0100 > 0 {
		c.p |= carry
	} else {
		c.p &^= carry
	}

	if a&0x80 == b&0x80 && a&0x80 != result&0x80 {
		c.p |= overflow
	} else {
		c.p &^= overflow
	}

	c.a = byte(result)
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

func (c *CPU) doAsl(v byte) byte {
	if v&0x80 > 0 {
		c.p |= carry
	} else {
		c.p &^= carry
	}
	v = v << 1
	c.updateZero(v)
	c.updateNegative(v)
	return v
}

func (c *CPU) doRol(v byte) byte {
	var carries bool
	if v&0x80 > 0 {
		carries = true
	}
	v = v << 1
	v |= byte(c.p & carry)

	if carries {
		c.p |= carry
	} else {
		c.p &^= carry
	}
	c.updateZero(v)
	c.updateNegative(v)

	return v
}

func (c *CPU) doLsr(v byte) byte {
	if v&1 > 0 {
		c.p |= carry
	} else {
		c.p &^= carry
	}
	v = v >> 1
	c.updateZero(v)
	c.updateNegative(v)
	return v
}

func (c *CPU) doRor(v byte) byte {
	var carries bool
	if v&1 > 0 {
		carries = true
	}

	v = v >> 1
	if c.p&carry > 0 {
		v |= 0x80
	}

	if carries {
		c.p |= carry
	} else {
		c.p &^= carry
	}
	c.updateZero(v)
	c.updateNegative(v)

	return v
}

func (c *CPU) branch(addr uint16) {
	if c.pc&0xFF00 != addr&0xFF00 {
		c.clock()
	}

	c.clock()
	c.pc = addr
}

// BRK - Force Interrupt
//
// The BRK instruction forces the generation of an interrupt request.
// The program counter and processor status are pushed on the stack then the
// IRQ interrupt vector at $FFFE/F is loaded into the PC and the break flag in
// the status set to one.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Set to 1
// D	Decimal Mode Flag	Not affected
// B	Break Command		Set to 1
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) brk(bus *Bus, mode AddressingMode, addr uint16) {
	c.pushAddress(bus, c.pc+1)

	status := c.p
	status |= unused
	status |= brk
	c.push(bus, byte(status))
	c.p |= interruptDisable

	c.pc = c.readAddress(bus, irqBrkAddr)
}

// NOP - No Operation
//
// The NOP instruction causes no changes to the processor other than the normal
// incrementing of the program counter to the next instruction.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) nop(bus *Bus, mode AddressingMode, addr uint16) {
	if mode != Implied {
		c.read(bus, addr)
	}
}

// SEC - Set Carry Flag
// C = 1
//
// Set the carry flag to one.
//
// Processor Status after use:
// C	Carry Flag			Set to 1
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) sec(bus *Bus, mode AddressingMode, addr uint16) {
	c.p |= carry
}

// CLC - Clear Carry Flag
// C = 0
//
// Set the carry flag to zero.
//
// Processor Status after use:
// C	Carry Flag			Set to 0
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) clc(bus *Bus, mode AddressingMode, addr uint16) {
	c.p &^= carry
}

// SED - Set Decimal Flag
// D = 1
//
// Set the decimal mode flag to one.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Set to 1
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) sed(bus *Bus, mode AddressingMode, addr uint16) {
	c.p |= decimal
}

// CLD - Clear Decimal Mode
// D = 0
//
// Sets the decimal mode flag to zero.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Set to 0
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) cld(bus *Bus, mode AddressingMode, addr uint16) {
	c.p &^= decimal
}

// SEI - Set Interrupt Disable
// I = 1
//
// Set the interrupt disable flag to one.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Set to 1
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) sei(bus *Bus, mode AddressingMode, addr uint16) {
	c.p |= interruptDisable
}

// CLI - Clear Interrupt Disable
// I = 0
//
// Clears the interrupt disable flag allowing normal interrupt requests to be serviced.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Set to 0
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) cli(bus *Bus, mode AddressingMode, addr uint16) {
	c.p &^= interruptDisable
}

// CLV - Clear Overflow Flag
// V = 0
//
// Clears the overflow flag.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Set to 0
// N	Negative Flag		Not affected
func (c *CPU) clv(bus *Bus, mode AddressingMode, addr uint16) {
	c.p &^= overflow
}

// STA - Store Accumulator
// M = A
//
// Stores the contents of the accumulator into memory.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) sta(bus *Bus, mode AddressingMode, addr uint16) {
	c.write(bus, addr, c.a)
}

// STX - Store X Register
// M = X
//
// Stores the contents of the X register into memory.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) stx(bus *Bus, mode AddressingMode, addr uint16) {
	c.write(bus, addr, c.x)
}

// STY - Store Y Register
// M = Y
//
// Stores the contents of the Y register into memory.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) sty(bus *Bus, mode AddressingMode, addr uint16) {
	c.write(bus, addr, c.y)
}

// LDA - Load Accumulator
// A,Z,N = M
//
// Loads a byte of memory into the accumulator setting the zero and negative
// flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of A is set
func (c *CPU) lda(bus *Bus, mode AddressingMode, addr uint16) {
	c.a = c.read(bus, addr)
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// LDX - Load X Register
// X,Z,N = M
//
// Loads a byte of memory into the X register setting the zero and negative
// flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if X = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of X is set
func (c *CPU) ldx(bus *Bus, mode AddressingMode, addr uint16) {
	c.x = c.read(bus, addr)
	c.updateZero(c.x)
	c.updateNegative(c.x)
}

// LDY - Load Y Register
// Y,Z,N = M
//
// Loads a byte of memory into the Y register setting the zero and negative
// flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if Y = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of Y is set
func (c *CPU) ldy(bus *Bus, mode AddressingMode, addr uint16) {
	c.y = c.read(bus, addr)
	c.updateZero(c.y)
	c.updateNegative(c.y)
}

// TAX - Transfer Accumulator to X
// X = A
//
// Copies the current contents of the accumulator into the X register and sets
// the zero and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if X = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of X is set
func (c *CPU) tax(bus *Bus, mode AddressingMode, addr uint16) {
	c.x = c.a
	c.updateZero(c.x)
	c.updateNegative(c.x)
}

// TAY - Transfer Accumulator to Y
// Y = A
//
// Copies the current contents of the accumulator into the Y register and sets
// the zero and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if Y = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of Y is set
func (c *CPU) tay(bus *Bus, mode AddressingMode, addr uint16) {
	c.y = c.a
	c.updateZero(c.y)
	c.updateNegative(c.y)
}

// TSX - Transfer Stack Pointer to X
// X = S
//
// Copies the current contents of the stack register into the X register and
// sets the zero and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if X = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of X is set
func (c *CPU) tsx(bus *Bus, mode AddressingMode, addr uint16) {
	c.x = c.s
	c.updateZero(c.x)
	c.updateNegative(c.x)
}

// TXA - Transfer X to Accumulator
// A = X
//
// Copies the current contents of the X register into the accumulator and sets
// the zero and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of A is set
func (c *CPU) txa(bus *Bus, mode AddressingMode, addr uint16) {
	c.a = c.x
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// TXS - Transfer X to Stack Pointer
// S = X
//
// Copies the current contents of the X register into the stack register.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) txs(bus *Bus, mode AddressingMode, addr uint16) {
	c.s = c.x
}

// TYA - Transfer Y to Accumulator
// A = Y
//
// Copies the current contents of the Y register into the accumulator and sets
// the zero and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of A is set
func (c *CPU) tya(bus *Bus, mode AddressingMode, addr uint16) {
	c.a = c.y
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// PHA - Push Accumulator
//
// Pushes a copy of the accumulator on to the stack.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) pha(bus *Bus, mode AddressingMode, addr uint16) {
	c.push(bus, c.a)
}

// PHP - Push Processor Status
//
// Pushes a copy of the status flags on to the stack.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) php(bus *Bus, mode AddressingMode, addr uint16) {
	status := c.p
	status |= brk
	status |= unused
	c.push(bus, byte(status))
}

// PLA - Pull Accumulator
//
// Pulls an 8 bit value from the stack and into the accumulator. The zero and
// negative flags are set as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of A is set
func (c *CPU) pla(bus *Bus, mode AddressingMode, addr uint16) {
	// TODO: this cycle should be spent in pull. read the docs
	c.clock()
	a := c.pull(bus)

	c.a = a
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// PLP - Pull Processor Status
//
// Pulls an 8 bit value from the stack and into the processor flags. The
// flags will take on new states as determined by the value pulled.
//
// Processor Status after use:
// C	Carry Flag	Set from stack
// Z	Zero Flag	Set from stack
// I	Interrupt Disable	Set from stack
// D	Decimal Mode Flag	Set from stack
// B	Break Command	Ignored (cleared)
// V	Overflow Flag	Set from stack
// N	Negative Flag	Set from stack
func (c *CPU) plp(bus *Bus, mode AddressingMode, addr uint16) {

	// TODO: this cycle should be spent in pull. read the docs
	c.clock()
	p := c.pull(bus)

	c.p = status(p)
	c.p &^= brk //TODO figure out if we can just turn it off instead of actually ignoring
	c.p |= unused
}

// DEC - Decrement Memory
// M,Z,N = M-1
//
// Subtracts one from the value held at a specified memory location setting the
// zero and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if result is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) dec(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)
	c.write(bus, addr, c.doDec(v))
}

// DEX - Decrement X Register
// X,Z,N = X-1
//
// Subtracts one from the X register setting the zero and negative flags as
// appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if X is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of X is set
func (c *CPU) dex(bus *Bus, mode AddressingMode, addr uint16) {
	c.x = c.doDec(c.x)
}

// DEY - Decrement Y Register
// Y,Z,N = Y-1
//
// Subtracts one from the Y register setting the zero and negative flags as
// appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if Y is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of Y is set
func (c *CPU) dey(bus *Bus, mode AddressingMode, addr uint16) {
	c.y = c.doDec(c.y)
}

// INC - Increment Memory
// M,Z,N = M+1
//
// Adds one to the value held at a specified memory location setting the zero
// and negative flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if result is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) inc(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)
	c.write(bus, addr, c.doInc(v))
}

// INX - Increment X Register
// X,Z,N = X+1
//
// Adds one to the X register setting the zero and negative flags as
// appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if X is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of X is set
func (c *CPU) inx(bus *Bus, mode AddressingMode, addr uint16) {
	c.x = c.doInc(c.x)
}

// INY - Increment Y Register
// Y,Z,N = Y+1
//
// Adds one to the Y register setting the zero and negative flags as
// appropriate.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if Y is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of Y is set
func (c *CPU) iny(bus *Bus, mode AddressingMode, addr uint16) {
	c.y = c.doInc(c.y)
}

// ADC - Add with Carry
// A,Z,C,N = A+M+C
//
// This instruction adds the contents of a memory location to the accumulator
// together with the carry bit. If overflow occurs the carry bit is set,
// this enables multiple byte addition to be performed.
//
// Processor Status after use:
// C	Carry Flag			Set if overflow in bit 7
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Set if sign bit is incorrect
// N	Negative Flag		Set if bit 7 set
func (c *CPU) adc(bus *Bus, mode AddressingMode, addr uint16) {
	c.doAdd(c.read(bus, addr))
}

// SBC - Subtract with Carry
// A,Z,C,N = A-M-(1-C)
//
// This instruction subtracts the contents of a memory location to the
// accumulator together with the not of the carry bit. If overflow occurs the
// carry bit is clear, this enables multiple byte subtraction to be performed.
//
// Processor Status after use:
// C	Carry Flag			Clear if overflow in bit 7
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Set if sign bit is incorrect
// N	Negative Flag		Set if bit 7 set
func (c *CPU) sbc(bus *Bus, mode AddressingMode, addr uint16) {
	c.doAdd(c.read(bus, addr) ^ 0xFF)
}

// ASL - Arithmetic Shift Left
// A,Z,C,N = M*2 or M,Z,C,N = M*2
//
// This operation shifts all the bits of the accumulator or memory contents one
// bit left. Bit 0 is set to 0 and bit 7 is placed in the carry flag. The effect
// of this operation is to multiply the memory contents by 2 (ignoring 2's
// complement considerations), setting the carry if the result will not fit in
// 8 bits.
//
// Processor Status after use:
// C	Carry Flag			Set to contents of old bit 7
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) asl(bus *Bus, mode AddressingMode, addr uint16) {
	if mode == Accumulator {
		c.a = c.doAsl(c.a)
		return
	}

	v := c.read(bus, addr)
	c.write(bus, addr, v)
	c.write(bus, addr, c.doAsl(v))
}

// AND - Logical AND
// A,Z,N = A&M
//
// A logical AND is performed, bit by bit, on the accumulator contents using
// the contents of a byte of memory.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 set
func (c *CPU) and(bus *Bus, mode AddressingMode, addr uint16) {
	c.a &= c.read(bus, addr)
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// EOR - Exclusive OR
// A,Z,N = A^M
//
// An exclusive OR is performed, bit by bit, on the accumulator contents using
// the contents of a byte of memory.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 set
func (c *CPU) eor(bus *Bus, mode AddressingMode, addr uint16) {
	c.a ^= c.read(bus, addr)
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// LSR - Logical Shift Right
// A,C,Z,N = A/2 or M,C,Z,N = M/2
//
// Each of the bits in A or M is shifted one place to the right. The bit that
// was in bit 0 is shifted into the carry flag. Bit 7 is set to zero.
//
// Processor Status after use:
// C	Carry Flag			Set to contents of old bit 0
// Z	Zero Flag			Set if result = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) lsr(bus *Bus, mode AddressingMode, addr uint16) {
	if mode == Accumulator {
		c.a = c.doLsr(c.a)
		return
	}

	v := c.read(bus, addr)
	c.write(bus, addr, v)
	c.write(bus, addr, c.doLsr(v))
}

// ROL - Rotate Left
//
// Move each of the bits in either A or M one place to the left. Bit 0 is filled
// with the current value of the carry flag whilst the old bit 7 becomes the new
// carry flag value.
//
// Processor Status after use:
// C	Carry Flag			Set to contents of old bit 7
// Z	Zero Flag			Set if result = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) rol(bus *Bus, mode AddressingMode, addr uint16) {
	if mode == Accumulator {
		c.a = c.doRol(c.a)
		return
	}

	v := c.read(bus, addr)
	c.write(bus, addr, v)
	c.write(bus, addr, c.doRol(v))
}

// ROR - Rotate Right
//
// Move each of the bits in either A or M one place to the right. Bit 7 is
// filled with the current value of the carry flag whilst the old bit 0 becomes
// the new carry flag value.
//
// Processor Status after use:
// C	Carry Flag			Set to contents of old bit 0
// Z	Zero Flag			Set if result = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) ror(bus *Bus, mode AddressingMode, addr uint16) {
	if mode == Accumulator {
		c.a = c.doRor(c.a)
		return
	}

	v := c.read(bus, addr)
	c.write(bus, addr, v)
	c.write(bus, addr, c.doRor(v))
}

// ORA - Logical Inclusive OR
// A,Z,N = A|M
//
// An inclusive OR is performed, bit by bit, on the accumulator contents using
// the contents of a byte of memory.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if A = 0
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 set
func (c *CPU) ora(bus *Bus, mode AddressingMode, addr uint16) {
	c.a |= c.read(bus, addr)
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// BIT - Bit Test
// A & M, N = M7, V = M6
//
// This instruction is used to test if one or more bits are set in a target
// memory location. The mask pattern in A is ANDed with the value in memory to
// set or clear the zero flag, but the result is not kept. Bits 7 and 6 of the
// value from memory are copied into the N and V flags.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Set if the result if the AND is zero
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Set to bit 6 of the memory value
// N	Negative Flag		Set to bit 7 of the memory value
func (c *CPU) bit(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)

	c.updateNegative(v)
	c.updateZero(c.a & v)

	if v&0x40 > 0 {
		c.p |= overflow
	} else {
		c.p &^= overflow
	}
}

// CMP - Compare
// Z,C,N = A-M
//
// This instruction compares the contents of the accumulator with another memory
// held value and sets the zero and carry flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Set if A >= M
// Z	Zero Flag			Set if A = M
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) cmp(bus *Bus, mode AddressingMode, addr uint16) {
	c.compare(c.a, c.read(bus, addr))
}

// CPX - Compare X Register
// Z,C,N = X-M
//
// This instruction compares the contents of the X register with another memory
// held value and sets the zero and carry flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Set if X >= M
// Z	Zero Flag			Set if X = M
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) cpx(bus *Bus, mode AddressingMode, addr uint16) {
	c.compare(c.x, c.read(bus, addr))
}

// CPY - Compare Y Register
// Z,C,N = Y-M
//
// This instruction compares the contents of the Y register with another memory
// held value and sets the zero and carry flags as appropriate.
//
// Processor Status after use:
// C	Carry Flag			Set if Y >= M
// Z	Zero Flag			Set if Y = M
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Set if bit 7 of the result is set
func (c *CPU) cpy(bus *Bus, mode AddressingMode, addr uint16) {
	c.compare(c.y, c.read(bus, addr))
}

// BCC - Branch if Carry Clear
//
// If the carry flag is clear then add the relative displacement to the program
// counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bcc(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&carry > 0 {
		return
	}

	c.branch(addr)
}

// BCS - Branch if Carry Set
//
// If the carry flag is set then add the relative displacement to the program
// counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bcs(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&carry == 0 {
		return
	}

	c.branch(addr)
}

// BVC - Branch if Overflow Clear
//
// If the overflow flag is clear then add the relative displacement to the
// program counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bvc(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&overflow > 0 {
		return
	}

	c.branch(addr)
}

// BVS - Branch if Overflow Set
//
// If the overflow flag is set then add the relative displacement to the
// program counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bvs(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&overflow == 0 {
		return
	}

	c.branch(addr)
}

// BEQ - Branch if Equal
//
// If the zero flag is set then add the relative displacement to the program
// counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) beq(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&zero == 0 {
		return
	}

	c.branch(addr)
}

// BNE - Branch if Not Equal
//
// If the zero flag is clear then add the relative displacement to the program
// counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bne(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&zero > 0 {
		return
	}

	c.branch(addr)
}

// BMI - Branch if Minus
//
// If the negative flag is set then add the relative displacement to the program
// counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bmi(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&negative == 0 {
		return
	}

	c.branch(addr)
}

// BPL - Branch if Positive
//
// If the negative flag is clear then add the relative displacement to the
// program counter to cause a branch to a new location.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) bpl(bus *Bus, mode AddressingMode, addr uint16) {
	if c.p&negative > 0 {
		return
	}

	c.branch(addr)
}

// JMP - Jump
//
// Sets the program counter to the address specified by the operand.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) jmp(bus *Bus, mode AddressingMode, addr uint16) {
	c.pc = addr
}

// JSR - Jump to Subroutine
//
// The JSR instruction pushes the address (minus one) of the return point on to
// the stack and then sets the program counter to the target memory address.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) jsr(bus *Bus, mode AddressingMode, addr uint16) {
	c.clock()

	c.pushAddress(bus, c.pc-1)
	c.pc = addr
}

// RTI - Return from Interrupt
//
// The RTI instruction is used at the end of an interrupt processing routine.
// It pulls the processor flags from the stack followed by the program counter.
//
// Processor Status after use:
// C	Carry Flag			Set from stack
// Z	Zero Flag			Set from stack
// I	Interrupt Disable	Set from stack
// D	Decimal Mode Flag	Set from stack
// B	Break Command		Ignored (cleared)
// V	Overflow Flag		Set from stack
// N	Negative Flag		Set from stack
func (c *CPU) rti(bus *Bus, mode AddressingMode, addr uint16) {
	// TODO: this cycle should be spent in pull. read the docs
	c.clock()

	p := c.pull(bus)

	c.p = status(p) & ^brk
	c.p |= unused

	c.pc = c.pullAddress(bus)
}

// RTS - Return from Subroutine
//
// The RTS instruction is used at the end of a subroutine to return to the
// calling routine. It pulls the program counter (minus one) from the stack.
//
// Processor Status after use:
// C	Carry Flag			Not affected
// Z	Zero Flag			Not affected
// I	Interrupt Disable	Not affected
// D	Decimal Mode Flag	Not affected
// B	Break Command		Not affected
// V	Overflow Flag		Not affected
// N	Negative Flag		Not affected
func (c *CPU) rts(bus *Bus, mode AddressingMode, addr uint16) {
	// TODO: this cycle should be spent in pull. read the docs
	c.clock()

	pclo := uint16(c.pull(bus))
	pchi := uint16(c.pull(bus))

	c.clock()
	c.pc = pchi<<8 | pclo + 1
}

// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================
// ====================================================================================================================================

// Equivalent to AND #i then LSR A. Some sources call this "ASR"; we do not
// follow this out of confusion with the mnemonic for a pseudoinstruction that
// combines CMP #$80 (or ANC #$FF) then ROR. Note that ALR #$FE acts like LSR
// followed by CLC.
func (c *CPU) alr(bus *Bus, mode AddressingMode, addr uint16) {
	c.and(bus, mode, addr)
	c.lsr(bus, Accumulator, addr)
}

// Does AND #i, setting N and Z flags based on the result. Then it copies N
// (bit 7) to C. ANC #$FF could be useful for sign-extending, much like
// CMP #$80. ANC #$00 acts like LDA #$00 followed by CLC.
func (c *CPU) anc(bus *Bus, mode AddressingMode, addr uint16) {
	c.and(bus, mode, addr)

	if c.p&negative > 0 {
		c.p |= carry
	} else {
		c.p &^= carry
	}
}

// Similar to AND #i then ROR A, except sets the flags differently. N and Z are
// normal, but C is bit 6 and V is bit 6 xor bit 5. A fast way to perform signed
// division by 4 is: CMP #$80; ARR #$FF; ROR. This can be extended to larger
// powers of two.
func (c *CPU) arr(bus *Bus, mode AddressingMode, addr uint16) {
	c.and(bus, mode, addr)
	c.ror(bus, Accumulator, addr)

	if (c.a>>6)&1 > 0 {
		c.p |= carry
	} else {
		c.p &^= carry
	}

	if ((c.a>>6)&1)^((c.a>>5)&1) > 0 {
		c.p |= overflow
	} else {
		c.p &^= overflow
	}
}

// Sets X to {(A AND X) - #value without borrow}, and updates NZC. One might use
// TXA AXS #-element_size to iterate through an array of structures or other
// elements larger than a byte, where the 6502 architecture usually prefers a
// structure of arrays. For example, TXA AXS #$FC could step to the next OAM
// entry or to the next APU channel, saving one byte and four cycles over four
// INXs. Also called SBX.
func (c *CPU) axs(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	r := uint16(c.a&c.x) - uint16(v)

	if c.a&c.x >= v {
		c.p |= carry
	} else {
		c.p &^= carry
	}

	c.x = byte(r)
	c.updateZero(c.x)
	c.updateNegative(c.x)
}

// Shortcut for LDA value then TAX. Saves a byte and two cycles and allows use
// of the X register with the (d),Y addressing mode. The immediate form ($AB,
// also called LXA) is unstable on real hardware because of line noise on the
// data bus; here it simply loads the operand into both A and X.
func (c *CPU) lax(bus *Bus, mode AddressingMode, addr uint16) {
	c.lda(bus, mode, addr)
	c.tax(bus, mode, addr)
}

// Stores the bitwise AND of A and X. As with STA and STX, no flags are affected
func (c *CPU) sax(bus *Bus, mode AddressingMode, addr uint16) {
	c.write(bus, addr, c.a&c.x)
}

// Equivalent to DEC value then CMP value, except supporting more addressing
// modes. LDA #$FF followed by DCP can be used to check if the decrement
// underflows, which is useful for multi-byte decrements.
func (c *CPU) dcp(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)

	v = c.doDec(v)
	c.write(bus, addr, v)
	c.compare(c.a, v)
}

// Equivalent to INC value then SBC value, except supporting more addressing
// modes.
func (c *CPU) isc(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)

	v = c.doInc(v)
	c.write(bus, addr, v)
	c.doAdd(v ^ 0xFF)
}

// Equivalent to ROL value then AND value, except supporting more addressing
// modes. LDA #$FF followed by RLA is an efficient way to rotate a variable
// while also loading it in A.
func (c *CPU) rla(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)

	v = c.doRol(v)
	c.write(bus, addr, v)

	c.a &= v
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// Equivalent to ROR value then ADC value, except supporting more addressing
// modes. Essentially this computes A + value / 2, where value is 9-bit and the
// division is rounded up.
func (c *CPU) rra(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)

	v = c.doRor(v)
	c.write(bus, addr, v)
	c.doAdd(v)
}

// Equivalent to ASL value then ORA value, except supporting more addressing
// modes. LDA #0 followed by SLO is an efficient way to shift a variable while
// also loading it in A.
func (c *CPU) slo(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)

	v = c.doAsl(v)
	c.write(bus, addr, v)

	c.a |= v
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// Equivalent to LSR value then EOR value, except supporting more addressing
// modes. LDA #0 followed by SRE is an efficient way to shift a variable while
// also loading it in A.
func (c *CPU) sre(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr)
	c.write(bus, addr, v)

	v = c.doLsr(v)
	c.write(bus, addr, v)

	c.a ^= v
	c.updateZero(c.a)
	c.updateNegative(c.a)
}

// KIL (JAM) locks the CPU up; only a reset recovers it.
func (c *CPU) kil(bus *Bus, mode AddressingMode, addr uint16) {
	c.halted = true
}

// XAA's result depends on an analog bus conflict inside the 6502 and isn't
// consistent across chip revisions. This implements the commonly assumed
// TXA-then-AND behavior, matching what most software expects.
func (c *CPU) xaa(bus *Bus, mode AddressingMode, addr uint16) {
	c.txa(bus, mode, addr)
	c.and(bus, mode, addr)
}

// AHX (SHA) stores A & X & (high byte of the target address + 1). Unstable
// on real hardware when indexing crosses a page; this implements the stable
// case.
func (c *CPU) ahx(bus *Bus, mode AddressingMode, addr uint16) {
	h := byte(addr>>8) + 1
	c.write(bus, addr, c.a&c.x&h)
}

// TAS (SHS) sets S = A & X, then stores S & (high byte of the target
// address + 1).
func (c *CPU) tas(bus *Bus, mode AddressingMode, addr uint16) {
	c.s = c.a & c.x
	h := byte(addr>>8) + 1
	c.write(bus, addr, c.s&h)
}

// SHY stores Y & (high byte of the target address + 1).
func (c *CPU) shy(bus *Bus, mode AddressingMode, addr uint16) {
	h := byte(addr>>8) + 1
	c.write(bus, addr, c.y&h)
}

// SHX stores X & (high byte of the target address + 1).
func (c *CPU) shx(bus *Bus, mode AddressingMode, addr uint16) {
	h := byte(addr>>8) + 1
	c.write(bus, addr, c.x&h)
}

// LAS ANDs memory with S and loads the result into A, X, and S.
func (c *CPU) las(bus *Bus, mode AddressingMode, addr uint16) {
	v := c.read(bus, addr) & c.s
	c.a = v
	c.x = v
	c.s = v
	c.updateZero(v)
	c.updateNegative(v)
}
