package nes

// mmc1 is mapper 1. Writes to $8000-$FFFF go through a serial shift register:
// bit 0 of the value shifts in on each write, five writes complete a 5-bit
// register load, and the internal `tick` counter debounces writes that land
// on consecutive CPU cycles (the 6502 RMW instructions writing twice) so they
// count as one. Grounded on cynes's MMC1::tick/write_registers
// (original_source/src/mapper.cpp), register-bank math cross-checked against
// andrewthecodertx's mapper1.go.
type mmc1 struct {
	base

	tick     uint8
	regs     [4]byte
	shift    byte
	shiftLen byte

	banksPRG int
}

func newMMC1(mem cartMemory, mirror Mirror) *mmc1 {
	m := &mmc1{base: newBase(mem, mirror)}
	m.banksPRG = len(mem.prg) / 1024

	m.regs[0] = 0xC
	m.setBankWRAM(0x18, 8, 0, true)
	m.updateBanks()

	return m
}

func (m *mmc1) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *mmc1) ReadPPU(addr uint16) byte     { return m.readPPU(addr) }
func (m *mmc1) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }

// Tick runs once per PPU dot (3x CPU rate); the serial port only accepts a
// second write once at least 2 CPU cycles (6 PPU dots) have elapsed since the
// last one.
func (m *mmc1) Tick() {
	if m.tick < 6 {
		m.tick++
	}
}

func (m *mmc1) WriteCPU(addr uint16, v byte) {
	if addr < 0x8000 {
		m.writeCPU(addr, v)
		return
	}

	if m.tick != 6 {
		m.tick = 0
		return
	}

	if v&0x80 != 0 {
		m.regs[0] |= 0xC
		m.updateBanks()
		m.shift = 0
		m.shiftLen = 0
	} else {
		m.shift >>= 1
		m.shift |= (v & 1) << 4
		m.shiftLen++

		if m.shiftLen == 5 {
			target := (addr >> 13) & 0x03
			m.regs[target] = m.shift
			m.updateBanks()
			m.shift = 0
			m.shiftLen = 0
		}
	}

	m.tick = 0
}

func (m *mmc1) updateBanks() {
	switch m.regs[0] & 0x03 {
	case 0:
		m.mirror = MirrorSingleLow
	case 1:
		m.mirror = MirrorSingleHigh
	case 2:
		m.mirror = MirrorVertical
	case 3:
		m.mirror = MirrorHorizontal
	}
	m.applyMirror()

	if m.regs[0]&0x10 != 0 {
		m.setBankCHR(0x0, 4, int(m.regs[1]&0x1F)<<2)
		m.setBankCHR(0x4, 4, int(m.regs[2]&0x1F)<<2)
	} else {
		m.setBankCHR(0x0, 8, int(m.regs[1]&0x1E)<<2)
	}

	if m.regs[0]&0x08 != 0 {
		if m.regs[0]&0x04 != 0 {
			m.setBankPRG(0x20, 0x10, int(m.regs[3]&0x0F)<<4)
			m.setBankPRG(0x30, 0x10, m.banksPRG-0x10)
		} else {
			m.setBankPRG(0x20, 0x10, 0)
			m.setBankPRG(0x30, 0x10, int(m.regs[3]&0xF)<<4)
		}
	} else {
		m.setBankPRG(0x20, 0x20, int(m.regs[3]&0x0E)<<4)
	}

	readOnly := m.regs[3]&0x10 != 0
	m.setBankWRAM(0x18, 8, 0, !readOnly)
}

func (m *mmc1) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putByte(m.tick)
	s.putBytes(m.regs[:])
	s.putByte(m.shift)
	s.putByte(m.shiftLen)
}

func (m *mmc1) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.tick = s.getByte()
	s.getBytes(m.regs[:])
	m.shift = s.getByte()
	m.shiftLen = s.getByte()
	m.updateBanks()
}
