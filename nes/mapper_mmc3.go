package nes

// mmc3 is mapper 4: eight bank-select registers (two 1 KiB CHR pairs, four
// 1 KiB CHR singles or the reverse, two 8 KiB PRG windows), software-selected
// mirroring, a WRAM write-protect latch, and a scanline IRQ counter clocked
// by the PPU address bus's A12 line. The counter only advances on a
// low-to-high A12 transition that stays low for at least ~10 PPU dots first
// (the `tick` debounce below) — this is what makes MMC3 IRQs land once per
// visible scanline instead of once per sprite/background CHR fetch.
// Grounded on cynes's MMC3 (original_source/src/mapper.cpp: tick/write_cpu/
// update_state) and andrewthecodertx's mapper4.go for the register layout.
type mmc3 struct {
	base

	banksPRG int

	tick int

	regs           [8]byte
	counter        byte
	counterReload  byte
	registerTarget byte
	modePRG        bool
	modeCHR        bool

	irqEnabled   bool
	irqPending   bool
	shouldReload bool

	wramWritable bool
}

func newMMC3(mem cartMemory, mirror Mirror) *mmc3 {
	m := &mmc3{base: newBase(mem, mirror)}
	m.banksPRG = len(mem.prg) / 1024

	m.setBankCHR(0, 8, 0)
	m.setBankPRG(0x20, 0x10, 0)
	m.setBankPRG(0x30, 0x10, m.banksPRG-0x10)
	m.wramWritable = true
	m.setBankWRAM(0x18, 8, 0, true)
	m.applyMirror()

	return m
}

func (m *mmc3) ReadCPU(addr uint16) byte { return m.readCPU(addr) }

func (m *mmc3) ReadPPU(addr uint16) byte {
	m.updateState(addr & 0x1000)
	return m.readPPU(addr)
}

func (m *mmc3) WritePPU(addr uint16, v byte) {
	m.updateState(addr & 0x1000)
	m.writePPU(addr, v)
}

// Tick advances the debounce counter once per PPU dot. It only counts up
// while the counter is already armed (1..10); NotifyA12 is what arms it.
func (m *mmc3) Tick() {
	if m.tick > 0 && m.tick < 11 {
		m.tick++
	}
}

// NotifyA12 is the PPU's per-access A12 report; MMC3 drives its IRQ filter
// from it directly rather than from Tick (address-line activity, not PPU
// dot count, is the real clock here). The PPU calls it before every
// mapper-routed access, including the ones it then passes to ReadPPU/WritePPU;
// a repeated report of the same A12 level leaves the filter unchanged.
func (m *mmc3) NotifyA12(addr uint16) {
	m.updateState(addr & 0x1000)
}

func (m *mmc3) updateState(a12 uint16) {
	if a12 != 0 {
		if m.tick > 10 {
			if m.counter == 0 || m.shouldReload {
				m.counter = m.counterReload
			} else {
				m.counter--
			}

			if m.counter == 0 && m.irqEnabled {
				m.irqPending = true
			}

			m.shouldReload = false
		}
		m.tick = 0
	} else if m.tick == 0 {
		m.tick = 1
	}
}

func (m *mmc3) IRQ() bool { return m.irqPending }

func (m *mmc3) WriteCPU(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		m.writeCPU(addr, v)
	case addr < 0xA000:
		if addr&1 != 0 {
			m.writeBankData(v)
		} else {
			m.registerTarget = v & 0x07
			m.modePRG = v&0x40 != 0
			m.modeCHR = v&0x80 != 0
			m.remapBanks()
		}
	case addr < 0xC000:
		if addr&1 != 0 {
			m.wramWritable = v&0x40 == 0
			m.setBankWRAM(0x18, 8, 0, m.wramWritable)
		} else {
			if v&1 != 0 {
				m.mirror = MirrorHorizontal
			} else {
				m.mirror = MirrorVertical
			}
			m.applyMirror()
		}
	case addr < 0xE000:
		if addr&1 != 0 {
			m.counter = 0
			m.shouldReload = true
		} else {
			m.counterReload = v
		}
	default:
		if addr&1 != 0 {
			m.irqEnabled = true
		} else {
			m.irqEnabled = false
			m.irqPending = false
		}
	}
}

func (m *mmc3) writeBankData(v byte) {
	target := m.registerTarget
	if target < 2 {
		v &= 0xFE
	}
	m.regs[target] = v
	m.remapBanks()
}

func (m *mmc3) remapBanks() {
	if m.modePRG {
		m.setBankPRG(0x20, 8, m.banksPRG-0x10)
		m.setBankPRG(0x28, 8, int(m.regs[7]&0x3F)<<3)
		m.setBankPRG(0x30, 8, int(m.regs[6]&0x3F)<<3)
		m.setBankPRG(0x38, 8, m.banksPRG-0x8)
	} else {
		m.setBankPRG(0x20, 8, int(m.regs[6]&0x3F)<<3)
		m.setBankPRG(0x28, 8, int(m.regs[7]&0x3F)<<3)
		m.setBankPRG(0x30, 0x10, m.banksPRG-0x10)
	}

	if m.modeCHR {
		m.setBankCHR(0x0, 1, int(m.regs[2]))
		m.setBankCHR(0x1, 1, int(m.regs[3]))
		m.setBankCHR(0x2, 1, int(m.regs[4]))
		m.setBankCHR(0x3, 1, int(m.regs[5]))
		m.setBankCHR(0x4, 2, int(m.regs[0]))
		m.setBankCHR(0x6, 2, int(m.regs[1]))
	} else {
		m.setBankCHR(0x0, 2, int(m.regs[0]))
		m.setBankCHR(0x2, 2, int(m.regs[1]))
		m.setBankCHR(0x4, 1, int(m.regs[2]))
		m.setBankCHR(0x5, 1, int(m.regs[3]))
		m.setBankCHR(0x6, 1, int(m.regs[4]))
		m.setBankCHR(0x7, 1, int(m.regs[5]))
	}
}

func (m *mmc3) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putInt(m.tick)
	s.putBytes(m.regs[:])
	s.putByte(m.counter)
	s.putByte(m.counterReload)
	s.putByte(m.registerTarget)
	s.putBool(m.modePRG)
	s.putBool(m.modeCHR)
	s.putBool(m.irqEnabled)
	s.putBool(m.irqPending)
	s.putBool(m.shouldReload)
	s.putBool(m.wramWritable)
	s.putByte(byte(m.mirror))
}

func (m *mmc3) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.tick = s.getInt()
	s.getBytes(m.regs[:])
	m.counter = s.getByte()
	m.counterReload = s.getByte()
	m.registerTarget = s.getByte()
	m.modePRG = s.getBool()
	m.modeCHR = s.getBool()
	m.irqEnabled = s.getBool()
	m.irqPending = s.getBool()
	m.shouldReload = s.getBool()
	m.wramWritable = s.getBool()
	m.mirror = Mirror(s.getByte())

	m.remapBanks()
	m.setBankWRAM(0x18, 8, 0, m.wramWritable)
	m.applyMirror()
}
