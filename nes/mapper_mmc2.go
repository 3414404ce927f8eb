package nes

// mmc2mmc4 covers mappers 9 (MMC2, Punch-Out!!) and 10 (MMC4), which differ
// only in the size of their switchable low PRG window (8 KiB vs 16 KiB). Two
// CHR latches flip automatically when the PPU reads specific tiles near the
// end of each 4 KiB CHR half ($0FD8/$0FE8 and $1FD8-DF/$1FE8-EF), letting
// Punch-Out!! swap Mike/Glass Joe sprite sheets mid-frame without CPU
// involvement. No pack example repo implements MMC2/MMC4; grounded directly
// on cynes's templated `MMC<bankSize>` (original_source/src/mapper.hpp).
type mmc2mmc4 struct {
	base

	banksPRG int
	lowSize  int // 8 for MMC2, 16 for MMC4

	prgBank  byte
	latches  [2]bool
	selected [4]byte
}

func newMMC2(mem cartMemory, mirror Mirror, mmc4 bool) *mmc2mmc4 {
	m := &mmc2mmc4{base: newBase(mem, mirror)}
	m.banksPRG = len(mem.prg) / 1024
	m.lowSize = 8
	if mmc4 {
		m.lowSize = 16
	}

	m.setBankCHR(0, 8, 0)
	m.setBankPRG(0x20, m.lowSize, 0)
	m.setBankPRG(0x20+m.lowSize, 0x20-m.lowSize, m.banksPRG-0x20+m.lowSize)
	m.setBankWRAM(0x18, 8, 0, true)
	m.applyMirror()

	return m
}

func (m *mmc2mmc4) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *mmc2mmc4) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }

func (m *mmc2mmc4) ReadPPU(addr uint16) byte {
	v := m.readPPU(addr)

	switch {
	case addr == 0x0FD8:
		m.latches[0] = false
		m.updateBanks()
	case addr == 0x0FE8:
		m.latches[0] = true
		m.updateBanks()
	case addr >= 0x1FD8 && addr < 0x1FE0:
		m.latches[1] = false
		m.updateBanks()
	case addr >= 0x1FE8 && addr < 0x1FF0:
		m.latches[1] = true
		m.updateBanks()
	}

	return v
}

func (m *mmc2mmc4) WriteCPU(addr uint16, v byte) {
	switch {
	case addr < 0xA000:
		m.writeCPU(addr, v)
	case addr < 0xB000:
		m.prgBank = v & 0xF
		m.setBankPRG(0x20, m.lowSize, int(m.prgBank)*m.lowSize)
	case addr < 0xC000:
		m.selected[0] = v & 0x1F
		m.updateBanks()
	case addr < 0xD000:
		m.selected[1] = v & 0x1F
		m.updateBanks()
	case addr < 0xE000:
		m.selected[2] = v & 0x1F
		m.updateBanks()
	case addr < 0xF000:
		m.selected[3] = v & 0x1F
		m.updateBanks()
	default:
		if v&1 != 0 {
			m.mirror = MirrorHorizontal
		} else {
			m.mirror = MirrorVertical
		}
		m.applyMirror()
	}
}

func (m *mmc2mmc4) updateBanks() {
	if m.latches[0] {
		m.setBankCHR(0x0, 4, int(m.selected[0])<<2)
	} else {
		m.setBankCHR(0x0, 4, int(m.selected[1])<<2)
	}

	if m.latches[1] {
		m.setBankCHR(0x4, 4, int(m.selected[2])<<2)
	} else {
		m.setBankCHR(0x4, 4, int(m.selected[3])<<2)
	}
}

func (m *mmc2mmc4) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putByte(m.prgBank)
	s.putBool(m.latches[0])
	s.putBool(m.latches[1])
	s.putBytes(m.selected[:])
	s.putByte(byte(m.mirror))
}

func (m *mmc2mmc4) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.prgBank = s.getByte()
	m.latches[0] = s.getBool()
	m.latches[1] = s.getBool()
	s.getBytes(m.selected[:])
	m.mirror = Mirror(s.getByte())

	m.setBankPRG(0x20, m.lowSize, int(m.prgBank)*m.lowSize)
	m.updateBanks()
	m.applyMirror()
}
