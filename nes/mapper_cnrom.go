package nes

// cnrom is mapper 3: fixed 16 or 32 KiB PRG, a single switchable 8 KiB CHR
// bank selected by any write to $8000-$FFFF. Grounded on cynes's CNROM
// (original_source/src/mapper.cpp) and andrewthecodertx's mapper3.go.
type cnrom struct {
	base

	chrBank byte
}

func newCNROM(mem cartMemory, mirror Mirror) *cnrom {
	m := &cnrom{base: newBase(mem, mirror)}

	m.setBankCHR(0, 8, 0)

	banksPRG := len(mem.prg) / 1024
	if banksPRG == 0x20 {
		m.setBankPRG(0x20, 0x20, 0)
	} else {
		m.setBankPRG(0x20, 0x10, 0)
		m.setBankPRG(0x30, 0x10, 0)
	}

	m.applyMirror()
	return m
}

func (m *cnrom) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *cnrom) ReadPPU(addr uint16) byte     { return m.readPPU(addr) }
func (m *cnrom) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }

func (m *cnrom) WriteCPU(addr uint16, v byte) {
	if addr < 0x8000 {
		m.writeCPU(addr, v)
		return
	}
	m.chrBank = v & 0x3
	m.setBankCHR(0x0, 8, int(m.chrBank)<<3)
}

func (m *cnrom) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putByte(m.chrBank)
}

func (m *cnrom) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.chrBank = s.getByte()
	m.setBankCHR(0x0, 8, int(m.chrBank)<<3)
}
