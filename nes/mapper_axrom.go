package nes

// axrom is mapper 7: a single switchable 32 KiB PRG bank, 8 KiB CHR-RAM, and
// one-screen mirroring selected by the same write that selects the PRG bank.
// Grounded on cynes's AxROM (original_source/src/mapper.cpp) and
// andrewthecodertx's mapper7.go.
type axrom struct {
	base

	prgBank byte
}

func newAxROM(mem cartMemory, _ Mirror) *axrom {
	m := &axrom{base: newBase(mem, MirrorSingleLow)}

	m.setBankCHR(0, 8, 0)
	m.setBankPRG(0x20, 0x20, 0)
	m.applyMirror()

	return m
}

func (m *axrom) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *axrom) ReadPPU(addr uint16) byte     { return m.readPPU(addr) }
func (m *axrom) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }

func (m *axrom) WriteCPU(addr uint16, v byte) {
	if addr < 0x8000 {
		m.writeCPU(addr, v)
		return
	}

	m.prgBank = v & 0x07
	m.setBankPRG(0x20, 0x20, int(m.prgBank)<<5)

	if v&0x10 != 0 {
		m.mirror = MirrorSingleHigh
	} else {
		m.mirror = MirrorSingleLow
	}
	m.applyMirror()
}

func (m *axrom) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putByte(m.prgBank)
	s.putByte(byte(m.mirror))
}

func (m *axrom) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.prgBank = s.getByte()
	m.mirror = Mirror(s.getByte())
	m.setBankPRG(0x20, 0x20, int(m.prgBank)<<5)
	m.applyMirror()
}
