package nes

// uxrom is mappers 2 and 71 (UNROM/UOROM and the Camerica/Codemasters
// variant share the same bank behavior): a single switchable 16 KiB PRG bank
// at $8000, fixed last 16 KiB at $C000, 8 KiB CHR-RAM. Grounded on cynes's
// UxROM (original_source/src/mapper.cpp) and andrewthecodertx's mapper2.go.
type uxrom struct {
	base

	banksPRG int
	prgBank  byte
}

func newUxROM(mem cartMemory, mirror Mirror) *uxrom {
	m := &uxrom{base: newBase(mem, mirror)}
	m.banksPRG = len(mem.prg) / 1024

	m.setBankPRG(0x20, 0x10, 0)
	m.setBankPRG(0x30, 0x10, m.banksPRG-0x10)
	m.setBankCHR(0x0, 8, 0)
	m.applyMirror()

	return m
}

func (m *uxrom) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *uxrom) ReadPPU(addr uint16) byte     { return m.readPPU(addr) }
func (m *uxrom) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }

func (m *uxrom) WriteCPU(addr uint16, v byte) {
	if addr < 0x8000 {
		m.writeCPU(addr, v)
		return
	}
	m.prgBank = v
	m.setBankPRG(0x20, 0x10, int(m.prgBank)<<4)
}

func (m *uxrom) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putByte(m.prgBank)
}

func (m *uxrom) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.prgBank = s.getByte()
	m.setBankPRG(0x20, 0x10, int(m.prgBank)<<4)
}
