package nes

// gxrom is mapper 66: a single write to $8000-$FFFF selects both a 32 KiB
// PRG bank (high nibble) and an 8 KiB CHR bank (low nibble). No WRAM.
// Grounded on cynes's GxROM (original_source/src/mapper.cpp).
type gxrom struct {
	base

	selectByte byte
}

func newGxROM(mem cartMemory, mirror Mirror) *gxrom {
	m := &gxrom{base: newBase(mem, mirror)}

	m.setBankPRG(0x20, 0x20, 0)
	m.setBankCHR(0x0, 0x8, 0)
	m.applyMirror()

	return m
}

func (m *gxrom) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *gxrom) ReadPPU(addr uint16) byte     { return m.readPPU(addr) }
func (m *gxrom) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }

func (m *gxrom) WriteCPU(addr uint16, v byte) {
	if addr < 0x8000 {
		m.writeCPU(addr, v)
		return
	}

	m.selectByte = v
	m.setBankPRG(0x20, 0x20, int(m.selectByte&0x30)<<1)
	m.setBankCHR(0x00, 0x08, int(m.selectByte&0x03)<<3)
}

func (m *gxrom) encodeState(s *stateBuffer) {
	m.base.encodeState(s)
	s.putByte(m.selectByte)
}

func (m *gxrom) decodeState(s *stateBuffer) {
	m.base.decodeState(s)
	m.selectByte = s.getByte()
	m.setBankPRG(0x20, 0x20, int(m.selectByte&0x30)<<1)
	m.setBankCHR(0x00, 0x08, int(m.selectByte&0x03)<<3)
}
