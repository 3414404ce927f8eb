package nes

// nrom is mapper 0: fixed 16 KiB or 32 KiB PRG, fixed 8 KiB CHR, no bank
// switching at all. Grounded on cynes's NROM constructor (mapper.cpp) and
// andrewthecodertx's mapper0.go for the size-detection shape.
type nrom struct {
	base
}

func newNROM(mem cartMemory, mirror Mirror) *nrom {
	m := &nrom{base: newBase(mem, mirror)}

	m.setBankCHR(0, 8, 0)

	banksPRG := len(mem.prg) / 1024
	if banksPRG == 32 {
		m.setBankPRG(0x20, 0x20, 0)
	} else {
		m.setBankPRG(0x20, 0x10, 0)
		m.setBankPRG(0x30, 0x10, 0)
	}

	m.setBankWRAM(0x18, 8, 0, true)
	m.applyMirror()

	return m
}

func (m *nrom) ReadCPU(addr uint16) byte     { return m.readCPU(addr) }
func (m *nrom) WriteCPU(addr uint16, v byte) { m.writeCPU(addr, v) }
func (m *nrom) ReadPPU(addr uint16) byte     { return m.readPPU(addr) }
func (m *nrom) WritePPU(addr uint16, v byte) { m.writePPU(addr, v) }
