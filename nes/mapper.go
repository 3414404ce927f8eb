package nes

import "strconv"

// Mirror selects how the four 1-KiB PPU nametable slots route to the two
// physical 1-KiB CIRAM banks (or to a single bank, for one-screen modes).
type Mirror byte

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorSingleLow
	MirrorSingleHigh
	MirrorFourScreen
)

// bankEntry is a single 1-KiB page translation: an offset into a mapper's
// linear backing memory plus a read-only flag. A page with mapped == false
// is unmapped: reads return 0 (the CPU bus's open-bus value is not used),
// writes are no-ops. Modeled directly
// on cynes's Mapper::MemoryBank (offset + access bit).
type bankEntry struct {
	mem      []byte
	offset   int
	readOnly bool
	mapped   bool
}

func (b bankEntry) read(inner uint16) (byte, bool) {
	if !b.mapped {
		return 0, false
	}
	return b.mem[b.offset+int(inner)], true
}

func (b bankEntry) write(inner uint16, v byte) {
	if !b.mapped || b.readOnly {
		return
	}
	b.mem[b.offset+int(inner)] = v
}

const (
	cpuBankCount  = 64 // 64 KiB CPU space / 1 KiB pages
	ppuBankCount  = 16 // 16 KiB PPU space / 1 KiB pages
	bankPageShift = 10
	bankPageMask  = 0x3FF
)

// Mapper translates CPU and PPU addresses through per-cartridge bank
// tables and reacts to writes and PPU address-line activity with whatever
// bank-switch or IRQ state machine the cartridge hardware implements.
type Mapper interface {
	ReadCPU(addr uint16) byte
	WriteCPU(addr uint16, v byte)
	ReadPPU(addr uint16) byte
	WritePPU(addr uint16, v byte)

	// Tick is called once per PPU dot so mappers with cycle-driven state
	// (MMC3's IRQ filter) can advance it.
	Tick()

	// NotifyA12 is called by the PPU before every mapper-routed access,
	// carrying the 13th PPU address bit. Mappers that don't care (NROM,
	// UxROM, CNROM, AxROM, GxROM) ignore it.
	NotifyA12(addr uint16)

	// IRQ reports whether the mapper currently asserts its interrupt line
	// (MMC3's scanline IRQ; always false otherwise).
	IRQ() bool

	Mirror() Mirror

	encodeState(*stateBuffer)
	decodeState(*stateBuffer)
}

// cartMemory is the raw PRG/CHR/WRAM/VRAM backing a mapper instance.
type cartMemory struct {
	prg    []byte
	chr    []byte // CHR-ROM (read-only) or CHR-RAM (writable), per header
	chrRAM bool
	wram   []byte
	vram   []byte // extra nametable RAM for four-screen/AxROM one-screen modes
}

// base holds the bank tables and common translation helpers every mapper
// variant builds on. It is not itself a Mapper; each variant embeds it and
// implements the Mapper methods, calling into base's setBank* helpers from
// its own WriteCPU/WritePPU.
type base struct {
	mem cartMemory

	cpuBanks [cpuBankCount]bankEntry
	ppuBanks [ppuBankCount]bankEntry

	mirror Mirror
}

func newBase(mem cartMemory, mirror Mirror) base {
	return base{mem: mem, mirror: mirror}
}

func (b *base) Mirror() Mirror { return b.mirror }

func (b *base) Tick()              {}
func (b *base) NotifyA12(_ uint16) {}
func (b *base) IRQ() bool          { return false }

// setBankPRG maps `size` KiB of PRG-ROM starting at byte address*1024 into
// CPU page `page` onward (size/1 pages), read-only.
func (b *base) setBankPRG(page int, size int, addr int) {
	for i := 0; i < size; i++ {
		b.cpuBanks[page+i] = bankEntry{mem: b.mem.prg, offset: (addr + i) * 1024, readOnly: true, mapped: true}
	}
}

func (b *base) setBankWRAM(page int, size int, addr int, writable bool) {
	for i := 0; i < size; i++ {
		b.cpuBanks[page+i] = bankEntry{mem: b.mem.wram, offset: addr + i*1024, readOnly: !writable, mapped: true}
	}
}

func (b *base) setBankCHR(page int, size int, addr int) {
	for i := 0; i < size; i++ {
		b.ppuBanks[page+i] = bankEntry{mem: b.mem.chr, offset: (addr + i) * 1024, readOnly: !b.mem.chrRAM, mapped: true}
	}
}

func (b *base) setBankVRAM(page int, size int, addr int) {
	for i := 0; i < size; i++ {
		b.ppuBanks[page+i] = bankEntry{mem: b.mem.vram, offset: addr + i*1024, readOnly: false, mapped: true}
	}
}

// applyMirror lays out the four 1-KiB nametable slots (PPU pages 8..11,
// i.e. $2000-$2FFF) onto two physical 1-KiB CIRAM banks per b.mirror.
// CIRAM itself is modeled as the first 2 KiB of mem.vram.
func (b *base) applyMirror() {
	if len(b.mem.vram) < 2048 {
		b.mem.vram = append(b.mem.vram, make([]byte, 2048-len(b.mem.vram))...)
	}

	set := func(slot int, bank int) {
		entry := bankEntry{mem: b.mem.vram, offset: bank * 1024, readOnly: false, mapped: true}
		b.ppuBanks[8+slot] = entry
		b.ppuBanks[12+slot] = entry
	}

	switch b.mirror {
	case MirrorHorizontal:
		set(0, 0)
		set(1, 0)
		set(2, 1)
		set(3, 1)
	case MirrorVertical:
		set(0, 0)
		set(1, 1)
		set(2, 0)
		set(3, 1)
	case MirrorSingleLow:
		set(0, 0)
		set(1, 0)
		set(2, 0)
		set(3, 0)
	case MirrorSingleHigh:
		set(0, 1)
		set(1, 1)
		set(2, 1)
		set(3, 1)
	case MirrorFourScreen:
		if len(b.mem.vram) < 4096 {
			b.mem.vram = append(b.mem.vram, make([]byte, 4096-len(b.mem.vram))...)
		}
		for i := 0; i < 4; i++ {
			entry := bankEntry{mem: b.mem.vram, offset: i * 1024, readOnly: false, mapped: true}
			b.ppuBanks[8+i] = entry
			b.ppuBanks[12+i] = entry
		}
	}
}

func (b *base) readCPU(addr uint16) byte {
	v, _ := b.cpuBanks[addr>>bankPageShift].read(addr & bankPageMask)
	return v
}

func (b *base) writeCPU(addr uint16, v byte) {
	b.cpuBanks[addr>>bankPageShift].write(addr&bankPageMask, v)
}

func (b *base) readPPU(addr uint16) byte {
	v, _ := b.ppuBanks[(addr>>bankPageShift)&0xF].read(addr & bankPageMask)
	return v
}

func (b *base) writePPU(addr uint16, v byte) {
	b.ppuBanks[(addr>>bankPageShift)&0xF].write(addr&bankPageMask, v)
}

func (b *base) encodeState(s *stateBuffer) {
	s.putBytes(b.mem.chr)
	s.putBytes(b.mem.wram)
	s.putBytes(b.mem.vram)
}

func (b *base) decodeState(s *stateBuffer) {
	s.getBytes(b.mem.chr)
	s.getBytes(b.mem.wram)
	s.getBytes(b.mem.vram)
}

// newMapper builds the Mapper variant for the given iNES mapper ID and
// cartridge backing memory, per spec.md §4.5 / §6.
func newMapper(id byte, mem cartMemory, mirror Mirror) (Mapper, error) {
	switch id {
	case 0:
		return newNROM(mem, mirror), nil
	case 1:
		return newMMC1(mem, mirror), nil
	case 2, 71:
		return newUxROM(mem, mirror), nil
	case 3:
		return newCNROM(mem, mirror), nil
	case 4:
		return newMMC3(mem, mirror), nil
	case 7:
		return newAxROM(mem, mirror), nil
	case 9, 10:
		return newMMC2(mem, mirror, id == 10), nil
	case 66:
		return newGxROM(mem, mirror), nil
	default:
		return nil, &UnsupportedMapperError{ID: id}
	}
}

// UnsupportedMapperError is a load-time error per spec.md §7.1.
type UnsupportedMapperError struct{ ID byte }

func (e *UnsupportedMapperError) Error() string {
	return "nes: unsupported mapper " + strconv.Itoa(int(e.ID))
}
