package nes

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

func TestPPURegisters(t *testing.T) {
	type result struct {
		t, v uint16
		x, w byte
	}

	type prev result
	type want result

	parse := func(s string) uint64 {
		s = strings.Replace(s, " ", "", -1)
		s = strings.Replace(s, ".", "0", -1)
		n, err := strconv.ParseUint(s, 2, 64)
		if err != nil {
			panic(err)
		}
		return n
	}
	p16 := func(s string) uint16 { return uint16(parse(s)) }
	p8 := func(s string) uint8 { return uint8(parse(s)) }

	ppu := &PPU{}

	tests := []struct {
		name  string
		op    func()
		prev  prev
		want  want
		tmask uint16
	}{
		{
			// tests are from https://wiki.nesdev.com/w/index.php?title=PPU_scrolling&redirect=no#Summary
			name:  "0x2000 write",
			op:    func() { ppu.WritePort(0x2000, 0x00) },
			prev:  prev{t: p16("........ ........"), v: p16("........ ........"), x: p8("........"), w: p8("........")},
			want:  want{t: p16("....00.. ........"), v: p16("........ ........"), x: p8("........"), w: p8("........")},
			tmask: 0x0C00,
		},
		{
			// tests are from https://wiki.nesdev.com/w/index.php?title=PPU_scrolling&redirect=no#Summary
			name:  "0x2002 read",
			op:    func() { ppu.ReadPort(0x2002) },
			prev:  prev{t: p16("....00.. ........"), v: p16("........ ........"), x: p8("........"), w: p8("........")},
			want:  want{t: p16("....00.. ........"), v: p16("........ ........"), x: p8("........"), w: p8(".......0")},
			tmask: 0x0C00,
		},
		{
			// tests are from https://wiki.nesdev.com/w/index.php?title=PPU_scrolling&redirect=no#Summary
			name:  "0x2005 write 1",
			op:    func() { ppu.WritePort(0x2005, 0x7D) },
			prev:  prev{t: p16("....00.. ........"), v: p16("........ ........"), x: p8("........"), w: p8(".......0")},
			want:  want{t: p16("....00.. ...01111"), v: p16("........ ........"), x: p8(".....101"), w: p8(".......1")},
			tmask: 0x0C1F,
		},
		{
			// tests are from https://wiki.nesdev.com/w/index.php?title=PPU_scrolling&redirect=no#Summary
			name:  "0x2005 write 2",
			op:    func() { ppu.WritePort(0x2005, 0x5E) },
			prev:  prev{t: p16("....00.. ...01111"), v: p16("........ ........"), x: p8(".....101"), w: p8(".......1")},
			want:  want{t: p16(".1100001 01101111"), v: p16("........ ........"), x: p8(".....101"), w: p8(".......0")},
			tmask: 0x7FFF,
		},
		{
			// tests are from https://wiki.nesdev.com/w/index.php?title=PPU_scrolling&redirect=no#Summary
			name:  "0x2006 write 1",
			op:    func() { ppu.WritePort(0x2006, 0x3D) },
			prev:  prev{t: p16(".1100001 01101111"), v: p16("........ ........"), x: p8(".....101"), w: p8(".......0")},
			want:  want{t: p16(".0111101 01101111"), v: p16("........ ........"), x: p8(".....101"), w: p8(".......1")},
			tmask: 0x7FFF,
		},
		{
			// tests are from https://wiki.nesdev.com/w/index.php?title=PPU_scrolling&redirect=no#Summary
			name:  "0x2006 write 2",
			op:    func() { ppu.WritePort(0x2006, 0xF0) },
			prev:  prev{t: p16(".0111101 01101111"), v: p16("........ ........"), x: p8(".....101"), w: p8(".......1")},
			want:  want{t: p16(".0111101 11110000"), v: p16(".0111101 11110000"), x: p8(".....101"), w: p8(".......0")},
			tmask: 0x7FFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ppu.t&tt.tmask != tt.prev.t {
				t.Errorf("got prev t = %016b, want prev = %016b", ppu.t&tt.tmask, tt.prev.t)
			}
			if ppu.v != tt.prev.v {
				t.Errorf("got prev v = %016b, want prev = %016b", ppu.v, tt.prev.v)
			}
			if ppu.x != tt.prev.x {
				t.Errorf("got prev x = %016b, want prev = %016b", ppu.x, tt.prev.x)
			}
			if ppu.w != tt.prev.w {
				t.Errorf("got prev w = %016b, want prev = %016b", ppu.w, tt.prev.w)
			}

			tt.op()

			if ppu.t&tt.tmask != tt.want.t {
				t.Errorf("got t = %016b, want = %016b", ppu.t&tt.tmask, tt.want.t)
			}
			if ppu.v != tt.want.v {
				t.Errorf("got v = %016b, want = %016b", ppu.v, tt.want.v)
			}
			if ppu.x != tt.want.x {
				t.Errorf("got x = %016b, want = %016b", ppu.x, tt.want.x)
			}
			if ppu.w != tt.want.w {
				t.Errorf("got w = %016b, want = %016b", ppu.w, tt.want.w)
			}
		})
	}
}

func newMirrorTestCartridge(mirror Mirror) *Cartridge {
	mem := cartMemory{
		prg:  make([]byte, 16*1024),
		chr:  make([]byte, 8*1024),
		vram: make([]byte, 2048),
	}
	return &Cartridge{mapper: newNROM(mem, mirror)}
}

func TestPPUNametableMirroring(t *testing.T) {
	writeData := func(p *PPU, addr uint16, val byte) {
		for i := uint16(0); i < 960; i++ {
			p.Write(addr+i, val)
		}
	}
	readData := func(p *PPU, addr uint16) []byte {
		buf := make([]byte, 960)
		for i := uint16(0); i < 960; i++ {
			buf[i] = p.Read(addr + i)
		}
		return buf
	}

	t.Run("horizontal", func(t *testing.T) {
		ppu := &PPU{Cartridge: newMirrorTestCartridge(MirrorHorizontal)}

		// Horizontal: 0x2000/0x2400 share a CIRAM bank, 0x2800/0x2C00 share
		// the other.
		writeData(ppu, 0x2000, 1)
		writeData(ppu, 0x2800, 2)

		if got := readData(ppu, 0x2000); !bytes.Equal(got, bytes.Repeat([]byte{1}, 960)) {
			t.Fatalf("0x2000: got %v", got)
		}
		if got := readData(ppu, 0x2400); !bytes.Equal(got, bytes.Repeat([]byte{1}, 960)) {
			t.Fatalf("0x2400 should mirror 0x2000: got %v", got)
		}
		if got := readData(ppu, 0x2800); !bytes.Equal(got, bytes.Repeat([]byte{2}, 960)) {
			t.Fatalf("0x2800: got %v", got)
		}
		if got := readData(ppu, 0x2C00); !bytes.Equal(got, bytes.Repeat([]byte{2}, 960)) {
			t.Fatalf("0x2C00 should mirror 0x2800: got %v", got)
		}

		// 0x3000-0x3EFF mirrors 0x2000-0x2EFF.
		if got := ppu.Read(0x3000); got != 1 {
			t.Fatalf("0x3000 should mirror 0x2000, got %v", got)
		}
	})

	t.Run("vertical", func(t *testing.T) {
		ppu := &PPU{Cartridge: newMirrorTestCartridge(MirrorVertical)}

		// Vertical: 0x2000/0x2800 share a CIRAM bank, 0x2400/0x2C00 share
		// the other.
		writeData(ppu, 0x2000, 1)
		writeData(ppu, 0x2400, 2)

		if got := readData(ppu, 0x2000); !bytes.Equal(got, bytes.Repeat([]byte{1}, 960)) {
			t.Fatalf("0x2000: got %v", got)
		}
		if got := readData(ppu, 0x2800); !bytes.Equal(got, bytes.Repeat([]byte{1}, 960)) {
			t.Fatalf("0x2800 should mirror 0x2000: got %v", got)
		}
		if got := readData(ppu, 0x2400); !bytes.Equal(got, bytes.Repeat([]byte{2}, 960)) {
			t.Fatalf("0x2400: got %v", got)
		}
		if got := readData(ppu, 0x2C00); !bytes.Equal(got, bytes.Repeat([]byte{2}, 960)) {
			t.Fatalf("0x2C00 should mirror 0x2400: got %v", got)
		}
	})
}
