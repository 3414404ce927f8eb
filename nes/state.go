package nes

import "encoding/binary"

// stateBuffer is a flat byte walk shared by every component's encodeState/
// decodeState pair, the same direction running both save and load the way
// cynes's templated `dump<operation>` does (original_source/src/utils.hpp)
// for a single method per component instead of two. Extends the teacher's
// own `encoding/binary` use in cartridge.go's iNES header parsing.
type stateBuffer struct {
	buf []byte
	pos int
}

func newStateEncoder() *stateBuffer { return &stateBuffer{} }

func newStateDecoder(data []byte) *stateBuffer { return &stateBuffer{buf: data} }

func (s *stateBuffer) bytes() []byte { return s.buf }

func (s *stateBuffer) len() int { return len(s.buf) }

func (s *stateBuffer) putByte(v byte) { s.buf = append(s.buf, v) }

func (s *stateBuffer) getByte() byte {
	v := s.buf[s.pos]
	s.pos++
	return v
}

func (s *stateBuffer) putBool(v bool) {
	if v {
		s.putByte(1)
	} else {
		s.putByte(0)
	}
}

func (s *stateBuffer) getBool() bool { return s.getByte() != 0 }

func (s *stateBuffer) putBytes(b []byte) { s.buf = append(s.buf, b...) }

func (s *stateBuffer) getBytes(b []byte) {
	n := copy(b, s.buf[s.pos:])
	s.pos += n
}

func (s *stateBuffer) putUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

func (s *stateBuffer) getUint16() uint16 {
	v := binary.LittleEndian.Uint16(s.buf[s.pos:])
	s.pos += 2
	return v
}

func (s *stateBuffer) putUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

func (s *stateBuffer) getUint32() uint32 {
	v := binary.LittleEndian.Uint32(s.buf[s.pos:])
	s.pos += 4
	return v
}

func (s *stateBuffer) putInt(v int) { s.putUint32(uint32(v)) }

func (s *stateBuffer) getInt() int { return int(s.getUint32()) }
