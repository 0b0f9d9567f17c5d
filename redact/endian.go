package redact

import "encoding/binary"

// packer encodes and decodes the fixed-width integers that make up a TIFF
// entry stream under a run-time byte order flag. It is deliberately thin —
// a direct wrapper of encoding/binary.ByteOrder — mirroring the teacher's
// use of a bare binary.ByteOrder field on its COG/Config writer type.
type packer struct {
	order binary.ByteOrder
}

func newPacker(bigEndian bool) packer {
	if bigEndian {
		return packer{order: binary.BigEndian}
	}
	return packer{order: binary.LittleEndian}
}

func (p packer) byteOrderMark() [2]byte {
	if p.order == binary.BigEndian {
		return [2]byte{'M', 'M'}
	}
	return [2]byte{'I', 'I'}
}

func (p packer) putU16(b []byte, v uint16) { p.order.PutUint16(b, v) }
func (p packer) putU32(b []byte, v uint32) { p.order.PutUint32(b, v) }
func (p packer) putU64(b []byte, v uint64) { p.order.PutUint64(b, v) }

func (p packer) u16(b []byte) uint16 { return p.order.Uint16(b) }
func (p packer) u32(b []byte) uint32 { return p.order.Uint32(b) }
func (p packer) u64(b []byte) uint64 { return p.order.Uint64(b) }
