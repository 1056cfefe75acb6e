package macho

import "io"

// header is mach_header (32-bit) or mach_header_64 (64-bit); the Reserved
// field is only present, and only written, in the 64-bit container.
type header struct {
	Magic      uint32
	CPUType    uint32
	CPUSubtype uint32
	FileType   uint32
	NCmds      uint32
	SizeOfCmds uint32
	Flags      uint32
	Reserved   uint32
}

// newHeader returns a zeroed header for ctx's container, with only the
// magic number set; the emitter fills in the rest once the load commands
// are known (spec §4.6).
func newHeader(ctx Ctx) header {
	h := header{}
	if ctx.is64() {
		h.Magic = magic64
	} else {
		h.Magic = magic32
	}
	return h
}

func (h header) writeTo(w io.Writer, ctx Ctx) (int64, error) {
	buf := make([]byte, ctx.sizeofHeader())
	ctx.Endian.PutUint32(buf[0:4], h.Magic)
	ctx.Endian.PutUint32(buf[4:8], h.CPUType)
	ctx.Endian.PutUint32(buf[8:12], h.CPUSubtype)
	ctx.Endian.PutUint32(buf[12:16], h.FileType)
	ctx.Endian.PutUint32(buf[16:20], h.NCmds)
	ctx.Endian.PutUint32(buf[20:24], h.SizeOfCmds)
	ctx.Endian.PutUint32(buf[24:28], h.Flags)
	if ctx.is64() {
		ctx.Endian.PutUint32(buf[28:32], h.Reserved)
	}
	n, err := w.Write(buf)
	return int64(n), err
}
