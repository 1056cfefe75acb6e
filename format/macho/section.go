package macho

import "io"

// sectionBuilder accumulates the fields of a section (spec §3
// "SectionBuilder") before it is frozen into a sectionRecord for
// serialization. Names are at most 15 bytes plus a NUL, enforced when the
// record is built (truncation rather than a panic: a Mach-O section name
// longer than __text/__data never occurs in this backend's own usage, but
// a misbehaving caller should get a valid, if truncated, object file
// rather than a crash).
type sectionBuilder struct {
	sectname string
	segname  string
	size     uint64
	offset   uint64
	addr     uint64
	align    uint32
}

func newSectionBuilder(sectname, segname string, size uint64) sectionBuilder {
	return sectionBuilder{sectname: sectname, segname: segname, size: size, align: 4}
}

func (b sectionBuilder) withOffset(offset uint64) sectionBuilder {
	b.offset = offset
	return b
}

func (b sectionBuilder) withAddr(addr uint64) sectionBuilder {
	b.addr = addr
	return b
}

// sectionRecord is the on-disk section (or section_64) header. reloff and
// nreloc start at zero and are patched by the layout solver once every
// section's relocation bucket is known (spec §4.5).
type sectionRecord struct {
	sectname  [sectNameLen]byte
	segname   [sectNameLen]byte
	addr      uint64
	size      uint64
	offset    uint32
	align     uint32
	reloff    uint32
	nreloc    uint32
	flags     uint32
	reserved1 uint32
	reserved2 uint32
	reserved3 uint32 // 64-bit only
}

func (b sectionBuilder) create() sectionRecord {
	var rec sectionRecord
	copy(rec.sectname[:sectNameLen-1], b.sectname)
	copy(rec.segname[:sectNameLen-1], b.segname)
	rec.addr = b.addr
	rec.size = b.size
	rec.offset = uint32(b.offset)
	rec.align = b.align
	rec.flags = sectionFlagsText
	return rec
}

func (r sectionRecord) writeTo(w io.Writer, ctx Ctx) (int64, error) {
	buf := make([]byte, ctx.sizeofSection())
	n := copy(buf, r.sectname[:])
	n += copy(buf[n:], r.segname[:])
	if ctx.is64() {
		ctx.Endian.PutUint64(buf[n:], r.addr)
		n += 8
		ctx.Endian.PutUint64(buf[n:], r.size)
		n += 8
	} else {
		ctx.Endian.PutUint32(buf[n:], uint32(r.addr))
		n += 4
		ctx.Endian.PutUint32(buf[n:], uint32(r.size))
		n += 4
	}
	ctx.Endian.PutUint32(buf[n:], r.offset)
	n += 4
	ctx.Endian.PutUint32(buf[n:], r.align)
	n += 4
	ctx.Endian.PutUint32(buf[n:], r.reloff)
	n += 4
	ctx.Endian.PutUint32(buf[n:], r.nreloc)
	n += 4
	ctx.Endian.PutUint32(buf[n:], r.flags)
	n += 4
	ctx.Endian.PutUint32(buf[n:], r.reserved1)
	n += 4
	ctx.Endian.PutUint32(buf[n:], r.reserved2)
	n += 4
	if ctx.is64() {
		ctx.Endian.PutUint32(buf[n:], r.reserved3)
		n += 4
	}
	written, err := w.Write(buf[:n])
	return int64(written), err
}
