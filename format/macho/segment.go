package macho

import (
	"io"
	"log/slog"

	"github.com/arc-language/core-macho/artifact"
)

const (
	codeSectionIndex = 0
	dataSectionIndex = 1
	numSegmentSects  = 2
)

// segmentBuilder is the "SegmentBuilder" of spec §3/§4.3: the two sections
// of the single segment every object this backend emits has, plus the
// bookkeeping the layout solver needs.
type segmentBuilder struct {
	sections [numSegmentSects]sectionBuilder
	// loadCommandEndOffset is fixed at sizeof(Header)+textSize+dataSize
	// during the build pass (spec §4.3); it does not include the load
	// commands, which the layout solver adds to it to get the symbol
	// table offset.
	loadCommandEndOffset int
	dataSize             int
}

// buildSection implements spec §4.3's per-section half of the build pass:
// insert each definition as Defined at the running symbol_offset, then
// freeze the section at the accumulated size/offset/addr.
func buildSection(symtab *SymbolTable, sectname, segname string, offset, addr, symbolOffset *int, sectionIndex int, defs []artifact.Definition) sectionBuilder {
	localSize := 0
	for _, def := range defs {
		localSize += len(def.Data)
		symtab.Insert(def.Name, definedSymbol(sectionIndex, *symbolOffset, def.Prop.Global))
		*symbolOffset += len(def.Data)
	}
	section := newSectionBuilder(sectname, segname, uint64(localSize)).
		withOffset(uint64(*offset)).
		withAddr(uint64(*addr))
	*offset += localSize
	*addr += localSize
	return section
}

// newSegmentBuilder runs the build pass described in spec §4.3 over the
// code and data definitions New has already partitioned: insert each
// into the symbol table with a
// shared symbol_offset counter that is deliberately NOT reset between the
// text and data sections (spec §9, "Shared symbol_offset across
// sections" — data symbol offsets are biased by total text size, which
// this implementation preserves), then insert every import as Undefined.
func newSegmentBuilder(a *artifact.Artifact, code, data []artifact.Definition, symtab *SymbolTable, ctx Ctx, log *slog.Logger) segmentBuilder {
	offset := ctx.sizeofHeader()
	size := 0
	symbolOffset := 0

	text := buildSection(symtab, "__text", "__TEXT", &offset, &size, &symbolOffset, codeSectionIndex, code)
	dataSec := buildSection(symtab, "__data", "__DATA", &offset, &size, &symbolOffset, dataSectionIndex, data)

	for _, imp := range a.Imports() {
		symtab.Insert(imp.Name, undefinedSymbol())
	}

	if log != nil {
		log.Debug("segment built", "size", size, "symtab_load_command_offset", offset)
	}

	return segmentBuilder{
		sections:             [numSegmentSects]sectionBuilder{text, dataSec},
		loadCommandEndOffset: offset,
		dataSize:             size,
	}
}

// segmentLoadCommandSize returns sizeof(segment command) + numSegmentSects *
// sizeof(section), the size used throughout the layout solver (spec
// §4.3, §4.5 step 1).
func (ctx Ctx) segmentLoadCommandSize() int {
	return ctx.sizeofSegmentCommand() + numSegmentSects*ctx.sizeofSection()
}

// segmentCommand is LC_SEGMENT (32-bit) or LC_SEGMENT_64 (64-bit); it is
// constructed over the already-serialized section headers (spec §4.5).
type segmentCommand struct {
	Segname  string
	VMAddr   uint64
	VMSize   uint64
	FileOff  uint64
	FileSize uint64
	MaxProt  int32
	InitProt int32
	NSects   uint32
	Flags    uint32

	sectionData []byte
}

func (c segmentCommand) writeTo(w io.Writer, ctx Ctx) (int64, error) {
	cmd := lcSegment
	if ctx.is64() {
		cmd = lcSegment64
	}
	cmdsize := uint32(ctx.sizeofSegmentCommand() + len(c.sectionData))

	buf := make([]byte, ctx.sizeofSegmentCommand())
	ctx.Endian.PutUint32(buf[0:4], uint32(cmd))
	ctx.Endian.PutUint32(buf[4:8], cmdsize)
	n := 8
	var segname [sectNameLen]byte
	copy(segname[:], c.Segname)
	n += copy(buf[n:], segname[:])

	if ctx.is64() {
		ctx.Endian.PutUint64(buf[n:], c.VMAddr)
		n += 8
		ctx.Endian.PutUint64(buf[n:], c.VMSize)
		n += 8
		ctx.Endian.PutUint64(buf[n:], c.FileOff)
		n += 8
		ctx.Endian.PutUint64(buf[n:], c.FileSize)
		n += 8
	} else {
		ctx.Endian.PutUint32(buf[n:], uint32(c.VMAddr))
		n += 4
		ctx.Endian.PutUint32(buf[n:], uint32(c.VMSize))
		n += 4
		ctx.Endian.PutUint32(buf[n:], uint32(c.FileOff))
		n += 4
		ctx.Endian.PutUint32(buf[n:], uint32(c.FileSize))
		n += 4
	}
	ctx.Endian.PutUint32(buf[n:], uint32(c.MaxProt))
	n += 4
	ctx.Endian.PutUint32(buf[n:], uint32(c.InitProt))
	n += 4
	ctx.Endian.PutUint32(buf[n:], c.NSects)
	n += 4
	ctx.Endian.PutUint32(buf[n:], c.Flags)
	n += 4

	var written int64
	wn, err := w.Write(buf[:n])
	written += int64(wn)
	if err != nil {
		return written, err
	}
	wn, err = w.Write(c.sectionData)
	written += int64(wn)
	return written, err
}

func (c segmentCommand) cmdsize(ctx Ctx) int {
	return ctx.sizeofSegmentCommand() + len(c.sectionData)
}
