package macho

// Mach-O magic numbers (mach/loader.h).
const (
	magic32 uint32 = 0xfeedface
	magic64 uint32 = 0xfeedfacf
)

// CPU type constants (mach/machine.h). Only the handful of architectures
// this backend's Target enum can name are listed; anything else maps to 0.
const (
	cpuTypeX86_64 uint32 = 0x01000007
	cpuTypeX86    uint32 = 0x00000007
	cpuTypeARM64  uint32 = 0x0100000c
	cpuTypeARM    uint32 = 0x0000000c
	cpuTypeNone   uint32 = 0
)

// cpuSubtypeAll is the subtype emitted for every architecture this backend
// supports. Real CPU_SUBTYPE_*_ALL constants differ per architecture (e.g.
// ARM64_ALL is 0, not 3) but the value this backend emits is fixed at 3,
// matching the observed behavior of the implementation this is ported from.
const cpuSubtypeAll uint32 = 3

// mach_header(_64).filetype
const machObject uint32 = 0x1 // MH_OBJECT

// mach_header(_64).flags
const machSubsectionsViaSymbols uint32 = 0x2000 // MH_SUBSECTIONS_VIA_SYMBOLS

// load_command.cmd
const (
	lcSegment   uint32 = 0x1
	lcSegment64 uint32 = 0x19
	lcSymtab    uint32 = 0x2
)

// section(_64).flags: S_REGULAR | S_ATTR_SOME_INSTRUCTIONS | S_ATTR_PURE_INSTRUCTIONS
const sectionFlagsText uint32 = 0x80000400

// Segment / section protection, object-file convention: read+write+execute.
const vmProtAll int32 = 7

// symbol n_type bits (mach/nlist.h)
const (
	nExt      uint8 = 0x01
	nTypeSect uint8 = 0x0e
	nUndf     uint8 = 0x00
)

// noSect is the n_sect value for an undefined symbol.
const noSect uint8 = 0

// Relocation types for x86-64 (mach/reloc.h), the only ones this backend
// emits.
const (
	relocX86_64Signed  uint32 = 1 // X86_64_RELOC_SIGNED
	relocX86_64Branch  uint32 = 2 // X86_64_RELOC_BRANCH
	relocX86_64GOTLoad uint32 = 3 // X86_64_RELOC_GOT_LOAD
)

// Fixed on-disk sizes, little-endian, packed (no struct padding).
const (
	sizeofHeader32         = 28
	sizeofHeader64         = 32
	sizeofSegmentCommand32 = 56
	sizeofSegmentCommand64 = 72
	sizeofSection32        = 68
	sizeofSection64        = 80
	sizeofSymtabCommand    = 24
	sizeofNlist32          = 12
	sizeofNlist64          = 16
	sizeofRelocationInfo   = 8
)

const sectNameLen = 16 // sectname / segname field width, NUL-padded
