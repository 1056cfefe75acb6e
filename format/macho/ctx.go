package macho

import (
	"encoding/binary"

	"github.com/arc-language/core-macho/artifact"
)

// Ctx carries the width/endianness a Target implies. Every size and
// serialize operation in this package takes one, so a single code path
// handles both 32- and 64-bit containers.
type Ctx struct {
	Container Container
	Endian    binary.ByteOrder
}

// leEndian is used for the structures spec §4.5/§6 require to always be
// little-endian regardless of target: the symtab load command and
// relocation records. Nlist records follow the Ctx's own endianness.
var leEndian = binary.LittleEndian

// Container is the pointer width of the object being emitted.
type Container int

const (
	Container32 Container = iota
	Container64
)

// CtxFromTarget derives a Ctx from a Target. All architectures this
// backend names (x86-64, x86, arm64, armv7) are little-endian on Darwin;
// Unknown defaults to the 64-bit little-endian container, the most common
// case, rather than failing outright — CPU type mapping (not container
// selection) is where an unrecognized target becomes visible (cputype 0).
func CtxFromTarget(target artifact.Target) Ctx {
	switch target {
	case artifact.X86, artifact.ARMv7:
		return Ctx{Container: Container32, Endian: binary.LittleEndian}
	default:
		return Ctx{Container: Container64, Endian: binary.LittleEndian}
	}
}

func (c Ctx) is64() bool {
	return c.Container == Container64
}

func (c Ctx) sizeofHeader() int {
	if c.is64() {
		return sizeofHeader64
	}
	return sizeofHeader32
}

func (c Ctx) sizeofSegmentCommand() int {
	if c.is64() {
		return sizeofSegmentCommand64
	}
	return sizeofSegmentCommand32
}

func (c Ctx) sizeofSection() int {
	if c.is64() {
		return sizeofSection64
	}
	return sizeofSection32
}

func (c Ctx) sizeofNlist() int {
	if c.is64() {
		return sizeofNlist64
	}
	return sizeofNlist32
}
