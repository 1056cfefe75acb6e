package macho

import "github.com/arc-language/core-macho/artifact"

// cpuTypeFor is the pure Target -> CPU_TYPE_* mapping described in spec
// §4.1. Subtype is fixed separately at cpuSubtypeAll for every recognized
// architecture.
func cpuTypeFor(target artifact.Target) uint32 {
	switch target {
	case artifact.X86_64:
		return cpuTypeX86_64
	case artifact.X86:
		return cpuTypeX86
	case artifact.ARM64:
		return cpuTypeARM64
	case artifact.ARMv7:
		return cpuTypeARM
	default:
		return cpuTypeNone
	}
}
