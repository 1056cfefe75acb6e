package macho

import (
	"io"
	"log/slog"

	"github.com/arc-language/core-macho/artifact"
)

// relocationBuilder is the "RelocationBuilder" of spec §3/§4.4.
type relocationBuilder struct {
	symbol   int // target symbol ordinal
	offset   int // relocation_offset
	absolute bool
	rtype    uint32
}

// create packs the relocation into its on-disk r_info/r_address pair,
// following the bitfield layout of spec §4.4: r_symbolnum[0:24),
// r_pcrel[24], r_length[25:27), r_extern[27], r_type[28:32), little-endian.
func (b relocationBuilder) create() relocationRecord {
	rSymbolnum := uint32(b.symbol)
	var rPcrel uint32
	if !b.absolute {
		rPcrel = 1
	}
	rLength := uint32(2)
	if b.absolute {
		rLength = 3
	}
	const rExtern = uint32(1)

	rInfo := rSymbolnum |
		(rPcrel << 24) |
		(rLength << 25) |
		(rExtern << 27) |
		(b.rtype << 28)

	return relocationRecord{
		RAddress: int32(b.offset),
		RInfo:    rInfo,
	}
}

// relocationRecord is the on-disk relocation_info, always 8 bytes,
// written little-endian regardless of target (spec §4.4, §6).
type relocationRecord struct {
	RAddress int32
	RInfo    uint32
}

func (r relocationRecord) writeTo(w io.Writer) (int64, error) {
	var buf [sizeofRelocationInfo]byte
	leEndian.PutUint32(buf[0:4], uint32(r.RAddress))
	leEndian.PutUint32(buf[4:8], r.RInfo)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// declRelocType maps a Link's target declaration to the x86-64 relocation
// type it needs (spec §4.4 table).
func declRelocType(decl artifact.Decl) (rtype uint32, absolute bool) {
	switch decl {
	case artifact.DeclFunction:
		return relocX86_64Branch, false
	case artifact.DeclData, artifact.DeclCString:
		return relocX86_64Signed, false
	case artifact.DeclFunctionImport:
		return relocX86_64Branch, false
	case artifact.DeclDataImport:
		return relocX86_64GOTLoad, false
	default:
		return relocX86_64Signed, false
	}
}

// buildRelocations walks the artifact's links and produces a single
// relocation bucket, for the text section (ordinal 0); links from data
// symbols land in it too, and no data-section bucket is produced (spec
// §4.4 "Single relocation bucket"). A link whose
// source or target symbol is missing from symtab is logged and dropped;
// emission continues (spec §7).
func buildRelocations(a *artifact.Artifact, symtab *SymbolTable, log *slog.Logger) [][]relocationRecord {
	var text []relocationRecord
	for _, link := range a.Links() {
		rtype, absolute := declRelocType(link.To.Decl)

		fromOffset, okFrom := symtab.Offset(link.From.Name)
		toIndex, okTo := symtab.Index(link.To.Name)
		if !okFrom || !okTo {
			if log != nil {
				log.Error("relocation has a missing symbol",
					"from", link.From.Name, "to", link.To.Name, "at", link.At)
			}
			continue
		}

		rec := relocationBuilder{
			symbol:   toIndex,
			offset:   fromOffset + int(link.At),
			absolute: absolute,
			rtype:    rtype,
		}.create()
		text = append(text, rec)
	}
	return [][]relocationRecord{text}
}
