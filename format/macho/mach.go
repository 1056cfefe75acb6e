// Package macho implements the layout solver and binary serializer for a
// 32/64-bit MH_OBJECT Mach-O relocatable object file (spec §1, §4.5).
package macho

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/arc-language/core-macho/artifact"
)

// Option configures a Mach before it computes its layout.
type Option func(*machOptions)

type machOptions struct {
	trace io.Writer
}

// WithTrace attaches a machine-readable (JSON) trace sink alongside the
// default human-readable stderr log, fanned out via slog-multi (spec
// §4.2a).
func WithTrace(w io.Writer) Option {
	return func(o *machOptions) {
		o.trace = w
	}
}

// Mach is a Mach-O object file container: the "Mach" type of spec §3/§4.5.
// It is single-use — New partitions and consumes the artifact's
// definitions, and WriteTo/ToBytes may only be called once per Mach value
// (spec §5).
type Mach struct {
	ctx     Ctx
	target  artifact.Target
	symtab  *SymbolTable
	segment segmentBuilder

	relocations [][]relocationRecord
	code        []artifact.Definition
	data        []artifact.Definition

	log *slog.Logger
}

// New builds a Mach from an artifact: partitions its definitions into
// code and data (preserving insertion order within each partition, spec
// §9), builds the symbol table and segment, and computes every
// relocation up front (spec §4.3, §4.4).
func New(a *artifact.Artifact, opts ...Option) *Mach {
	var o machOptions
	for _, opt := range opts {
		opt(&o)
	}
	log := newLogger(o.trace)

	target := a.Target()
	ctx := CtxFromTarget(target)

	var code, data []artifact.Definition
	for _, def := range a.Definitions() {
		if def.Prop.Function {
			code = append(code, def)
		} else {
			data = append(data, def)
		}
	}

	symtab := newSymbolTable(log)
	segment := newSegmentBuilder(a, code, data, symtab, ctx, log)
	relocations := buildRelocations(a, symtab, log)

	return &Mach{
		ctx:         ctx,
		target:      target,
		symtab:      symtab,
		segment:     segment,
		relocations: relocations,
		code:        code,
		data:        data,
		log:         log,
	}
}

// ToBytes builds and serializes artifact in one call (spec §6 "to_bytes").
func ToBytes(a *artifact.Artifact, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := New(a, opts...).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Mach) header(sizeofCmds uint32) header {
	h := newHeader(m.ctx)
	h.FileType = machObject
	h.Flags = machSubsectionsViaSymbols
	h.CPUType = cpuTypeFor(m.target)
	h.CPUSubtype = cpuSubtypeAll
	h.NCmds = 2
	h.SizeOfCmds = sizeofCmds
	return h
}

// WriteTo performs the layout pass described in spec §4.5 — computing the
// six mutually-dependent file offsets in a single forward pass before any
// byte is written — then streams header, load commands, code, data,
// symbol table, string table, relocations, and a trailing NUL to w (spec
// §4.5 "Emission order", §6). It implements io.WriterTo; this backend
// never needs to seek, so that is the full sink contract it requires
// (spec §9, sink type).
func (m *Mach) WriteTo(w io.Writer) (int64, error) {
	ctx := m.ctx

	segmentLCSize := ctx.segmentLoadCommandSize()
	symtabLCSize := newSymtabCommand().cmdsize()
	sizeofLoadCommands := segmentLCSize + symtabLCSize
	firstSectionOffset := ctx.sizeofHeader() + sizeofLoadCommands
	symtableOffset := m.segment.loadCommandEndOffset + sizeofLoadCommands
	strtableOffset := symtableOffset + m.symtab.Len()*ctx.sizeofNlist()
	relocationOffsetStart := strtableOffset + m.symtab.SizeofStrtable()

	m.log.Debug("layout",
		"first_section_offset", firstSectionOffset,
		"symtable_offset", symtableOffset,
		"strtable_offset", strtableOffset,
		"relocation_offset_start", relocationOffsetStart)

	// Patch each section's file offset and, for sections with a
	// relocation bucket, reloff/nreloc (spec §4.5).
	sectionRecords := make([]sectionRecord, numSegmentSects)
	sectionOffset := firstSectionOffset
	relocationOffset := relocationOffsetStart
	for idx, sb := range m.segment.sections {
		rec := sb.create()
		rec.offset = uint32(sectionOffset)
		sectionOffset += int(rec.size)
		if idx < len(m.relocations) {
			nrelocs := len(m.relocations[idx])
			rec.nreloc = uint32(nrelocs)
			rec.reloff = uint32(relocationOffset)
			relocationOffset += nrelocs * sizeofRelocationInfo
		}
		sectionRecords[idx] = rec
	}

	var sectionBuf bytes.Buffer
	for _, rec := range sectionRecords {
		if _, err := rec.writeTo(&sectionBuf, ctx); err != nil {
			return 0, errors.Wrap(err, "serialize section header")
		}
	}
	rawSections := sectionBuf.Bytes()

	segmentCmd := segmentCommand{
		Segname:     "",
		VMAddr:      0,
		VMSize:      uint64(m.segment.dataSize),
		FileOff:     uint64(firstSectionOffset),
		FileSize:    uint64(m.segment.dataSize),
		MaxProt:     vmProtAll,
		InitProt:    vmProtAll,
		NSects:      numSegmentSects,
		Flags:       0,
		sectionData: rawSections,
	}

	symtabCmd := newSymtabCommand()
	symtabCmd.Symoff = uint32(symtableOffset)
	symtabCmd.Nsyms = uint32(m.symtab.Len())
	symtabCmd.Stroff = uint32(strtableOffset)
	symtabCmd.Strsize = uint32(m.symtab.SizeofStrtable())

	hdr := m.header(uint32(sizeofLoadCommands))

	var written int64
	write := func(n int64, err error) error {
		written += n
		return err
	}

	if err := write(hdr.writeTo(w, ctx)); err != nil {
		return written, errors.Wrap(err, "write header")
	}
	if err := write(segmentCmd.writeTo(w, ctx)); err != nil {
		return written, errors.Wrap(err, "write segment load command")
	}
	if err := write(symtabCmd.writeTo(w)); err != nil {
		return written, errors.Wrap(err, "write symtab load command")
	}

	for _, def := range m.code {
		n, err := w.Write(def.Data)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write code")
		}
	}
	for _, def := range m.data {
		n, err := w.Write(def.Data)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write data")
		}
	}

	// written now covers header + load commands + every code/data byte,
	// so it must land exactly on symtableOffset before the symbol table
	// is emitted; unlike a check built from the same size constants on
	// both sides, this compares against bytes actually produced by the
	// writers above (spec §4.5, §7 "internal layout bug").
	if written != int64(symtableOffset) {
		panic(fmt.Sprintf("macho: internal layout invariant violated: wrote %d bytes before symtable, want symtable_offset=%d", written, symtableOffset))
	}

	for _, rec := range m.symtab.finalize() {
		if err := write(rec.writeTo(w, ctx)); err != nil {
			return written, errors.Wrap(err, "write symbol table")
		}
	}

	if err := write(m.symtab.writeStrtable(w)); err != nil {
		return written, errors.Wrap(err, "write string table")
	}

	for _, bucket := range m.relocations {
		for _, rec := range bucket {
			if err := write(rec.writeTo(w)); err != nil {
				return written, errors.Wrap(err, "write relocations")
			}
		}
	}

	n, err := w.Write([]byte{0})
	written += int64(n)
	if err != nil {
		return written, errors.Wrap(err, "write trailing NUL")
	}

	return written, nil
}
