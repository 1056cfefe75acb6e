package macho

import (
	"io"
	"log/slog"
)

// symbolBuilder is the "SymbolBuilder" of spec §3/§4.2: the fields of a
// Mach-O Nlist entry before they are finalized into a record.
type symbolBuilder struct {
	strtabOffset int
	section      *int // nil = no section (always true for imports)
	global       bool
	isImport     bool
	offset       int
}

// create finalizes a symbolBuilder into an nlistRecord following spec
// §4.2's "SymbolBuilder::create" rules, including the preserved quirk
// that a defined, non-import symbol always has N_SECT OR'd in even though
// the same line runs whether or not a section was actually set (open
// question, spec §9: "the non-import branch also unconditionally ORs in
// N_SECT").
func (b symbolBuilder) create() nlistRecord {
	nType := nUndf
	nSect := uint8(0)
	nValue := uint64(b.offset)

	if b.global {
		nType |= nExt
	} else {
		nType &^= nExt
	}
	if b.section != nil {
		nSect = uint8(*b.section + 1) // ordinal is 1-based
		nType |= nTypeSect
	}
	if b.isImport {
		nSect = noSect
		nType = nExt
		nValue = 0
	} else {
		nType |= nTypeSect
	}

	return nlistRecord{
		NStrx:  uint32(b.strtabOffset),
		NType:  nType,
		NSect:  nSect,
		NDesc:  0,
		NValue: nValue,
	}
}

// nlistRecord is the on-disk symbol table entry, 12 bytes (Nlist32) or 16
// bytes (Nlist64) depending on Ctx.
type nlistRecord struct {
	NStrx  uint32
	NType  uint8
	NSect  uint8
	NDesc  uint16
	NValue uint64
}

func (r nlistRecord) writeTo(w io.Writer, ctx Ctx) (int64, error) {
	buf := make([]byte, ctx.sizeofNlist())
	ctx.Endian.PutUint32(buf[0:4], r.NStrx)
	buf[4] = r.NType
	buf[5] = r.NSect
	ctx.Endian.PutUint16(buf[6:8], r.NDesc)
	if ctx.is64() {
		ctx.Endian.PutUint64(buf[8:16], r.NValue)
	} else {
		ctx.Endian.PutUint32(buf[8:12], uint32(r.NValue))
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// symbolKind is the "SymbolType" of spec §4.2: what an inserted symbol is.
type symbolKind struct {
	defined bool
	section int
	offset  int
	global  bool
}

// definedSymbol builds the Defined variant of symbolKind.
func definedSymbol(section, offset int, global bool) symbolKind {
	return symbolKind{defined: true, section: section, offset: offset, global: global}
}

// undefinedSymbol builds the Undefined variant of symbolKind.
func undefinedSymbol() symbolKind {
	return symbolKind{}
}

// SymbolTable owns a string interner and the two parallel ordered indices
// spec §3 describes: interned-name -> builder, and interned-name ->
// ordinal position in the final symbol table. Symbol ordinals equal
// insertion order, which is why symbolsOrder doubles as both.
type SymbolTable struct {
	log *slog.Logger

	internIndex map[string]int
	internNames []string // id -> name; id 0 is always ""

	symbolsOrder []int // interned ids, in insertion order == final ordinal order
	builders     map[int]*symbolBuilder
	indexes      map[int]int // interned id -> ordinal

	strtableSize int
}

// newSymbolTable creates a table with the empty string at interned-id 0
// and strtableSize primed at 1 for the string table's leading NUL.
func newSymbolTable(log *slog.Logger) *SymbolTable {
	t := &SymbolTable{
		log:          log,
		internIndex:  map[string]int{"": 0},
		internNames:  []string{""},
		builders:     map[int]*symbolBuilder{},
		indexes:      map[int]int{},
		strtableSize: 1,
	}
	return t
}

// Len returns the current symbol count.
func (t *SymbolTable) Len() int {
	return len(t.symbolsOrder)
}

// SizeofStrtable returns the current size, in bytes, the string table will
// occupy when serialized.
func (t *SymbolTable) SizeofStrtable() int {
	return t.strtableSize
}

// Offset returns the recorded in-section offset of a defined symbol.
func (t *SymbolTable) Offset(name string) (int, bool) {
	id, ok := t.internIndex[name]
	if !ok {
		return 0, false
	}
	b, ok := t.builders[id]
	if !ok {
		return 0, false
	}
	return b.offset, true
}

// Index returns the symbol's ordinal in the final symbol table.
func (t *SymbolTable) Index(name string) (int, bool) {
	id, ok := t.internIndex[name]
	if !ok {
		return 0, false
	}
	idx, ok := t.indexes[id]
	return idx, ok
}

// intern returns name's interned id, allocating a new one if it has not
// been seen before. It reports whether the id was freshly allocated,
// mirroring the Rust source's "name_index == last_index" check.
func (t *SymbolTable) intern(name string) (id int, fresh bool) {
	if id, ok := t.internIndex[name]; ok {
		return id, false
	}
	id = len(t.internNames)
	t.internNames = append(t.internNames, name)
	t.internIndex[name] = id
	return id, true
}

// Insert adds a new symbol to the table. A symbol is inserted at most once
// per name: re-inserts are silently ignored, first definition wins (spec
// §3 invariants, §7 "duplicate symbol insert").
func (t *SymbolTable) Insert(name string, kind symbolKind) {
	lastIndex := len(t.internNames)
	id, fresh := t.intern(name)
	if t.log != nil {
		t.log.Debug("symtab insert", "name", name, "last_index", lastIndex, "name_index", id, "fresh", fresh)
	}
	if !fresh {
		return
	}

	var b *symbolBuilder
	if kind.defined {
		section := kind.section
		b = &symbolBuilder{
			strtabOffset: t.strtableSize,
			global:       kind.global,
			offset:       kind.offset,
			section:      &section,
		}
	} else {
		b = &symbolBuilder{
			strtabOffset: t.strtableSize,
			global:       true,
			isImport:     true,
		}
	}

	ordinal := len(t.symbolsOrder)
	t.builders[id] = b
	t.symbolsOrder = append(t.symbolsOrder, id)
	t.indexes[id] = ordinal

	// 1 NUL terminator + 1 leading underscore, added at serialization time.
	t.strtableSize += len(name) + 2
}

// finalize returns the Nlist records in symbol-table order.
func (t *SymbolTable) finalize() []nlistRecord {
	records := make([]nlistRecord, 0, len(t.symbolsOrder))
	for _, id := range t.symbolsOrder {
		records = append(records, t.builders[id].create())
	}
	return records
}

// writeStrtable writes the leading NUL and then, for every interned name
// after slot 0, an underscore, the name bytes, and a NUL (spec §4.5 step
// 7, §6 "Fixed constants").
func (t *SymbolTable) writeStrtable(w io.Writer) (int64, error) {
	var written int64
	n, err := w.Write([]byte{0})
	written += int64(n)
	if err != nil {
		return written, err
	}
	for _, name := range t.internNames[1:] {
		n, err = w.Write([]byte{'_'})
		written += int64(n)
		if err != nil {
			return written, err
		}
		n, err = w.Write([]byte(name))
		written += int64(n)
		if err != nil {
			return written, err
		}
		n, err = w.Write([]byte{0})
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
