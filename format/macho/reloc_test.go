package macho

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-macho/artifact"
)

func TestDeclRelocTypeTable(t *testing.T) {
	cases := []struct {
		decl         artifact.Decl
		wantType     uint32
		wantAbsolute bool
	}{
		{artifact.DeclFunction, relocX86_64Branch, false},
		{artifact.DeclData, relocX86_64Signed, false},
		{artifact.DeclCString, relocX86_64Signed, false},
		{artifact.DeclFunctionImport, relocX86_64Branch, false},
		{artifact.DeclDataImport, relocX86_64GOTLoad, false},
	}
	for _, c := range cases {
		gotType, gotAbsolute := declRelocType(c.decl)
		assert.Equal(t, c.wantType, gotType)
		assert.Equal(t, c.wantAbsolute, gotAbsolute)
	}
}

func TestRelocationBuilderPCRelativeBitfields(t *testing.T) {
	rec := relocationBuilder{symbol: 5, offset: 12, absolute: false, rtype: relocX86_64Branch}.create()

	assert.EqualValues(t, 12, rec.RAddress)
	assert.EqualValues(t, 5, rec.RInfo&0xffffff)
	assert.EqualValues(t, 1, (rec.RInfo>>24)&0x1) // r_pcrel
	assert.EqualValues(t, 2, (rec.RInfo>>25)&0x3) // r_length
	assert.EqualValues(t, 1, (rec.RInfo>>27)&0x1) // r_extern
	assert.EqualValues(t, relocX86_64Branch, (rec.RInfo>>28)&0xf)
}

func TestRelocationRecordAlwaysLittleEndian(t *testing.T) {
	rec := relocationRecord{RAddress: -1, RInfo: 0x12345678}

	var buf bytes.Buffer
	n, err := rec.writeTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, sizeofRelocationInfo, n)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0x78, 0x56, 0x34, 0x12}, buf.Bytes())
}

func TestBuildRelocationsSkipsLinkWithMissingSourceSymbol(t *testing.T) {
	a := artifact.New(artifact.X86_64)
	a.DefineImport("g", artifact.DeclFunctionImport)
	a.Link("never_defined", "g", artifact.DeclFunctionImport, 0)

	symtab := newSymbolTable(nil)
	symtab.Insert("g", undefinedSymbol())

	buckets := buildRelocations(a, symtab, nil)
	require.Len(t, buckets, 1)
	assert.Empty(t, buckets[0])
}

func TestBuildRelocationsKeepsOneBucketOnly(t *testing.T) {
	a := artifact.New(artifact.X86_64)
	a.DefineFunction("f", []byte{0x90}, true)
	a.DefineData("d", []byte{0x00}, true)
	a.DefineImport("g", artifact.DeclFunctionImport)
	a.Link("f", "g", artifact.DeclFunctionImport, 0)
	a.Link("d", "g", artifact.DeclFunctionImport, 0)

	symtab := newSymbolTable(nil)
	symtab.Insert("f", definedSymbol(0, 0, true))
	symtab.Insert("d", definedSymbol(1, 0, true))
	symtab.Insert("g", undefinedSymbol())

	buckets := buildRelocations(a, symtab, nil)
	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0], 2)
}
