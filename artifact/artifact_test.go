package artifact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-macho/artifact"
)

func TestArtifactAccumulatesInInsertionOrder(t *testing.T) {
	a := artifact.New(artifact.X86_64)

	a.DefineFunction("f1", []byte{0x90}, true)
	a.DefineData("d1", []byte{0x01}, false)
	a.DefineFunction("f2", []byte{0xc3}, false)
	a.DefineImport("malloc", artifact.DeclFunctionImport)
	a.Link("f1", "malloc", artifact.DeclFunctionImport, 1)

	require.Equal(t, artifact.X86_64, a.Target())

	defs := a.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "f1", defs[0].Name)
	assert.True(t, defs[0].Prop.Function)
	assert.True(t, defs[0].Prop.Global)
	assert.Equal(t, "d1", defs[1].Name)
	assert.False(t, defs[1].Prop.Function)
	assert.Equal(t, "f2", defs[2].Name)
	assert.False(t, defs[2].Prop.Global)

	imports := a.Imports()
	require.Len(t, imports, 1)
	assert.Equal(t, "malloc", imports[0].Name)
	assert.Equal(t, artifact.DeclFunctionImport, imports[0].Decl)

	links := a.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "f1", links[0].From.Name)
	assert.Equal(t, "malloc", links[0].To.Name)
	assert.Equal(t, artifact.DeclFunctionImport, links[0].To.Decl)
	assert.Equal(t, uint64(1), links[0].At)
}

func TestTargetString(t *testing.T) {
	cases := map[artifact.Target]string{
		artifact.X86_64:  "x86_64",
		artifact.X86:     "x86",
		artifact.ARM64:   "arm64",
		artifact.ARMv7:   "armv7",
		artifact.Unknown: "unknown",
	}
	for target, want := range cases {
		assert.Equal(t, want, target.String())
	}
}
