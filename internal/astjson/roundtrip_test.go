package astjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btdsl/btdsl/internal/ast"
)

const roundtripFixture = `{
  "kind": "File",
  "range": {"start": 0, "end": 120},
  "path": "nav.ast.json",
  "source": "extern control Sequence();\ntree Main() { Sequence {} }\n",
  "imports": [
    {"kind": "Import", "range": {"start": 0, "end": 10}, "target": "./util.ast.json", "alias": "util"}
  ],
  "decls": [
    {
      "kind": "ExternNodeDecl",
      "range": {"start": 0, "end": 27},
      "name": "Sequence",
      "category": "control",
      "ports": []
    },
    {
      "kind": "TreeDecl",
      "range": {"start": 28, "end": 56},
      "name": "Main",
      "params": [],
      "body": [
        {
          "kind": "NodeCallStmt",
          "range": {"start": 42, "end": 54},
          "name": "Sequence",
          "args": [],
          "children": []
        }
      ]
    }
  ]
}`

func TestDecodeThenEncodeRoundTrips(t *testing.T) {
	file, _, err := Decode([]byte(roundtripFixture))
	require.NoError(t, err)
	require.Equal(t, "nav.ast.json", file.Path)
	require.Len(t, file.Imports, 1)
	assert.Equal(t, "./util.ast.json", file.Imports[0].Target)
	assert.Equal(t, "util", file.Imports[0].Alias)
	require.Len(t, file.Decls, 2)

	encoded, err := Encode(file)
	require.NoError(t, err)

	again, _, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, file.Path, again.Path)
	require.Len(t, again.Decls, 2)

	extern, ok := again.Decls[0].(*ast.ExternNodeDecl)
	require.True(t, ok)
	assert.Equal(t, "Sequence", extern.Name)
	assert.Equal(t, ast.CategoryControl, extern.Category)

	tree, ok := again.Decls[1].(*ast.TreeDecl)
	require.True(t, ok)
	assert.Equal(t, "Main", tree.Name)
	require.Len(t, tree.Body, 1)
}

func TestFileSourceReadsEmbeddedSource(t *testing.T) {
	source, ok, err := FileSource([]byte(roundtripFixture))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, source, "extern control Sequence();")
}

func TestFileSourceAbsentIsNotAnError(t *testing.T) {
	source, ok, err := FileSource([]byte(`{"kind":"File","range":{"start":0,"end":0},"path":"p","imports":[],"decls":[]}`))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, source)
}

func TestDecodeRejectsNonFileRoot(t *testing.T) {
	_, _, err := Decode([]byte(`{"kind":"TreeDecl","range":{"start":0,"end":0}}`))
	assert.Error(t, err)
}

func TestEncodeWithSourceRoundTripsSource(t *testing.T) {
	file, _, err := Decode([]byte(roundtripFixture))
	require.NoError(t, err)

	encoded, err := EncodeWithSource(file, "hand-written source")
	require.NoError(t, err)

	source, ok, err := FileSource(encoded)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hand-written source", source)
}
