package btdsl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btdsl/btdsl/pkg/btdsl"
)

const mainFixture = `{
  "kind": "File",
  "range": {"start": 0, "end": 40},
  "path": "main.ast.json",
  "imports": [
    {"kind": "Import", "range": {"start": 0, "end": 10}, "target": "./lib.ast.json", "alias": "lib"}
  ],
  "decls": [
    {
      "kind": "TreeDecl",
      "range": {"start": 10, "end": 40},
      "name": "Main",
      "params": [],
      "body": [
        {"kind": "NodeCallStmt", "range": {"start": 20, "end": 36}, "name": "Helper", "args": [], "children": []}
      ]
    }
  ]
}`

const libFixture = `{
  "kind": "File",
  "range": {"start": 0, "end": 40},
  "path": "lib.ast.json",
  "imports": [],
  "decls": [
    {
      "kind": "TreeDecl",
      "range": {"start": 0, "end": 20},
      "name": "Helper",
      "params": [],
      "body": [
        {"kind": "NodeCallStmt", "range": {"start": 5, "end": 18}, "name": "AlwaysSuccess", "args": [], "children": []}
      ]
    },
    {
      "kind": "ExternNodeDecl",
      "range": {"start": 0, "end": 0},
      "name": "AlwaysSuccess",
      "category": "action",
      "ports": []
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileAcrossModuleImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.ast.json", libFixture)
	main := writeFile(t, dir, "main.ast.json", mainFixture)

	result, bag := btdsl.Compile([]string{main}, btdsl.Options{})
	require.False(t, bag.HasErrors(), "diagnostics: %v", bag)

	xml, ok := result.Artifacts[main]
	require.True(t, ok)
	assert.Contains(t, xml, `<BehaviorTree ID="Main">`)
	assert.Contains(t, xml, `<SubTree ID="Helper"/>`)
}

func TestCompileSingleOutputMangling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.ast.json", libFixture)
	main := writeFile(t, dir, "main.ast.json", mainFixture)

	result, bag := btdsl.Compile([]string{main}, btdsl.Options{SingleOutput: true, EntryTree: "Main"})
	require.False(t, bag.HasErrors(), "diagnostics: %v", bag)

	xml := result.Artifacts[main]
	assert.Contains(t, xml, `main_tree_to_execute="Main"`)
	assert.Contains(t, xml, "_SubTree_1_Helper")
}

func TestCompileMissingImportProducesDiagnostic(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.ast.json", mainFixture)

	_, bag := btdsl.Compile([]string{main}, btdsl.Options{})
	assert.True(t, bag.HasErrors())
}

func TestCompileUnreadableFileProducesDiagnostic(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.ast.json")

	result, bag := btdsl.Compile([]string{missing}, btdsl.Options{})
	assert.True(t, bag.HasErrors())
	assert.Empty(t, result.Artifacts)
}
