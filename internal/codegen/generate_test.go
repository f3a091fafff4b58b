package codegen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/btdsl/btdsl/pkg/btdsl"
)

// sequenceFixture is spec.md §8 scenario 1: a single extern control node
// wired into a one-tree document, already expressed as the AST JSON an
// upstream collaborator would hand the compiler (internal/astjson).
const sequenceFixture = `{
  "kind": "File",
  "range": {"start": 0, "end": 64},
  "path": "main.ast.json",
  "imports": [],
  "decls": [
    {
      "kind": "ExternNodeDecl",
      "range": {"start": 0, "end": 30},
      "name": "Sequence",
      "category": "control",
      "ports": []
    },
    {
      "kind": "TreeDecl",
      "range": {"start": 32, "end": 64},
      "name": "Main",
      "params": [],
      "body": [
        {
          "kind": "NodeCallStmt",
          "range": {"start": 45, "end": 62},
          "name": "Sequence",
          "args": [],
          "children": [
            {
              "kind": "NodeCallStmt",
              "range": {"start": 55, "end": 60},
              "name": "Wait",
              "args": [
                {"port": "msec", "value": {"kind": "IntLiteral", "range": {"start": 56, "end": 59}, "value": 100, "text": "100"}}
              ],
              "children": []
            }
          ]
        }
      ]
    },
    {
      "kind": "ExternNodeDecl",
      "range": {"start": 0, "end": 0},
      "name": "Wait",
      "category": "action",
      "ports": [
        {"kind": "ExternPort", "range": {"start": 0, "end": 0}, "name": "msec", "dir": "in", "type": {"kind": "PrimaryTypeNode", "range": {"start": 0, "end": 0}, "name": "int32"}}
      ]
    }
  ]
}`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGeneratePerModuleSequence(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "main.ast.json", sequenceFixture)

	result, bag := btdsl.Compile([]string{path}, btdsl.Options{})
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag)

	xml, ok := result.Artifacts[path]
	require.True(t, ok, "no artifact produced for %s", path)

	snaps.MatchSnapshot(t, xml)
}

func TestGenerateEntryTreeSelectsMain(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "main.ast.json", sequenceFixture)

	result, bag := btdsl.Compile([]string{path}, btdsl.Options{EntryTree: "Main"})
	require.False(t, bag.HasErrors())

	xml := result.Artifacts[path]
	require.Contains(t, xml, `main_tree_to_execute="Main"`)
	require.Contains(t, xml, `<BehaviorTree ID="Main">`)
	require.Contains(t, xml, `<Sequence>`)
	require.Contains(t, xml, `<Wait msec="100"/>`)
}
