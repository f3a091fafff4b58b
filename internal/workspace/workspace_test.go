package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btdsl/btdsl/internal/workspace"
)

const navLibDoc = `{
  "kind": "File",
  "range": {"start": 0, "end": 60},
  "path": "lib.ast.json",
  "imports": [],
  "decls": [
    {
      "kind": "ExternNodeDecl",
      "range": {"start": 0, "end": 30},
      "name": "Sequence",
      "category": "control",
      "ports": []
    }
  ]
}`

const mainDoc = `{
  "kind": "File",
  "range": {"start": 0, "end": 80},
  "path": "main.ast.json",
  "source": "import \"lib.ast.json\";\nglobal speed: int32 = 4;\ntree Main() { Sequence {} }\n",
  "imports": [
    {"kind": "Import", "range": {"start": 0, "end": 24}, "target": "lib.ast.json", "alias": ""}
  ],
  "decls": [
    {
      "kind": "GlobalVarDecl",
      "range": {"start": 25, "end": 49},
      "name": "speed",
      "type": {"kind": "PrimaryTypeNode", "range": {"start": 33, "end": 39}, "name": "int32"},
      "init": {"kind": "IntLiteral", "range": {"start": 45, "end": 46}, "value": 4, "text": "4"}
    },
    {
      "kind": "TreeDecl",
      "range": {"start": 50, "end": 78},
      "name": "Main",
      "params": [],
      "body": [
        {
          "kind": "NodeCallStmt",
          "range": {"start": 63, "end": 76},
          "name": "Sequence",
          "args": [],
          "children": []
        }
      ]
    }
  ]
}`

const brokenDoc = `{
  "kind": "File",
  "range": {"start": 0, "end": 20},
  "path": "broken.ast.json",
  "imports": [],
  "decls": [
    {
      "kind": "TreeDecl",
      "range": {"start": 0, "end": 20},
      "name": "Main",
      "params": [],
      "body": [
        {"kind": "NodeCallStmt", "range": {"start": 5, "end": 18}, "name": "NoSuchNode", "args": [], "children": []}
      ]
    }
  ]
}`

func TestDiagnosticsResolvesAcrossOpenImport(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	result, err := ws.Diagnostics("main.ast.json", []string{"lib.ast.json"})
	require.NoError(t, err)
	assert.Empty(t, result.Items, "expected no diagnostics once the import is available: %+v", result.Items)
}

func TestDiagnosticsWithoutImportAllowlistReportsUnresolved(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	result, err := ws.Diagnostics("main.ast.json", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Items, "import not in the allowlist should surface as unresolved")
}

func TestDiagnosticsDoNotAccumulateAcrossRepeatedCalls(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	first, err := ws.Diagnostics("main.ast.json", []string{"lib.ast.json"})
	require.NoError(t, err)
	second, err := ws.Diagnostics("main.ast.json", []string{"lib.ast.json"})
	require.NoError(t, err)
	assert.Equal(t, len(first.Items), len(second.Items))

	libOnce, err := ws.Diagnostics("lib.ast.json", nil)
	require.NoError(t, err)
	libTwice, err := ws.Diagnostics("lib.ast.json", nil)
	require.NoError(t, err)
	assert.Equal(t, len(libOnce.Items), len(libTwice.Items), "repeated requests must not duplicate an imported document's diagnostics")
}

func TestDiagnosticsReportsUnknownNode(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("broken.ast.json", brokenDoc)

	result, err := ws.Diagnostics("broken.ast.json", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Items)
}

func TestDocumentSymbolsListsTopLevelDecls(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	result, err := ws.DocumentSymbols("main.ast.json")
	require.NoError(t, err)
	require.Len(t, result.Symbols, 2)
	assert.Equal(t, "speed", result.Symbols[0].Name)
	assert.Equal(t, "variable", result.Symbols[0].Kind)
	assert.Equal(t, "Main", result.Symbols[1].Name)
	assert.Equal(t, "tree", result.Symbols[1].Kind)
}

func TestHoverOnNodeCall(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	result, err := ws.Hover("main.ast.json", 65, []string{"lib.ast.json"})
	require.NoError(t, err)
	require.NotNil(t, result.Range)
	assert.Contains(t, result.Contents, "Sequence")
}

func TestDefinitionOnNodeCallJumpsToExternDecl(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	result, err := ws.Definition("main.ast.json", 65, []string{"lib.ast.json"})
	require.NoError(t, err)
	require.Len(t, result.Locations, 1)
	assert.Equal(t, "lib.ast.json", result.Locations[0].URI)
}

func TestCompletionIncludesGlobalsAndNodes(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("lib.ast.json", navLibDoc)
	ws.SetDocument("main.ast.json", mainDoc)

	result, err := ws.Completion("main.ast.json", 70, []string{"lib.ast.json"}, "")
	require.NoError(t, err)

	labels := make(map[string]bool)
	for _, item := range result.Items {
		labels[item.Label] = true
	}
	assert.True(t, labels["speed"], "expected global value in completion set")
	assert.True(t, labels["Sequence"], "expected imported node in completion set")
}

func TestRemoveDocumentDropsIt(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("main.ast.json", mainDoc)
	require.True(t, ws.HasDocument("main.ast.json"))
	ws.RemoveDocument("main.ast.json")
	assert.False(t, ws.HasDocument("main.ast.json"))
}

func TestQueryOnUnknownDocumentIsAnError(t *testing.T) {
	ws := workspace.New()
	_, err := ws.Diagnostics("nope.ast.json", nil)
	assert.Error(t, err)
}

func TestResolveImportsReflectsOpenDocuments(t *testing.T) {
	ws := workspace.New()
	ws.SetDocument("main.ast.json", mainDoc)

	before, err := ws.ResolveImports("main.ast.json", "")
	require.NoError(t, err)
	assert.Empty(t, before.URIs)

	ws.SetDocument("lib.ast.json", navLibDoc)
	after, err := ws.ResolveImports("main.ast.json", "bt-dsl-stdlib")
	require.NoError(t, err)
	assert.Equal(t, []string{"bt-dsl-stdlib", "lib.ast.json"}, after.URIs)
}
