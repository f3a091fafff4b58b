// Package workspace implements the handle-free half of the language-service
// workspace (spec.md §6): a table of open documents, each analyzed through
// the same middle-end pkg/btdsl drives for a one-shot compile, but kept
// resident so repeated requests (diagnostics, completion, hover,
// definition, document symbols, highlights, semantic tokens) reuse the
// last-analyzed AST instead of re-decoding on every call.
//
// Like pkg/btdsl.Compile, a document's "text" is the AST JSON an upstream
// collaborator built from BT-DSL source (internal/astjson), not BT-DSL
// source text — this package never lexes or parses. An optional embedded
// "source" field carries the original surface text purely for diagnostic
// excerpt rendering (astjson.FileSource).
//
// pkg/lspapi wraps Workspace with the handle table and JSON marshaling the
// specification's external API needs; this package stays in terms of Go
// values so it is independently testable.
package workspace
