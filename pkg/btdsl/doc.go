// Package btdsl is the public compiler driver (§6 "Compiler driver"): it
// chains every middle-end pass over a module graph built from the upstream
// collaborator's AST JSON documents (internal/astjson) and hands the result
// to internal/codegen. cmd/btdsl is a thin caller of Compile;
// internal/workspace does not call Compile and runs its own pass sequence.
package btdsl
