// Package codegen implements component 12 of the middle-end: deterministic
// lowering of a fully annotated module to a BT.CPP-compatible XML document
// (spec.md §4.10). It assumes every earlier pass has already run to
// completion without error — the generator does not re-check anything the
// type checker, CFG builder, or safety analyses already own, it only
// translates.
//
// Two entry points mirror the two modes of §4.10: Generate emits one
// <root> per module (every tree the module declares plus the extern/tree models it
// needs); GenerateSingleOutput starts from one entry tree and walks
// SubTree calls transitively across module boundaries, mangling imported
// tree IDs so they cannot collide with the entry module's own names.
package codegen
