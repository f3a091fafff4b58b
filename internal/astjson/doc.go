// Package astjson is the boundary between this repo and its upstream
// collaborator: a lexer/CST builder that is deliberately out of scope here
// (§1, §9 of the specification — "this repo consumes an already-built AST
// with byte ranges"). The upstream tool hands over one JSON document per
// source file; Decode turns that document into the *ast.File/*ast.Arena
// pair every later pass expects, and Encode is its inverse, used by the
// round-trip test helper the specification's Testable Properties section
// asks for (cheaper than a surface-syntax re-emission, since this module
// never builds surface syntax).
//
// The schema is a tagged union: every node is a JSON object carrying a
// "kind" field naming its Go type and a "range" field ({"start","end"}
// byte offsets), plus the node's own fields spelled in lowerCamelCase.
// Enumerations are spelled as their surface keyword, not their integer
// value, so the JSON stays readable and stable across a future reordering
// of the Go iota blocks.
package astjson
