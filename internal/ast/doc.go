// Package ast defines the Abstract Syntax Tree node types for BT-DSL.
//
// The AST is produced upstream (lexer plus a tree-sitter-driven builder,
// outside this module's scope) and handed to this package's node types
// fully formed, with accurate byte ranges. This package owns only the node
// shapes and the arena that assigns nodes stable identity; what successive
// compiler passes work out about a node is kept in internal/sema's side
// table, not on the node.
//
// Node categories:
//   - Declarations: import, extern type, type alias, extern node, global
//     var, global const, tree.
//   - Statements: node call, assignment, blackboard var decl, local const.
//   - Expressions: literals, var ref, binary, unary, cast, index, array
//     literal, array-repeat, vec-macro.
//   - Type nodes: primary, static array, dynamic array, infer (_), wrapper
//     (nullable).
//   - Support nodes: argument, inline blackboard decl, precondition,
//     parameter decl, extern port, behavior attribute.
//
// Nodes carry no back-pointer fields: resolved symbols, resolved types,
// resolved node symbols and constant values live in the maps of sema.Info,
// keyed by node.
package ast
