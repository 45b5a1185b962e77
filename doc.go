// Package questicle is an embeddable scripting language for game
// logic: a small dynamically-executed language with optional static
// type annotations, a tree-walking interpreter, and a comment-
// preserving source formatter.
//
// The pipeline is lexer -> parser -> (checker | interpreter). The
// checker is advisory: its diagnostics never block execution. Scripts
// talk to the embedding application only through the HostAPI bridge.
package questicle

// Version is the release version reported by the qk tools.
const Version = "0.3.0"
