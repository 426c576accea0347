// Package javasrc builds an analyze.Index from Java source files.
//
// Files are parsed with tree-sitter in parallel. Type names written in
// source are resolved against the package, imports, enclosing types and the
// full set of declared types before descriptors are built, so a declaration
// may reference types from any other file of the same load.
package javasrc
