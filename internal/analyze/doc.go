// Package analyze provides the read-only structural model the processor
// queries: compiled units, their members and their annotations.
//
// A separate front end (the javasrc tree-sitter loader or a YAML manifest)
// fills an Index; the processor only reads it.
//
// Key types:
//   - TypeElement: a class or interface declaration with members and annotations
//   - Member: a field or method with its JVM descriptor
//   - Annotation / Value: annotation payloads with single-or-list unfolding
//   - TypeHandle: a compiled unit as seen by the processor, equal by name,
//     possibly imaginary (the package exists but the type is not visible)
//   - Index: name-keyed store implementing the type and javadoc lookups
package analyze
