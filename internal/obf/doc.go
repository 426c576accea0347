// Package obf holds the obfuscation side of the processor: the naming
// schemes, the mapping data read for each scheme, and the tables of
// remappings produced while mixin members are registered.
//
// Tables are append-only and keep insertion order, so two runs over the same
// input export byte-identical files.
package obf
