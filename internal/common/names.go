package common

import "strings"

// InternalName converts a binary class name ("a.b.C") to its internal form ("a/b/C").
func InternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// BinaryName converts an internal class name ("a/b/C") to its binary form ("a.b.C").
func BinaryName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// PackageOf returns the package part of a binary or internal class name, or
// "" for a class in the default package.
func PackageOf(name string) string {
	name = BinaryName(name)
	if i := strings.LastIndexByte(name, '.'); i > -1 {
		return name[:i]
	}

	return ""
}

// SimpleName returns the last segment of a binary or internal class name.
func SimpleName(name string) string {
	name = BinaryName(name)
	if i := strings.LastIndexByte(name, '.'); i > -1 {
		return name[i+1:]
	}

	return name
}
