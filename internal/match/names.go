package match

import (
	"strings"
	"unicode"
)

// NormalizeQualifiedName lower-cases a class name and unifies the package
// and nesting separators, so "a/b/C$D", "a.b.C$D" and "a.b.C.D" compare
// equal.
func NormalizeQualifiedName(name string) string {
	return strings.ToLower(strings.NewReplacer("/", ".", "$", ".").Replace(name))
}

// NormalizeClassName reduces a class name to its lower-cased simple name. A
// leading or trailing "Mixin" word is dropped unless it is the whole name.
func NormalizeClassName(name string) string {
	if i := strings.LastIndexAny(name, "./$"); i > -1 {
		name = name[i+1:]
	}

	words := splitWords(name)
	switch {
	case len(words) < 2:
	case strings.EqualFold(words[0], "mixin"):
		words = words[1:]
	case strings.EqualFold(words[len(words)-1], "mixin"):
		words = words[:len(words)-1]
	}

	return strings.ToLower(strings.Join(words, ""))
}

// splitWords splits a CamelCase class name into words, keeping acronyms
// together: "XMLMixinParser" is "XML", "Mixin", "Parser". Underscores and
// digits end a word.
func splitWords(s string) []string {
	var (
		words []string
		start = -1
	)

	runes := []rune(s)
	flush := func(end int) {
		if start > -1 && end > start {
			words = append(words, string(runes[start:end]))
		}

		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) {
			flush(i)
			continue
		}

		if start == -1 {
			start = i
			continue
		}

		prev := runes[i-1]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

		if unicode.IsUpper(r) && (unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower)) {
			flush(i)
			start = i
		}
	}

	flush(len(runes))

	return words
}
