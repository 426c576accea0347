package match

// Distance is the edit distance between a and b counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(ra); i++ {
			above := row[i]

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			row[i] = min(row[i]+1, row[i-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(ra)]
}

// Similarity maps the distance of a and b onto [0, 1], 1 for equal strings.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(longest)
}

// QualifiedNameScore compares full class names in any of the binary,
// internal or source forms.
func QualifiedNameScore(a, b string) float64 {
	return Similarity(NormalizeQualifiedName(a), NormalizeQualifiedName(b))
}

// ClassNameScore compares two class names by their normalized simple names.
// Packages and enclosing classes are ignored, as is a "Mixin" affix.
func ClassNameScore(a, b string) float64 {
	return Similarity(NormalizeClassName(a), NormalizeClassName(b))
}
