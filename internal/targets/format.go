package targets

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"mixin-ap/internal/common"
)

// Associations maps a target's internal name to the internal names of the
// mixins targeting it, in registration order.
type Associations map[string][]string

// Targets returns the target names sorted.
func (a Associations) Targets() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Encode writes one "target -> mixinA,mixinB" line per target, sorted by
// target. Targets without mixins are omitted.
func Encode(w io.Writer, a Associations) error {
	bw := bufio.NewWriter(w)

	for _, target := range a.Targets() {
		mixins := a[target]
		if len(mixins) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(bw, "%s -> %s\n", target, strings.Join(mixins, ",")); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Decode reads the association text format. Mixin lists are comma or newline
// separated: a line starting with whitespace continues the previous target.
// Blank lines and "#" comments are skipped. Names are normalized to internal
// form and duplicates dropped.
func Decode(r io.Reader) (Associations, error) {
	out := make(Associations)
	sets := make(map[string]*common.OrderedSet[string])

	add := func(target string, list string) {
		set, ok := sets[target]
		if !ok {
			set = common.NewOrderedSet[string]()
			sets[target] = set
		}

		for _, mixin := range common.SplitList(list, ",") {
			set.Add(common.InternalName(mixin))
		}

		out[target] = set.Items()
	}

	scanner := bufio.NewScanner(r)
	current := ""
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		raw := scanner.Text()
		if i := strings.IndexByte(raw, '#'); i > -1 {
			raw = raw[:i]
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if raw[0] == ' ' || raw[0] == '\t' {
			if current == "" {
				return nil, fmt.Errorf("line %d: continuation without a target", lineNo)
			}

			add(current, line)

			continue
		}

		target, list, ok := strings.Cut(line, "->")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"target -> mixins\"", lineNo)
		}

		target = strings.TrimSpace(target)
		if target == "" {
			return nil, fmt.Errorf("line %d: empty target name", lineNo)
		}

		current = common.InternalName(target)
		add(current, list)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
