package processor

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

var tokenPattern = regexp.MustCompile(`^([A-Z0-9\-_.]+)=([0-9]+)$`)

// tokenCache resolves constraint tokens. Entries come from the tokens option
// ("NAME=1;OTHER=2"); anything else is looked up once as an option and the
// outcome, found or not, is remembered.
type tokenCache struct {
	mu     sync.Mutex
	values map[string]tokenValue
	lookup func(key string) string
}

type tokenValue struct {
	value int
	ok    bool
}

func newTokenCache(raw string, lookup func(string) string) *tokenCache {
	c := &tokenCache{values: make(map[string]tokenValue), lookup: lookup}

	for _, entry := range splitTokens(raw) {
		m := tokenPattern.FindStringSubmatch(entry)
		if m == nil {
			continue
		}

		if v, err := strconv.Atoi(m[2]); err == nil {
			c.values[m[1]] = tokenValue{value: v, ok: true}
		}
	}

	return c
}

// splitTokens drops whitespace, upper-cases and splits on ';' and ','.
func splitTokens(raw string) []string {
	raw = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, raw)

	return strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool { return r == ';' || r == ',' })
}

func (c *tokenCache) get(name string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.values[name]; ok {
		return v.value, v.ok
	}

	var v tokenValue
	if c.lookup != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(c.lookup(name))); err == nil {
			v = tokenValue{value: n, ok: true}
		}
	}

	c.values[name] = v

	return v.value, v.ok
}
