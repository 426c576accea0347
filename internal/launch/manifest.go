package launch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedManifest is returned for manifest lines without a "Key:" part.
var ErrMalformedManifest = errors.New("malformed manifest")

// Manifest holds the main attributes of a container manifest.
type Manifest map[string]string

// Get returns the attribute value, "" when absent.
func (m Manifest) Get(key string) string {
	return m[key]
}

// ReadManifest parses "Key: Value" lines. A line starting with a single
// space continues the previous value. Parsing stops at the first blank line,
// which ends the main section.
func ReadManifest(r io.Reader) (Manifest, error) {
	m := Manifest{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	last := ""

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			if len(m) > 0 {
				break
			}

			continue
		}

		if rest, ok := strings.CutPrefix(line, " "); ok {
			if last == "" {
				return nil, fmt.Errorf("%w: line %d: continuation without attribute", ErrMalformedManifest, lineNo)
			}

			m[last] += rest

			continue
		}

		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedManifest, lineNo, line)
		}

		m[key] = strings.TrimSpace(value)
		last = key
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}
