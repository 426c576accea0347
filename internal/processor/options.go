package processor

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// Processor option keys. Keys owned by another package are declared there.
const (
	OptionTokens                = "tokens"
	OptionDependencyTargetsFile = "dependencyTargetsFile"
)

// PropertiesFile is the fallback options resource looked up in the source
// roots.
const PropertiesFile = "mixin.properties"

// Options is the two-tier option lookup: invocation options first, then the
// first mixin.properties found in the source roots. The properties file is
// read on the first miss; an unreadable file is treated as empty.
type Options struct {
	values map[string]string
	roots  []string

	once       sync.Once
	properties map[string]string
}

// NewOptions creates the lookup. values is not copied.
func NewOptions(values map[string]string, roots ...string) *Options {
	return &Options{values: values, roots: roots}
}

// Option returns the value for key, "" when neither tier defines it.
func (o *Options) Option(key string) string {
	v, _ := o.Lookup(key)
	return v
}

// Lookup returns the value for key and whether any tier defines it.
func (o *Options) Lookup(key string) (string, bool) {
	if v, ok := o.values[key]; ok {
		return v, true
	}

	v, ok := o.fallback()[key]

	return v, ok
}

func (o *Options) fallback() map[string]string {
	o.once.Do(func() {
		o.properties = map[string]string{}

		for _, root := range o.roots {
			data, err := os.ReadFile(filepath.Join(root, PropertiesFile))
			if err != nil {
				continue
			}

			if parsed, err := godotenv.Parse(bytes.NewReader(data)); err == nil {
				o.properties = parsed
			}

			return
		}
	})

	return o.properties
}
