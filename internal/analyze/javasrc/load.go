package javasrc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"mixin-ap/internal/analyze"
)

// ErrSyntax is returned when a source file does not parse cleanly.
var ErrSyntax = errors.New("java syntax error")

// Source is one compilation unit.
type Source struct {
	Path    string
	Content []byte
}

// Files expands paths into the .java files they name. Directories are
// walked recursively. The result is sorted and de-duplicated.
func Files(paths ...string) ([]string, error) {
	var out []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && strings.HasSuffix(path, ".java") {
				out = append(out, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	slices.Sort(out)

	return slices.Compact(out), nil
}

// Load reads and parses every .java file under paths.
func Load(ctx context.Context, paths ...string) (*analyze.Index, error) {
	files, err := Files(paths...)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(files))
	for i, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}

		sources[i] = Source{Path: f, Content: content}
	}

	return LoadSources(ctx, sources...)
}

// LoadSources parses sources into a new Index. Types are added in source
// order, outer types before their nested types.
func LoadSources(ctx context.Context, sources ...Source) (*analyze.Index, error) {
	units := make([]*unit, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, src := range sources {
		g.Go(func() error {
			u, err := parse(gctx, src)
			if err != nil {
				return err
			}

			units[i] = u

			return nil
		})
	}

	err := g.Wait()

	defer func() {
		for _, u := range units {
			if u != nil {
				u.close()
			}
		}
	}()

	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{})
	for _, u := range units {
		for _, name := range u.declared {
			known[name] = struct{}{}
		}
	}

	built := make([][]*analyze.TypeElement, len(units))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			built[i] = u.build(known)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := analyze.NewIndex()

	for i, u := range units {
		if u.pkg != "" {
			idx.AddPackage(u.pkg)
		}

		for _, pkg := range u.importedPackages() {
			idx.AddPackage(pkg)
		}

		for _, t := range built[i] {
			if err := idx.Add(t); err != nil {
				return nil, fmt.Errorf("%s: %w", u.path, err)
			}
		}
	}

	return idx, nil
}
