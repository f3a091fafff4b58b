// Package importresolve implements the URI policy of the specification's
// external-interfaces section: an import target is either a `./`/`../`
// relative path to a sibling AST document, or a `bt-dsl-pkg://` package
// spec matched against the host's package cache. A bare spec (neither
// relative nor absolute) is resolved as a `bt-dsl-pkg://` spec. Absolute paths are
// rejected outright. Resolution never reads or parses the target file —
// that is pkg/btdsl's job once it has a path — this package only turns an
// import string into one.
package importresolve

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceExt is the extension every resolvable import target must carry.
// This repo's compiler driver consumes pre-built AST documents (§1: lexing
// is an external upstream collaborator), so an import resolves to another
// such document, not to BT-DSL surface source.
const SourceExt = ".ast.json"

const pkgScheme = "bt-dsl-pkg://"

// ErrAbsolute is returned for an import spelled as an absolute path.
var ErrAbsolute = errors.New("importresolve: absolute import paths are not permitted")

// ErrBadExtension is returned when a relative import doesn't name a
// SourceExt file.
var ErrBadExtension = errors.New("importresolve: relative import must name a " + SourceExt + " file")

// Resolver resolves import targets relative to the file that spells them,
// consulting PackagePaths for `bt-dsl-pkg://` specs.
type Resolver struct {
	// PackagePaths are directory roots searched, in order, for a
	// `bt-dsl-pkg://` package spec's glob match against the cache manifest.
	PackagePaths []string
}

// New returns a Resolver rooted at the given package search paths.
func New(packagePaths []string) *Resolver {
	return &Resolver{PackagePaths: packagePaths}
}

// Resolve turns target, as spelled in an `import "target";` appearing in
// fromFile, into the absolute path of the document it names.
func (r *Resolver) Resolve(fromFile, target string) (string, error) {
	switch {
	case strings.HasPrefix(target, "/"):
		return "", fmt.Errorf("%w: %q", ErrAbsolute, target)
	case strings.HasPrefix(target, pkgScheme):
		return r.resolvePackageSpec(strings.TrimPrefix(target, pkgScheme))
	case strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../"):
		return r.resolveRelative(fromFile, target)
	default:
		return r.resolvePackageSpec(target)
	}
}

func (r *Resolver) resolveRelative(fromFile, target string) (string, error) {
	if !strings.HasSuffix(target, SourceExt) {
		return "", fmt.Errorf("%w: %q", ErrBadExtension, target)
	}
	dir := filepath.Dir(fromFile)
	resolved := filepath.Join(dir, filepath.FromSlash(target))
	return filepath.Clean(resolved), nil
}

// resolvePackageSpec matches spec (e.g. "robotics/nav" or "robotics/nav/*")
// against every PackagePaths root's manifest, using doublestar glob
// semantics so a spec can end in a wildcard segment. Exactly one match
// across all roots combined is required; zero or more than one is an
// error, since an import must name a single document.
func (r *Resolver) resolvePackageSpec(spec string) (string, error) {
	if spec == "" {
		return "", fmt.Errorf("importresolve: empty package spec")
	}
	pattern := spec
	if !strings.Contains(path.Base(pattern), "*") {
		pattern = spec + SourceExt
	}

	var matches []string
	for _, root := range r.PackagePaths {
		fsys := os.DirFS(root)
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return "", fmt.Errorf("importresolve: bad package spec %q: %w", spec, err)
		}
		for _, m := range found {
			if strings.HasSuffix(m, SourceExt) {
				matches = append(matches, filepath.Join(root, filepath.FromSlash(m)))
			}
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("importresolve: package spec %q matched no document under %v", spec, r.PackagePaths)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("importresolve: package spec %q is ambiguous, matched %d documents: %v", spec, len(matches), matches)
	}
}
