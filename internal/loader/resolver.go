package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/docgraph-dev/docgraph/internal/docnode"
)

// probeExtensions is the order extension-less specifiers are completed in,
// matching how the front-end prioritizes TypeScript over JavaScript.
var probeExtensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".js", ".jsx", ".mjs", ".cjs"}

// FSResolver resolves relative specifiers against a directory tree. Module
// identifiers are slash-separated paths relative to Root. Bare specifiers
// (npm packages) are reported unresolvable; they surface in the output as
// external modules.
type FSResolver struct {
	Root string
}

// NewFSResolver creates a resolver rooted at dir.
func NewFSResolver(dir string) *FSResolver {
	return &FSResolver{Root: dir}
}

func (r *FSResolver) Resolve(specifier string, from docnode.ModuleID) (docnode.ModuleID, error) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return "", fmt.Errorf("empty specifier")
	}

	var candidate string
	switch {
	case from == "":
		// Root specifiers are paths relative to the resolver root.
		candidate = path.Clean(filepath.ToSlash(specifier))
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"), specifier == ".", specifier == "..":
		candidate = path.Join(path.Dir(string(from)), specifier)
	case strings.HasPrefix(specifier, "/"):
		candidate = path.Clean(strings.TrimPrefix(specifier, "/"))
	default:
		return "", fmt.Errorf("bare specifier %q refers to an external package", specifier)
	}
	candidate = strings.TrimPrefix(candidate, "./")

	if id, ok := r.probe(candidate); ok {
		return id, nil
	}
	return "", fmt.Errorf("no module file found for %q", specifier)
}

func (r *FSResolver) probe(candidate string) (docnode.ModuleID, bool) {
	try := func(rel string) (docnode.ModuleID, bool) {
		full := filepath.Join(r.Root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err == nil && !info.IsDir() {
			return docnode.ModuleID(rel), true
		}
		return "", false
	}

	if strings.Contains(path.Base(candidate), ".") {
		if id, ok := try(candidate); ok {
			return id, true
		}
	}
	for _, ext := range probeExtensions {
		if id, ok := try(candidate + ext); ok {
			return id, true
		}
	}
	for _, ext := range probeExtensions {
		if id, ok := try(path.Join(candidate, "index"+ext)); ok {
			return id, true
		}
	}
	return "", false
}

func (r *FSResolver) Load(id docnode.ModuleID) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(string(id))))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", id, err)
	}
	return data, nil
}

// MapResolver resolves against an in-memory set of modules, for tests and
// embedding hosts that supply sources directly.
type MapResolver struct {
	Sources map[string]string
}

// NewMapResolver creates a resolver over the given specifier → source map.
func NewMapResolver(sources map[string]string) *MapResolver {
	return &MapResolver{Sources: sources}
}

func (r *MapResolver) Resolve(specifier string, from docnode.ModuleID) (docnode.ModuleID, error) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return "", fmt.Errorf("empty specifier")
	}

	var candidate string
	switch {
	case from == "":
		candidate = path.Clean(specifier)
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
		candidate = path.Join(path.Dir(string(from)), specifier)
	default:
		return "", fmt.Errorf("bare specifier %q refers to an external package", specifier)
	}
	candidate = strings.TrimPrefix(candidate, "./")

	if _, ok := r.Sources[candidate]; ok {
		return docnode.ModuleID(candidate), nil
	}
	for _, ext := range probeExtensions {
		if _, ok := r.Sources[candidate+ext]; ok {
			return docnode.ModuleID(candidate + ext), nil
		}
	}
	for _, ext := range probeExtensions {
		indexed := path.Join(candidate, "index"+ext)
		if _, ok := r.Sources[indexed]; ok {
			return docnode.ModuleID(indexed), nil
		}
	}
	return "", fmt.Errorf("no module registered for %q", specifier)
}

func (r *MapResolver) Load(id docnode.ModuleID) ([]byte, error) {
	source, ok := r.Sources[string(id)]
	if !ok {
		return nil, fmt.Errorf("module %s not registered", id)
	}
	return []byte(source), nil
}
