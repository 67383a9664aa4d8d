package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// sourceExtensions are the file extensions considered documentable during
// entrypoint discovery.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// defaultIgnoreRules always apply during discovery; user rules from the
// config and .docgraphignore are appended and can widen or narrow them.
var defaultIgnoreRules = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"coverage/",
	"*.test.*",
	"*.spec.*",
	"__tests__/",
}

// DiscoverEntrypoints walks root and returns every documentable source file
// as a root specifier, relative to root with forward slashes, sorted.
func DiscoverEntrypoints(root string, userRules []string) ([]string, error) {
	fileRules, err := loadIgnoreFile(root)
	if err != nil {
		return nil, err
	}

	rules := make([]string, 0, len(defaultIgnoreRules)+len(userRules)+len(fileRules))
	rules = append(rules, defaultIgnoreRules...)
	rules = append(rules, userRules...)
	rules = append(rules, fileRules...)
	matcher := gitignore.CompileIgnoreLines(rules...)

	var entrypoints []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if matcher.MatchesPath(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if sourceExtensions[strings.ToLower(filepath.Ext(rel))] || strings.HasSuffix(rel, ".d.ts") {
			entrypoints = append(entrypoints, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover entrypoints under %s: %w", root, err)
	}
	sort.Strings(entrypoints)
	return entrypoints, nil
}

// loadIgnoreFile reads .docgraphignore from root when present.
func loadIgnoreFile(root string) ([]string, error) {
	path := filepath.Join(root, ".docgraphignore")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read .docgraphignore: %w", err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse .docgraphignore: %w", err)
	}
	return rules, nil
}
