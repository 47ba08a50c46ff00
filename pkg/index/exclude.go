package index

import (
	"path/filepath"
	"strings"
)

// shouldExclude checks if a relative path matches any exclude pattern.
// Patterns support:
//   - Simple glob patterns on the base name: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, **/cache/*
func shouldExclude(relativePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	path := filepath.ToSlash(relativePath)
	baseName := filepath.Base(relativePath)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		pat := filepath.ToSlash(pattern)

		// Directory pattern: excludes everything under the directory
		if strings.HasSuffix(pat, "/") {
			dir := strings.TrimSuffix(pat, "/")
			if path == dir ||
				strings.HasPrefix(path, dir+"/") ||
				strings.Contains(path, "/"+dir+"/") {
				return true
			}
			continue
		}

		// **/pattern matches at any depth
		if rest, ok := strings.CutPrefix(pat, "**/"); ok {
			if matchGlob(baseName, rest) || path == rest || strings.HasSuffix(path, "/"+rest) {
				return true
			}
			for _, part := range strings.Split(path, "/") {
				if matchGlob(part, rest) {
					return true
				}
			}
			continue
		}

		if strings.Contains(pat, "/") {
			// Pattern applies to the full relative path
			if matchGlob(path, pat) || strings.HasSuffix(path, pat) {
				return true
			}
		} else if matchGlob(baseName, pat) {
			return true
		}
	}

	return false
}

func matchGlob(name, pattern string) bool {
	matched, _ := filepath.Match(pattern, name)
	return matched
}
