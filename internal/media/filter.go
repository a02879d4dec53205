package media

import (
	"path/filepath"
	"strings"
)

// Filter decides which files are ingested: an extension allow-list plus
// ignore rules on the basename and on ancestor directories.
type Filter struct {
	extensions  map[string]bool
	prefixes    []string
	patterns    []string
	directories []string
}

// NewFilter builds a Filter. Extensions are matched case-insensitively with
// or without the leading dot. Prefixes containing glob metacharacters are
// treated as patterns.
func NewFilter(extensions, prefixes, patterns, directories []string) Filter {
	f := Filter{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = true
	}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			f.patterns = append(f.patterns, p)
			continue
		}
		f.prefixes = append(f.prefixes, p)
	}
	for _, p := range patterns {
		if p != "" {
			f.patterns = append(f.patterns, p)
		}
	}
	for _, d := range directories {
		if d != "" {
			f.directories = append(f.directories, d)
		}
	}
	return f
}

// Supported reports whether path carries an allowed extension and is not a
// lock sentinel.
func (f Filter) Supported(path string) bool {
	if IsSentinel(path) {
		return false
	}
	return f.extensions[strings.ToLower(filepath.Ext(path))]
}

// Ignored reports whether path matches a basename prefix/wildcard rule or has
// an ancestor directory containing an ignored substring.
func (f Filter) Ignored(path string) bool {
	base := filepath.Base(path)
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	for _, pattern := range f.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return f.IgnoredDir(filepath.Dir(path))
}

// IgnoredDir reports whether any component of dir contains an ignored
// directory substring.
func (f Filter) IgnoredDir(dir string) bool {
	if len(f.directories) == 0 {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/") {
		if part == "" || part == "." {
			continue
		}
		for _, ignored := range f.directories {
			if strings.Contains(part, ignored) {
				return true
			}
		}
	}
	return false
}

// Accept reports whether path should enter the pipeline.
func (f Filter) Accept(path string) bool {
	return f.Supported(path) && !f.Ignored(path)
}
