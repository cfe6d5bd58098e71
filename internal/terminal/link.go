package terminal

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// sourceExtensions are files a terminal can usefully open at a line. Links
// to anything else point at the containing directory so clicking never runs
// an executable.
var sourceExtensions = map[string]bool{
	".go":  true,
	".cs":  true,
	".fs":  true,
	".vb":  true,
	".csx": true,
	".fsx": true,
	".rs":  true,
	".py":  true,
	".ts":  true,
	".js":  true,
}

// displayPath shortens path relative to baseDir when it lives under it and
// appends ":line" for positive line numbers.
func displayPath(path, baseDir string, line int) string {
	if baseDir != "" {
		base := strings.TrimRight(baseDir, `/\`)
		if len(path) > len(base)+1 && strings.HasPrefix(path, base) {
			if sep := path[len(base)]; sep == '/' || sep == '\\' {
				path = path[len(base)+1:]
			}
		}
	}
	if line > 0 {
		path += ":" + strconv.Itoa(line)
	}
	return path
}

// linkTarget returns the URL an OSC 8 hyperlink for path should open, or ""
// when the path is known not to exist locally (deterministic build paths
// rooted at "/_/") or cannot be made absolute.
func linkTarget(path string) string {
	if strings.HasPrefix(path, "/_/") || strings.HasPrefix(path, `\_\`) {
		return ""
	}
	target := path
	if !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
		target = filepath.Dir(path)
	}
	if !filepath.IsAbs(target) {
		return ""
	}
	p := filepath.ToSlash(target)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
