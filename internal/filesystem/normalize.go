package filesystem

import (
	"path"
	"path/filepath"
	"strings"
)

// Normalize converts p into the canonical catalog key form.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" {
		p = "."
	}

	if hasDriveLetter(p) {
		return p[:2] + path.Clean("/"+p[2:])
	}

	if !isAbs(p) {
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			p = filepath.ToSlash(abs)
		}
	}

	return path.Clean(p)
}

// isAbs accepts both POSIX roots and drive-letter roots regardless of host OS,
// so keys written on one platform compare equal on another.
func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return hasDriveLetter(p)
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Base returns the last element of a normalized path.
func Base(p string) string {
	return path.Base(Normalize(p))
}

// Join joins a normalized directory with a child name.
func Join(dir, name string) string {
	return path.Join(dir, name)
}
