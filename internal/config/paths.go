package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// windowsEnvRef matches %VAR% references.
var windowsEnvRef = regexp.MustCompile(`%([A-Za-z0-9_()]+)%`)

// expandPath resolves environment references and a leading ~ in store and
// log paths, then cleans the result.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsEnvRef.ReplaceAllStringFunc(p, func(ref string) string {
			if val, ok := os.LookupEnv(strings.Trim(ref, "%")); ok {
				return val
			}
			return ref
		})
	}

	if rest, ok := homeRelative(p); ok {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, rest)
		}
	}
	return filepath.Clean(p)
}

// homeRelative returns the part of p after a leading "~" and separator.
func homeRelative(p string) (string, bool) {
	switch {
	case p == "~":
		return "", true
	case strings.HasPrefix(p, "~/"):
		return p[2:], true
	case runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`):
		return p[2:], true
	}
	return "", false
}
