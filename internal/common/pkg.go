package common

import "path"

// PkgAlias returns the default import name (last element of path) for a
// package path. Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}
