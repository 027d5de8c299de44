package exstack

import "strings"

func validatePath(path string) {
	if len(path) == 0 || !strings.HasPrefix(path, "/") {
		panic("path must begin with '/' in path '" + path + "'")
	}
}

// mergePath joins a mount prefix and a route path without doubling or
// dropping the separating slash.
func mergePath(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}

	prefix = strings.TrimSuffix(prefix, "/")
	if path == "/" {
		return prefix
	}

	return prefix + path
}
