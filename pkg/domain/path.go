package domain

import "strings"

// SplitPath breaks a slash-separated tree reference into segments.
//
// Empty segments are dropped, so "/satellite//telescope/" and
// "satellite/telescope" reference the same node.
func SplitPath(path string) []string {
	segments := []string{}
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments []string) string {
	return strings.Join(segments, "/")
}
