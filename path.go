package epub

import (
	"fmt"
	"net/url"
	"strings"
)

// SplitFragment splits an href into its path and fragment identifier.
// The returned fragment does not include the leading '#'.
func SplitFragment(href string) (path, fragment string) {
	if href == "" {
		return "", ""
	}
	parts := strings.SplitN(href, "#", 2)
	path = parts[0]
	if len(parts) == 2 {
		fragment = parts[1]
	}
	return path, fragment
}

// ResolveHref resolves a raw href against a base directory and returns
// an archive-root-relative path with forward slashes.
//
// Any fragment is discarded first (use SplitFragment to retain it), then
// the path portion is percent-decoded. Hrefs starting with "/" are
// archive-root-relative; everything else is joined with baseDir.
// "." segments are dropped and ".." segments resolve against the
// accumulated path. A resolution that would escape the archive root
// returns ErrInvalidPath.
func ResolveHref(baseDir, href string) (string, error) {
	href, _ = SplitFragment(href)
	href = strings.TrimSpace(href)

	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}

	var segments []string
	if strings.HasPrefix(href, "/") {
		href = strings.TrimPrefix(href, "/")
	} else {
		segments = splitSegments(baseDir)
	}

	for _, seg := range strings.Split(href, "/") {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if len(segments) == 0 {
				return "", fmt.Errorf("%w: %q", ErrInvalidPath, href)
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	return strings.Join(segments, "/"), nil
}

// splitSegments splits a directory path into clean segments.
// "" and "." both mean the archive root.
func splitSegments(dir string) []string {
	dir = strings.ReplaceAll(dir, "\\", "/")
	var segments []string
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" || seg == "." {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}
