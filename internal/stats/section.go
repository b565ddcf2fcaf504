package stats

import (
	"fmt"
	"strings"
)

// ParseRequest splits a "METHOD PATH PROTOCOL" request line into the method,
// the path and the section (first path segment). A root path yields an empty
// section.
//
// The decoder guarantees well-formed request lines, so a malformed one is a
// programming error and panics.
func ParseRequest(line string) (method, path, section string) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		panic(fmt.Sprintf("stats: malformed request line %q", line))
	}
	parts := strings.Split(fields[1], "/")
	if len(parts) < 2 {
		panic(fmt.Sprintf("stats: request path %q has no '/'", fields[1]))
	}
	return fields[0], fields[1], parts[1]
}

// Section returns only the section of a request line.
func Section(line string) string {
	_, _, section := ParseRequest(line)
	return section
}

// ValidRequest reports whether ParseRequest would accept line.
func ValidRequest(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 2 && strings.Contains(fields[1], "/")
}
