package criteria

import (
	"errors"
	"fmt"
	"strings"
)

const pathSeparator = "."

// Path references a possibly nested field of a document, e.g. "address.city".
// Paths are comparable values; two paths are equal when their normalized forms are equal.
type Path struct {
	normalized string
}

// ParsePath parses a dot separated path. Whitespace around segments is dropped.
func ParsePath(raw string) (Path, error) {
	segments := strings.Split(raw, pathSeparator)

	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return Path{}, errors.Join(ErrInvalidPath, fmt.Errorf("empty segment %d in %q", i, raw))
		}

		segments[i] = segment
	}

	return Path{normalized: strings.Join(segments, pathSeparator)}, nil
}

// NewPath builds a path from its segments.
func NewPath(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return Path{}, errors.Join(ErrInvalidPath, errors.New("no segments"))
	}

	return ParsePath(strings.Join(segments, pathSeparator))
}

// MustPath is like ParsePath but panics on invalid input.
// It is meant for package level field declarations.
func MustPath(raw string) Path {
	path, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}

	return path
}

// Child returns the path extended by one segment.
func (p Path) Child(segment string) (Path, error) {
	if p.IsZero() {
		return ParsePath(segment)
	}

	return ParsePath(p.normalized + pathSeparator + segment)
}

// Segments returns the individual field names of the path.
func (p Path) Segments() []string {
	if p.IsZero() {
		return nil
	}

	return strings.Split(p.normalized, pathSeparator)
}

// IsZero reports whether the path was never set.
func (p Path) IsZero() bool {
	return p.normalized == ""
}

func (p Path) String() string {
	return p.normalized
}
