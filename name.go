package logparse

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotAPackage means a request path does not name a package archive. Lines
// that fail this way are dropped from the package dataset but tracked
// separately from grammar failures.
var ErrNotAPackage = errors.New("path does not name a package archive")

// namePattern strips the trailing -<version>-<build>.tar.bz2 triplet from a
// package filename. The greedy leading group anchors the match on the fixed
// trailing suffix, so package names containing hyphens survive intact.
var namePattern = regexp.MustCompile(`^(?P<simplename>.*)-[^-]*-[^-]*\.tar\.bz2$`)

// ExtractName derives the canonical package name from a request path of the
// form /.../<channel>/<platform>/<filename>. It returns ErrNotAPackage when
// the filename does not end in the package-archive suffix.
func ExtractName(path string) (string, error) {
	tarball := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		tarball = path[i+1:]
	}
	m := namePattern.FindStringSubmatch(tarball)
	if m == nil || m[1] == "" {
		return "", ErrNotAPackage
	}
	return m[1], nil
}
