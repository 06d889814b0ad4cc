package logparse

import "testing"

func TestExtractName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/chan/linux-64/numpy-1.21.0-py39h.tar.bz2", "numpy"},
		{"/chan/linux-64/numpy-base-1.21.0-py39h.tar.bz2", "numpy-base"},
		{"/astroconda-dev/osx-64/drizzlepac-3.1.6-py37h.tar.bz2", "drizzlepac"},
		{"scipy-1.5.2-py38.tar.bz2", "scipy"},
	}
	for _, test := range tests {
		got, err := ExtractName(test.path)
		if err != nil {
			t.Fatalf("extracting from %q: %v", test.path, err)
		}
		if got != test.want {
			t.Errorf("extracting from %q: got %q, want %q", test.path, got, test.want)
		}
	}
}

func TestExtractNameNotAPackage(t *testing.T) {
	for _, path := range []string{
		"/chan/noarch/repodata.json",
		"/chan/linux-64/",
		"/favicon.ico",
		"/chan/linux-64/numpy.tar.bz2", // no version-build triplet
		"",
	} {
		if _, err := ExtractName(path); err != ErrNotAPackage {
			t.Errorf("path %q: expected ErrNotAPackage, got %v", path, err)
		}
	}
}
