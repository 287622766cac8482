// Package dataset downloads and tracks MNE datasets inside the data directory.
package dataset

import (
	"fmt"
	"sort"
)

// Dataset describes one fetchable dataset archive.
type Dataset struct {
	Name    string
	Version string
	URL     string
	SHA256  string // hex digest of the archive; empty skips verification
	Folder  string // top-level folder the archive unpacks to
}

// manifest is the built-in catalogue of known datasets. Archives unpack
// directly into the data directory, mirroring the upstream layout.
var manifest = map[string]Dataset{
	"sample": {
		Name:    "sample",
		Version: "0.7",
		URL:     "https://osf.io/86qa2/download",
		SHA256:  "6752c464b27f2e2c63bbd921003fc5bb3dd6ba0d1a75286f1b2b5e15a7f31e83",
		Folder:  "MNE-sample-data",
	},
	"testing": {
		Name:    "testing",
		Version: "0.112",
		URL:     "https://codeload.github.com/mne-tools/mne-testing-data/tar.gz/0.112",
		Folder:  "MNE-testing-data",
	},
	"somato": {
		Name:    "somato",
		Version: "0.2",
		URL:     "https://osf.io/tp4sg/download",
		SHA256:  "32fd2f6c8c7eb0784a1de6435273c48b9372b3283cb8b461510efc78dbb9d271",
		Folder:  "MNE-somato-data",
	},
}

// Lookup returns the manifest entry for name.
func Lookup(name string) (Dataset, error) {
	ds, ok := manifest[name]
	if !ok {
		return Dataset{}, fmt.Errorf("unknown dataset %q (known: %v)", name, Names())
	}
	return ds, nil
}

// Names returns the sorted names of all known datasets.
func Names() []string {
	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
