// Package datadir resolves and maintains the MNE data directory.
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the fixed name of the data directory under the user's home.
const DirName = "mne_data"

// ErrNotCreated is returned when directory creation reported success but the
// path is still absent on re-check.
var ErrNotCreated = errors.New("datadir: directory absent after creation")

// State describes the outcome of Ensure.
type State int

const (
	// StateExisted means a filesystem entry was already present at the path.
	StateExisted State = iota
	// StateCreated means the directory was created by this invocation.
	StateCreated
)

func (s State) String() string {
	switch s {
	case StateExisted:
		return "existed"
	case StateCreated:
		return "created"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Resolve returns the data directory path. An explicit dir wins; otherwise
// the path is mne_data directly under the current user's home directory.
func Resolve(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Ensure makes sure path exists, creating it and any missing parents when
// absent. A pre-existing entry of any kind, directory or not, counts as
// existing and is left untouched.
func Ensure(path string) (State, error) {
	if _, err := os.Stat(path); err == nil {
		return StateExisted, nil
	} else if !os.IsNotExist(err) {
		return StateExisted, fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return StateExisted, fmt.Errorf("create %s: %w", path, err)
	}

	// MkdirAll returning nil is not proof the directory landed.
	if _, err := os.Stat(path); err != nil {
		return StateExisted, fmt.Errorf("%w: %s", ErrNotCreated, path)
	}

	return StateCreated, nil
}

// IsDir reports whether path exists and is a directory. The second return
// value reports bare existence.
func IsDir(path string) (isDir, exists bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return fi.IsDir(), true
}
