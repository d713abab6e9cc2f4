package gcloudcli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// KeyFileName is the name of the key file inside the key directory.
const KeyFileName = "key.json"

// KeyFile is a service account key written for the duration of a call.
type KeyFile struct {
	Dir  string
	Name string
}

// ContainerPath returns the key's path inside the CLI container.
func (k KeyFile) ContainerPath() string {
	return KeyMountPath + "/" + k.Name
}

// WithKeyFile writes key into a private temporary directory, calls fn and
// removes the directory again on every exit path.
func WithKeyFile(key []byte, fn func(KeyFile) error) (err error) {
	if len(key) == 0 {
		return errors.New("service account key is empty")
	}
	dir, err := os.MkdirTemp("", "gkectl-key-*")
	if err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to remove key directory: %w", rmErr)
		}
	}()

	if err := os.WriteFile(filepath.Join(dir, KeyFileName), key, 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return fn(KeyFile{Dir: dir, Name: KeyFileName})
}
