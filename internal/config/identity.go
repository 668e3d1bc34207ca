package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LoadIdentity returns the persisted caller principal, or "" when no login
// has happened yet.
func LoadIdentity() (string, error) {
	path, err := IdentityPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func SaveIdentity(principal string) error {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return errors.New("principal is required")
	}
	path, err := IdentityPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(principal+"\n"), 0o600)
}

func ClearIdentity() error {
	path, err := IdentityPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
