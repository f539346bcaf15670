package util

import (
	"os"
)

// EnsureDir creates dir (and parents) if it does not exist yet.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if info.IsDir() {
			return nil
		}
	}
	return os.MkdirAll(dir, 0755)
}

func RemoveFileIfExists(path string) bool {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return false
		}
	}
	return true
}
