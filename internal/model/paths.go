package model

import (
	"os"
	"path/filepath"
)

// ConfigDir is where config.yaml and the disk cache live
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pitchcheck"
	}
	return filepath.Join(home, ".pitchcheck")
}

func defaultCacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}
