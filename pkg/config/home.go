package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "WEBQUERY_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the webquery home directory.
//
// Resolution order:
//  1. $WEBQUERY_HOME environment variable
//  2. ~/.webquery
//  3. Current working directory
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetLibraryDir returns <home>/libraries.
func GetLibraryDir() string {
	return filepath.Join(GetHome(), "libraries")
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	if userHome, err := os.UserHomeDir(); err == nil && userHome != "" {
		return filepath.Join(userHome, ".webquery")
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
