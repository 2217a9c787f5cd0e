// Package config holds the configuration shared by the mergedag commands:
// the network selection flags and the default locations of data and logs.
package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
)

const (
	defaultDataDirname = "data"
	defaultLogDirname  = "logs"

	// DefaultLogLevel is the log level used when none is configured
	DefaultLogLevel = "info"

	// DefaultLogFilename is the name of the main log file
	DefaultLogFilename = "mergedag.log"

	// DefaultErrLogFilename is the name of the log file holding warnings and errors
	DefaultErrLogFilename = "mergedag_err.log"
)

var (
	// DefaultAppDir is the default home directory for mergedag.
	DefaultAppDir = btcutil.AppDataDir("mergedag", false)

	// DefaultDataDir is the default directory of the block database
	DefaultDataDir = filepath.Join(DefaultAppDir, defaultDataDirname)

	// DefaultLogDir is the default directory of the log files
	DefaultLogDir = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// NetworkDir returns the per-network sub directory of dir
func NetworkDir(dir string, networkFlags *NetworkFlags) string {
	return filepath.Join(dir, networkFlags.NetParams().Name)
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func CleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
