package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFileName is the name of the log file inside the log directory.
const LogFileName = "relterms.log"

// DefaultLogDir returns the log directory under dataDir.
func DefaultLogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// DefaultLogPath returns the default log file path under dataDir.
func DefaultLogPath(dataDir string) string {
	return filepath.Join(DefaultLogDir(dataDir), LogFileName)
}

// FindLogFile returns the log file to view: explicit when given, otherwise
// the default path under dataDir.
func FindLogFile(explicit, dataDir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	path := DefaultLogPath(dataDir)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no log file found. Run with --debug or set logging.file first.\nExpected at: %s", path)
}
