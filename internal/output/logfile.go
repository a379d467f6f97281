package output

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// GITSTACK_LOG_FILE wins, with "off" disabling file logging;
// otherwise ~/.gitstack/logs/gitstack.log.
func GetLogFilePath() string {
	if customPath := os.Getenv("GITSTACK_LOG_FILE"); customPath != "" {
		if customPath == "off" {
			return ""
		}
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".gitstack", "logs", "gitstack.log")
}
