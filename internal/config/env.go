package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are tried in order next to the config file; the first one found wins.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE pairs from the first env file present in dir.
// Existing process environment variables are not overwritten.
func loadEnvFiles(dir string) error {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		slog.Debug("Loaded environment variables", "path", path)
		return nil
	}
	return nil
}
