package profiles

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from .env files: the given paths,
// then ./.env, then ~/.env. Variables that are already set are never
// overwritten, so earlier files win.
func LoadDotEnv(paths ...string) {
	candidates := append([]string(nil), paths...)
	candidates = append(candidates, ".env")
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".env"))
	}

	for _, path := range candidates {
		if path != "" {
			loadIfExists(path)
		}
	}
}

func loadIfExists(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	// godotenv.Load keeps existing variables.
	if err := godotenv.Load(path); err != nil {
		slog.Debug("Failed to load .env file", "path", path, "error", err)
		return
	}
	slog.Debug("Loaded environment from .env", "path", path)
}
